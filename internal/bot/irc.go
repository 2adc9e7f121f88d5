package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"go.uber.org/zap"

	"github.com/i474232898/ircweather/internal/config"
)

// IRCBot connects the Handler to an IRC network.
type IRCBot struct {
	conn     *ircevent.Connection
	handler  *Handler
	channels []string
	timeout  time.Duration
	logger   *zap.Logger

	// commands from one nick run in the order they were received
	queue *nickQueue
}

// NewIRCBot prepares a connection from cfg. requestTimeout bounds each
// command, provider calls included.
func NewIRCBot(cfg config.IRCConfig, handler *Handler, requestTimeout time.Duration, logger *zap.Logger) *IRCBot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &IRCBot{
		conn: &ircevent.Connection{
			Server:      cfg.Server,
			UseTLS:      cfg.UseTLS,
			Nick:        cfg.Nick,
			Password:    cfg.Password,
			RequestCaps: []string{"server-time", "message-tags"},
			Log:         zap.NewStdLog(logger.Named("ircevent")),
		},
		handler:  handler,
		channels: cfg.Channels,
		timeout:  requestTimeout,
		logger:   logger,
		queue:    newNickQueue(),
	}

	b.conn.AddConnectCallback(func(ircmsg.Message) {
		for _, ch := range b.channels {
			if err := b.conn.Join(ch); err != nil {
				b.logger.Warn("join failed", zap.String("channel", ch), zap.Error(err))
			}
		}
		b.logger.Info("connected", zap.String("server", cfg.Server), zap.Strings("channels", b.channels))
	})
	b.conn.AddCallback("PRIVMSG", func(e ircmsg.Message) {
		if len(e.Params) < 2 {
			return
		}
		nick, target, text := e.Nick(), e.Params[0], e.Params[1]

		b.queue.Submit(nick, func() {
			b.handle(nick, target, text)
		})
	})
	return b
}

// Run connects and processes events until ctx is cancelled.
func (b *IRCBot) Run(ctx context.Context) error {
	if err := b.conn.Connect(); err != nil {
		return fmt.Errorf("irc connect %s: %w", b.conn.Server, err)
	}

	go func() {
		<-ctx.Done()
		b.conn.Quit()
	}()

	b.conn.Loop()
	b.queue.Wait()
	return nil
}

func (b *IRCBot) handle(nick, target, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	reply, ok := b.handler.Dispatch(ctx, nick, text)
	if !ok {
		return
	}

	to, line := replyTarget(b.conn.CurrentNick(), nick, target, reply)
	if err := b.conn.Privmsg(to, line); err != nil {
		b.logger.Warn("send reply", zap.String("target", to), zap.Error(err))
	}
}

// replyTarget addresses the sender by name in channels and answers private
// messages directly.
func replyTarget(self, nick, target, reply string) (string, string) {
	if strings.EqualFold(target, self) || !isChannel(target) {
		return nick, reply
	}
	return target, nick + ": " + reply
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
