package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/ircweather/internal/common"
	"github.com/i474232898/ircweather/internal/weather"
)

const (
	msgNotFound = "Could not find your location. Try refining such as Melbourne,AU or " +
		"Melbourne,FL. OpenWeatherMap uses 2-letter code for US states and also countries (ISO3166)"
	msgNotFoundUS = msgNotFound + ". NOTE: For US cities only, you need to specify the " +
		"2-letter state, not 'US'."
	msgRefine    = "Please refine your location by adding a country code or looking up a place id. Valid options are: %s"
	msgCollision = "Due to the OWM data, there are ambiguous results for '%s'. Visit " +
		"https://openweathermap.org/find?q=%s to find the correct place id you want."
	msgOffline     = "The OpenWeatherMap API could not be reached or is not online. Try again later."
	msgConfigError = "The OpenWeatherMap API is not correctly configured. Please reach out to the bot administrator."
	msgNoSaved     = "I don't know where you live. Give me a location, like %[1]sweather London, " +
		"or tell me where you live by saying %[1]ssetlocation London, for example."
	msgSetUsage  = `Give me a location, like "Washington, DC" or "London".`
	msgStoreFail = "I could not access saved locations right now. Try again later."
)

// Handler runs the .weather and .setlocation commands. It knows nothing
// about the chat transport: callers pass the nick and argument text and send
// back the returned line.
type Handler struct {
	service *weather.Service
	store   weather.LocationStore
	prefix  string
	logger  *zap.Logger
}

func NewHandler(service *weather.Service, store weather.LocationStore, prefix string, logger *zap.Logger) *Handler {
	if prefix == "" {
		prefix = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		store:   store,
		prefix:  prefix,
		logger:  logger,
	}
}

// Dispatch runs line if it is one of the bot's commands. ok is false for
// any other text.
func (h *Handler) Dispatch(ctx context.Context, nick, line string) (reply string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, h.prefix) {
		return "", false
	}

	name, args, _ := strings.Cut(strings.TrimPrefix(line, h.prefix), " ")
	switch strings.ToLower(name) {
	case "weather", "wea":
		return h.Weather(ctx, nick, args), true
	case "setlocation", "setcityid":
		return h.SetLocation(ctx, nick, args), true
	}
	return "", false
}

// Weather answers ".weather [location]". Without a location the nick's saved
// one is used.
func (h *Handler) Weather(ctx context.Context, nick, args string) string {
	log := h.requestLogger(nick, "weather")

	req, err := weather.ParseLocation(args)
	if errors.Is(err, weather.ErrNoLocation) {
		stored, ok, err := h.store.Get(ctx, nick)
		if err != nil {
			log.Error("read saved location", zap.Error(err))
			return msgStoreFail
		}
		if !ok {
			return fmt.Sprintf(msgNoSaved, h.prefix)
		}
		req = stored
	}

	log.Debug("weather lookup", zap.String("location", req.String()), zap.String("kind", string(req.Kind)))

	report, err := h.service.Report(ctx, req)
	if err != nil {
		return h.errorMessage(log, req, err)
	}
	return report.Text
}

// SetLocation answers ".setlocation <location>". The location must resolve
// before it is saved.
func (h *Handler) SetLocation(ctx context.Context, nick, args string) string {
	log := h.requestLogger(nick, "setlocation")

	req, err := weather.ParseLocation(args)
	if errors.Is(err, weather.ErrNoLocation) {
		return msgSetUsage
	}

	place, err := h.service.Resolve(ctx, req)
	if err != nil {
		return h.errorMessage(log, req, err)
	}

	stored := weather.StoredRequest(req, place)

	if err := h.store.Set(ctx, nick, stored); err != nil {
		log.Error("save location", zap.Error(err))
		return msgStoreFail
	}
	log.Info("location saved", zap.String("location", stored.String()))

	switch {
	case place.Ambiguous():
		return fmt.Sprintf("I now have you at %s (several places share this name, use place id %d for a precise lookup)",
			place.Primary.Label(), place.Primary.ID)
	case place.Primary.ID > 0:
		return fmt.Sprintf("I now have you at ID %d: %s", place.Primary.ID, place.Primary.Label())
	default:
		return fmt.Sprintf("I now have you at %s", place.Primary.Label())
	}
}

// errorMessage turns a lookup failure into the user-facing line. Provider
// details only go to the log.
func (h *Handler) errorMessage(log *zap.Logger, req weather.LocationRequest, err error) string {
	var dis *weather.DisambiguationError
	switch {
	case errors.As(err, &dis):
		log.Info("location needs disambiguation", zap.String("query", dis.Query), zap.Int("candidates", len(dis.Candidates)))
		if dis.Collision {
			city, country := splitCityCountry(dis.Query)
			label := common.CapWords(city)
			if country != "" {
				label += "," + country
			}
			return fmt.Sprintf(msgCollision, label, url.QueryEscape(city))
		}
		options := make([]string, 0, len(dis.Candidates))
		for _, c := range dis.Candidates {
			options = append(options, fmt.Sprintf("%s (id %d)", c.Label(), c.ID))
		}
		return fmt.Sprintf(msgRefine, strings.Join(options, ", "))

	case errors.Is(err, weather.ErrNotFound):
		log.Info("location not found", zap.String("location", req.String()), zap.Error(err))
		if req.Kind == weather.KindText {
			if _, country := splitCityCountry(req.Query); country == "US" {
				return msgNotFoundUS
			}
		}
		return msgNotFound

	case errors.Is(err, weather.ErrUnauthorized):
		log.Error("provider rejected credentials", zap.Error(err))
		return msgConfigError

	default:
		log.Error("provider failure", zap.Error(err))
		return msgOffline
	}
}

func (h *Handler) requestLogger(nick, command string) *zap.Logger {
	return h.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("nick", nick),
		zap.String("command", command),
	)
}

func splitCityCountry(query string) (string, string) {
	city, country, _ := strings.Cut(query, ",")
	return strings.TrimSpace(city), strings.TrimSpace(country)
}
