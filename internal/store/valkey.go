package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/i474232898/ircweather/internal/weather"
)

// ValkeyLocationStore keeps nick locations in a Valkey-compatible database so
// several bot instances can share them.
type ValkeyLocationStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyClient connects to a single Valkey node.
func NewValkeyClient(addr string) (valkey.Client, error) {
	return valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
}

func NewValkeyLocationStore(client valkey.Client, prefix string) *ValkeyLocationStore {
	if prefix == "" {
		prefix = "ircweather"
	}
	return &ValkeyLocationStore{client: client, prefix: prefix}
}

func (s *ValkeyLocationStore) Get(ctx context.Context, nick string) (weather.LocationRequest, bool, error) {
	cmd := s.client.B().Get().Key(s.nickKey(nick)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return weather.LocationRequest{}, false, nil
		}
		return weather.LocationRequest{}, false, err
	}

	req, err := decodeRequest([]byte(payload))
	if err != nil {
		return weather.LocationRequest{}, false, fmt.Errorf("stored location for %s: %w", nick, err)
	}
	return req, true, nil
}

// Set writes without expiry; locations never expire on their own.
func (s *ValkeyLocationStore) Set(ctx context.Context, nick string, req weather.LocationRequest) error {
	payload, err := encodeRequest(req)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.nickKey(nick)).Value(string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyLocationStore) Close() error {
	s.client.Close()
	return nil
}

func (s *ValkeyLocationStore) nickKey(nick string) string {
	return fmt.Sprintf("%s:nick:%s", s.prefix, nick)
}

var _ weather.LocationStore = (*ValkeyLocationStore)(nil)
