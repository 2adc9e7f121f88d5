package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/i474232898/ircweather/internal/weather"
)

// SQLiteLocationStore persists nick locations in a SQLite file using the
// pure Go modernc.org/sqlite driver.
type SQLiteLocationStore struct {
	db *sql.DB
}

// NewSQLiteLocationStore opens (or creates) the database at path and applies
// the schema.
func NewSQLiteLocationStore(path string, logger *zap.Logger) (*SQLiteLocationStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps readers unblocked while another nick is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not set WAL mode", zap.Error(err))
	}

	schema := `CREATE TABLE IF NOT EXISTS nick_locations (
        nick TEXT PRIMARY KEY,
        request TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteLocationStore{db: db}, nil
}

func (s *SQLiteLocationStore) Get(ctx context.Context, nick string) (weather.LocationRequest, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT request FROM nick_locations WHERE nick = ?`, nick).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.LocationRequest{}, false, nil
	}
	if err != nil {
		return weather.LocationRequest{}, false, err
	}

	req, err := decodeRequest([]byte(payload))
	if err != nil {
		return weather.LocationRequest{}, false, fmt.Errorf("stored location for %s: %w", nick, err)
	}
	return req, true, nil
}

func (s *SQLiteLocationStore) Set(ctx context.Context, nick string, req weather.LocationRequest) error {
	payload, err := encodeRequest(req)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nick_locations(nick, request, updated_at) VALUES(?,?,?)
         ON CONFLICT(nick) DO UPDATE SET request = excluded.request, updated_at = excluded.updated_at`,
		nick, string(payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteLocationStore) Close() error {
	return s.db.Close()
}

func encodeRequest(req weather.LocationRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

func decodeRequest(payload []byte) (weather.LocationRequest, error) {
	var req weather.LocationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return weather.LocationRequest{}, err
	}
	if err := req.Validate(); err != nil {
		return weather.LocationRequest{}, err
	}
	return req, nil
}

var _ weather.LocationStore = (*SQLiteLocationStore)(nil)
