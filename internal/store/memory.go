package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/ircweather/internal/weather"
)

// MemoryLocationStore is a concurrency-safe in-memory nick -> location store.
// Records live until the process exits.
type MemoryLocationStore struct {
	mu sync.RWMutex

	// key: nick exactly as sent by the server
	data map[string]weather.LocationRequest
}

func NewMemoryLocationStore() *MemoryLocationStore {
	return &MemoryLocationStore{
		data: make(map[string]weather.LocationRequest),
	}
}

func (s *MemoryLocationStore) Get(_ context.Context, nick string) (weather.LocationRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.data[nick]
	return req, ok, nil
}

func (s *MemoryLocationStore) Set(_ context.Context, nick string, req weather.LocationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[nick] = req
	return nil
}

func (s *MemoryLocationStore) Close() error {
	return nil
}

// SnapshotCache keeps the latest snapshot per place id for a bounded age.
type SnapshotCache struct {
	mu sync.RWMutex

	// key: provider place id
	data map[int64]weather.WeatherSnapshot

	maxAge time.Duration
	now    func() time.Time
}

// NewSnapshotCache creates a cache whose entries expire after maxAge.
// A maxAge <= 0 disables caching: Get always misses and Save is a no-op.
func NewSnapshotCache(maxAge time.Duration) *SnapshotCache {
	return &SnapshotCache{
		data:   make(map[int64]weather.WeatherSnapshot),
		maxAge: maxAge,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a snapshot that is younger than the cache max age.
func (c *SnapshotCache) Get(placeID int64) (weather.WeatherSnapshot, bool) {
	if c.maxAge <= 0 {
		return weather.WeatherSnapshot{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.data[placeID]
	if !ok || c.expired(snap, c.now()) {
		return weather.WeatherSnapshot{}, false
	}
	return snap, true
}

// Save stores the snapshot, replacing any previous one for the place.
func (c *SnapshotCache) Save(snapshot weather.WeatherSnapshot) {
	if c.maxAge <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[snapshot.Place.ID] = snapshot
}

// Sweep removes expired entries and reports how many were dropped.
func (c *SnapshotCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, snap := range c.data {
		if c.expired(snap, now) {
			delete(c.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries, expired or not.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *SnapshotCache) expired(snap weather.WeatherSnapshot, now time.Time) bool {
	return now.Sub(snap.FetchedAt) >= c.maxAge
}

var (
	_ weather.LocationStore = (*MemoryLocationStore)(nil)
	_ weather.SnapshotCache = (*SnapshotCache)(nil)
)
