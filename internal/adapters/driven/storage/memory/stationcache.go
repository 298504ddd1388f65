// Package memory provides in-memory implementations of driven port
// interfaces, used in tests and for cache-less runs.
package memory

import (
	"context"
	"sync"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
)

// Ensure StationCache implements the interface.
var _ driven.StationCacheStore = (*StationCache)(nil)

// StationCache is an in-memory implementation of
// driven.StationCacheStore.
type StationCache struct {
	mu          sync.RWMutex
	stations    []domain.StationRecord
	trains      []domain.TrainCandidate
	hasStations bool
	hasTrains   bool
}

// NewStationCache creates a new in-memory station cache.
func NewStationCache() *StationCache {
	return &StationCache{}
}

// SaveStations replaces the cached station list.
func (c *StationCache) SaveStations(_ context.Context, stations []domain.StationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stations = append([]domain.StationRecord(nil), stations...)
	c.hasStations = true
	return nil
}

// LoadStations returns the cached station list.
func (c *StationCache) LoadStations(_ context.Context) ([]domain.StationRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasStations {
		return nil, domain.ErrNotFound
	}
	return append([]domain.StationRecord(nil), c.stations...), nil
}

// SaveTrainCatalog replaces the cached train catalog.
func (c *StationCache) SaveTrainCatalog(_ context.Context, trains []domain.TrainCandidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trains = append([]domain.TrainCandidate(nil), trains...)
	c.hasTrains = true
	return nil
}

// LoadTrainCatalog returns the cached train catalog.
func (c *StationCache) LoadTrainCatalog(_ context.Context) ([]domain.TrainCandidate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasTrains {
		return nil, domain.ErrNotFound
	}
	return append([]domain.TrainCandidate(nil), c.trains...), nil
}
