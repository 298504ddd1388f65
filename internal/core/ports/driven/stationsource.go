package driven

import (
	"context"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

// StationSource fetches the canonical station directory from upstream.
// The directory is loaded once at startup and refreshed out-of-band.
type StationSource interface {
	// FetchStations returns the full station list.
	FetchStations(ctx context.Context) ([]domain.StationRecord, error)
}

// StationCacheStore persists directory snapshots between runs.
// Backed by SQLite for offline starts.
type StationCacheStore interface {
	// SaveStations replaces the cached station list.
	SaveStations(ctx context.Context, stations []domain.StationRecord) error

	// LoadStations returns the cached station list, or
	// domain.ErrNotFound when no snapshot exists.
	LoadStations(ctx context.Context) ([]domain.StationRecord, error)

	// SaveTrainCatalog replaces the cached train catalog.
	SaveTrainCatalog(ctx context.Context, trains []domain.TrainCandidate) error

	// LoadTrainCatalog returns the cached train catalog, or
	// domain.ErrNotFound when no snapshot exists.
	LoadTrainCatalog(ctx context.Context) ([]domain.TrainCandidate, error)
}
