package driven

import (
	"context"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

// TimetableSource fetches scheduled and live data from upstream (TDX).
type TimetableSource interface {
	// DailyTimetable returns all trains running between two resolved
	// station IDs on a service date (ISO YYYY-MM-DD).
	DailyTimetable(ctx context.Context, originID, destinationID, date string) ([]domain.TimetableRow, error)

	// LiveDelays returns current delay reports keyed by train number.
	// An empty map is a valid answer; live data is best-effort.
	LiveDelays(ctx context.Context) (map[string]domain.LiveDelay, error)

	// TrainCatalog returns the known train numbers for today, used by
	// the train-number resolver.
	TrainCatalog(ctx context.Context) ([]domain.TrainCandidate, error)
}
