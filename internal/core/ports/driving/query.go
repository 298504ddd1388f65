package driving

import (
	"context"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

// QueryService answers free-form travel utterances.
type QueryService interface {
	// Search parses the utterance, resolves its entities, fetches the
	// relevant timetable and returns a filtered, ranked answer. A
	// non-searchable or ambiguous utterance is reported through the
	// response outcome, not as an error.
	Search(ctx context.Context, utterance string) (*domain.SearchResponse, error)
}

// StationResolver resolves free text against the station directory.
type StationResolver interface {
	// Resolve returns ranked candidates, best first, truncated to a
	// fixed top-N. It panics if the directory was never built.
	Resolve(text string) []domain.StationCandidate
}

// TrainResolver matches (possibly partial) train-number tokens against
// the known train catalog.
type TrainResolver interface {
	// Search tries exact, then prefix, then fuzzy matching and returns
	// the strategy that produced candidates.
	Search(token string) domain.TrainNumberMatch
}

// TripPlanner plans two-leg journeys through branch-line hubs.
type TripPlanner interface {
	// Plan returns a hub transfer plan for origin → destination, or
	// domain.ErrNoTransferRoute when neither endpoint is on a branch.
	Plan(ctx context.Context, originID, destinationID, date, timeHHMM string) (*domain.TransferPlan, error)
}
