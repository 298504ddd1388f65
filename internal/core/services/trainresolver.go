package services

import (
	"sort"
	"strings"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driving"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Ensure TrainCatalogResolver implements the interface.
var _ driving.TrainResolver = (*TrainCatalogResolver)(nil)

// maxTrainCandidates caps the suggestion list for prefix/fuzzy passes.
const maxTrainCandidates = 10

// TrainCatalogResolver matches train-number tokens against the known
// catalog. Strategies run in order: exact, prefix, fuzzy. Ambiguous or
// partial tokens are expected here; the caller must present every
// returned candidate rather than auto-picking the first.
type TrainCatalogResolver struct {
	catalog []domain.TrainCandidate
}

// NewTrainCatalogResolver creates a resolver over the given catalog.
func NewTrainCatalogResolver(catalog []domain.TrainCandidate) *TrainCatalogResolver {
	r := &TrainCatalogResolver{}
	r.SetCatalog(catalog)
	return r
}

// SetCatalog replaces the catalog, e.g. after a daily refresh.
func (r *TrainCatalogResolver) SetCatalog(catalog []domain.TrainCandidate) {
	sorted := make([]domain.TrainCandidate, len(catalog))
	copy(sorted, catalog)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TrainNo < sorted[j].TrainNo })
	r.catalog = sorted
}

// Search resolves a train-number token.
func (r *TrainCatalogResolver) Search(token string) domain.TrainNumberMatch {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.TrainNumberMatch{Strategy: domain.MatchStrategyExact}
	}

	for _, c := range r.catalog {
		if c.TrainNo == token {
			logger.Debug("train %q matched exactly", token)
			return domain.TrainNumberMatch{
				Strategy:   domain.MatchStrategyExact,
				Candidates: []domain.TrainCandidate{c},
			}
		}
	}

	var prefixed []domain.TrainCandidate
	for _, c := range r.catalog {
		if strings.HasPrefix(c.TrainNo, token) {
			prefixed = append(prefixed, c)
		}
	}
	if len(prefixed) > 0 {
		logger.Debug("train %q matched %d catalog entries by prefix", token, len(prefixed))
		return domain.TrainNumberMatch{
			Strategy:   domain.MatchStrategyPrefix,
			Candidates: truncateCandidates(prefixed),
		}
	}

	fuzzy := r.fuzzyCandidates(token)
	logger.Debug("train %q fell through to fuzzy: %d suggestions", token, len(fuzzy))
	return domain.TrainNumberMatch{
		Strategy:   domain.MatchStrategyFuzzy,
		Candidates: truncateCandidates(fuzzy),
	}
}

// fuzzyCandidates suggests near-misses: substring containment, or
// same-length numbers differing in a single digit. Ranked by distance
// then train number.
func (r *TrainCatalogResolver) fuzzyCandidates(token string) []domain.TrainCandidate {
	type scored struct {
		candidate domain.TrainCandidate
		distance  int
	}
	var hits []scored
	for _, c := range r.catalog {
		switch {
		case strings.Contains(c.TrainNo, token):
			hits = append(hits, scored{c, 0})
		case len(c.TrainNo) == len(token) && digitDistance(c.TrainNo, token) == 1:
			hits = append(hits, scored{c, 1})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].candidate.TrainNo < hits[j].candidate.TrainNo
	})

	candidates := make([]domain.TrainCandidate, len(hits))
	for i := range hits {
		candidates[i] = hits[i].candidate
	}
	return candidates
}

// digitDistance counts differing positions between two equal-length
// strings.
func digitDistance(a, b string) int {
	d := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

func truncateCandidates(candidates []domain.TrainCandidate) []domain.TrainCandidate {
	if len(candidates) > maxTrainCandidates {
		return candidates[:maxTrainCandidates]
	}
	return candidates
}
