package services

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driving"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Ensure StationIndex implements the interface.
var _ driving.StationResolver = (*StationIndex)(nil)

// Resolution confidence tiers. All tiers are always evaluated; the
// exact tier may be empty for queries the prefix tiers still answer.
const (
	confidenceExact      = 1.0
	confidencePrefix     = 0.9
	confidenceContains   = 0.7
	confidenceFallback   = 0.5
	maxStationCandidates = 8
	maxPrefixLen         = 3
)

// stationDirectory is one immutable snapshot of the index views.
// A rebuild constructs a fresh directory off to the side and publishes
// it with an atomic pointer swap, so readers never see a partial build
// and the read path needs no locking.
type stationDirectory struct {
	byName   map[string]*domain.StationRecord   // exact local + romanized names
	byPrefix map[string][]*domain.StationRecord // 1..3-rune prefixes of each name
	records  []domain.StationRecord
}

// StationIndex serves fuzzy lookups over the station directory.
// Resolve must not be called before the first Rebuild completes.
type StationIndex struct {
	aliases atomic.Pointer[map[string]string] // curated synonym → canonical name
	active  atomic.Pointer[stationDirectory]
}

// NewStationIndex creates an index with the given alias table. The
// alias table is versioned data (e.g. 北車 → 臺北); pass nil for none.
// The index is not ready until Rebuild has been called once.
func NewStationIndex(aliases map[string]string) *StationIndex {
	idx := &StationIndex{}
	normalized := normalizeAliases(aliases)
	idx.aliases.Store(&normalized)
	return idx
}

// normalizeAliases folds alias keys through the same normalization as
// queries, so lookups hit regardless of variant characters in the
// curated table.
func normalizeAliases(aliases map[string]string) map[string]string {
	normalized := make(map[string]string, len(aliases))
	for k, v := range aliases {
		normalized[normalizeStationText(k)] = v
	}
	return normalized
}

// Ready reports whether a build has completed at least once.
func (idx *StationIndex) Ready() bool {
	return idx.active.Load() != nil
}

// SetAliases replaces the alias table, e.g. after the curated alias
// file changed on disk. Safe to call while Resolve is running.
func (idx *StationIndex) SetAliases(aliases map[string]string) {
	normalized := normalizeAliases(aliases)
	idx.aliases.Store(&normalized)
}

// Rebuild clears and repopulates all index views from the station
// list, then atomically publishes the new snapshot.
func (idx *StationIndex) Rebuild(stations []domain.StationRecord) {
	dir := &stationDirectory{
		byName:   make(map[string]*domain.StationRecord, len(stations)*2),
		byPrefix: make(map[string][]*domain.StationRecord),
		records:  make([]domain.StationRecord, len(stations)),
	}
	copy(dir.records, stations)

	for i := range dir.records {
		rec := &dir.records[i]
		local := normalizeStationText(rec.NameLocal)
		roman := normalizeStationText(rec.NameRomanized)

		if local != "" {
			dir.byName[local] = rec
			indexPrefixes(dir.byPrefix, local, rec)
		}
		if roman != "" && roman != local {
			dir.byName[roman] = rec
			indexPrefixes(dir.byPrefix, roman, rec)
		}
	}

	idx.active.Store(dir)
	logger.Debug("station directory rebuilt: %d stations, %d name keys, %d prefix buckets",
		len(stations), len(dir.byName), len(dir.byPrefix))
}

// indexPrefixes files the record under every 1..3-rune prefix of name.
func indexPrefixes(byPrefix map[string][]*domain.StationRecord, name string, rec *domain.StationRecord) {
	runes := []rune(name)
	for l := 1; l <= maxPrefixLen && l <= len(runes); l++ {
		key := string(runes[:l])
		byPrefix[key] = append(byPrefix[key], rec)
	}
}

// Resolve returns ranked station candidates for free text, sorted
// descending by confidence then alphabetically by name, truncated to
// the top 8. It panics if the directory was never built: that is a
// call-contract violation, not a degradable condition.
func (idx *StationIndex) Resolve(text string) []domain.StationCandidate {
	dir := idx.active.Load()
	if dir == nil {
		panic(domain.ErrIndexNotReady)
	}

	query := normalizeStationText(text)
	if query == "" {
		return nil
	}
	aliases := *idx.aliases.Load()
	expanded := query
	if canonical, ok := aliases[query]; ok {
		expanded = normalizeStationText(canonical)
		logger.Debug("alias expansion: %q → %q", query, expanded)
	}

	// Dedupe by station ID keeping the best confidence across tiers.
	best := make(map[string]float64)

	// Tier 1: exact name match, raw and alias-expanded.
	for _, q := range []string{query, expanded} {
		if rec, ok := dir.byName[q]; ok {
			keepBest(best, rec.ID, confidenceExact)
		}
	}

	// Tier 2: prefix buckets, longest prefix first. Bucket members
	// that neither start with nor contain the full query are not
	// admitted here; broad admission belongs to the fallback tier.
	runes := []rune(expanded)
	for l := maxPrefixLen; l >= 1; l-- {
		if l > len(runes) {
			continue
		}
		for _, rec := range dir.byPrefix[string(runes[:l])] {
			if c := prefixConfidence(rec, expanded); c > 0 {
				keepBest(best, rec.ID, c)
			}
		}
	}

	// Tier 3: broad fallback for thin result sets on longer queries.
	if len(best) < 3 && len(runes) >= 2 {
		for _, rec := range dir.byPrefix[string(runes[:2])] {
			keepBest(best, rec.ID, confidenceFallback)
		}
	}

	return dir.rank(best)
}

// keepBest records the maximum confidence seen for a station.
func keepBest(best map[string]float64, id string, confidence float64) {
	if confidence > best[id] {
		best[id] = confidence
	}
}

// prefixConfidence scores a prefix-bucket hit: starts-with beats a
// mere substring containment. Zero means the record only shares a
// short prefix with the query and does not belong in this tier.
func prefixConfidence(rec *domain.StationRecord, query string) float64 {
	local := normalizeStationText(rec.NameLocal)
	roman := normalizeStationText(rec.NameRomanized)
	if strings.HasPrefix(local, query) || strings.HasPrefix(roman, query) {
		return confidencePrefix
	}
	if strings.Contains(local, query) || strings.Contains(roman, query) {
		return confidenceContains
	}
	return 0
}

// rank materializes, orders and truncates the deduplicated scores.
func (dir *stationDirectory) rank(best map[string]float64) []domain.StationCandidate {
	byID := make(map[string]*domain.StationRecord, len(dir.records))
	for i := range dir.records {
		byID[dir.records[i].ID] = &dir.records[i]
	}

	candidates := make([]domain.StationCandidate, 0, len(best))
	for id, confidence := range best {
		rec := byID[id]
		candidates = append(candidates, domain.StationCandidate{
			StationID:   rec.ID,
			DisplayName: rec.NameLocal,
			Confidence:  confidence,
			Address:     rec.Address,
			Position:    rec.Position,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].DisplayName < candidates[j].DisplayName
	})

	if len(candidates) > maxStationCandidates {
		candidates = candidates[:maxStationCandidates]
	}
	return candidates
}

// variantRunes maps simplified/variant Han characters onto the
// canonical forms used in the directory. 台/臺 is the common case.
var variantRunes = map[rune]rune{
	'台': '臺',
	'薹': '臺',
	'颱': '臺',
}

// stationSuffixes are dropped from the end of a query before lookup;
// "台北車站" and "台北" should resolve identically.
var stationSuffixes = []string{"火車站", "車站", "站"}

// normalizeStationText canonicalizes a name or query for index lookup:
// trim, lowercase (for romanized names), variant-character folding and
// station-suffix stripping.
func normalizeStationText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if canonical, ok := variantRunes[r]; ok {
			r = canonical
		}
		b.WriteRune(r)
	}
	s = b.String()

	for _, suffix := range stationSuffixes {
		if trimmed := strings.TrimSuffix(s, suffix); trimmed != s && trimmed != "" {
			s = trimmed
			break
		}
	}
	return s
}
