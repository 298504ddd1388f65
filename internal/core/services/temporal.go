package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Window and ranking defaults. The forward window is user-overridable
// via preferences; the lookback is fixed.
const (
	defaultWindowHours = 3
	minWindowHours     = 1
	maxWindowHours     = 24
	lookbackHours      = 1
	defaultMaxResults  = 3
	imminentMinutes    = 30
)

// Day-rollover heuristics for bare departure times without a reference
// date (see anchorDepartureTime).
const (
	earlyMorningHour = 6
	lateClockHour    = 20
	nextDayGapHours  = 18
	recentGapHours   = 2
)

// TemporalFilter computes the applicable time window for a query,
// annotates candidates with derived timing fields, merges live delays,
// filters, ranks and partitions into primary/backup sets.
type TemporalFilter struct {
	clock      driven.Clock
	maxResults int
}

// NewTemporalFilter creates a filter using the injected clock for all
// "now" and "today" decisions.
func NewTemporalFilter(clock driven.Clock) *TemporalFilter {
	return &TemporalFilter{clock: clock, maxResults: defaultMaxResults}
}

// Filter applies the full temporal pipeline and returns the ranked
// result list: up to maxResults primary options plus backfilled
// backups, ordered by departure time overall. Malformed temporal
// inputs degrade to "now" and are logged, never surfaced as errors.
func (f *TemporalFilter) Filter(
	results []domain.TrainSearchResult,
	prefs domain.Preferences,
	targetDate, targetTime string,
	liveDelays map[string]domain.LiveDelay,
) []domain.TrainSearchResult {
	now := f.clock.Now()
	base := f.resolveBaseTime(now, targetDate, targetTime)
	window := clampWindowHours(prefs.TimeWindowHours)

	minTime := base.Add(-lookbackHours * time.Hour)
	maxTime := base.Add(time.Duration(window) * time.Hour)
	logger.Debug("time window: [%s, %s] (base %s, window %dh)",
		minTime.Format("15:04"), maxTime.Format("15:04"), base.Format(time.DateTime), window)

	// A malformed date already degraded to "now" above; treat the
	// effective date accordingly instead of re-validating per row.
	effectiveDate := targetDate
	if effectiveDate != "" {
		if _, _, _, ok := parseISODate(effectiveDate); !ok {
			effectiveDate = ""
		}
	}

	// Departure-status flags are only meaningful when the effective
	// service date is the injected "today".
	isToday := effectiveDate == "" || effectiveDate == now.Format(time.DateOnly)
	refDate := effectiveDate

	var primary, excluded []domain.TrainSearchResult
	for _, r := range results {
		anchored, ok := f.anchorDepartureTime(now, r.DepartureTime, refDate)
		if !ok {
			logger.Warn("train %s: unparseable departure %q, skipped", r.TrainNo, r.DepartureTime)
			continue
		}
		if anchored.Before(minTime) || anchored.After(maxTime) {
			continue
		}

		if prefs.DirectOnly && r.IntermediateStopCount > 0 {
			continue
		}
		if prefs.TrainType != "" && !strings.Contains(r.TrainType, prefs.TrainType) {
			continue
		}

		if isToday {
			until := int(anchored.Sub(now).Minutes())
			r.MinutesUntilDeparture = until
			r.HasDeparted = until < 0
			r.IsImminent = until >= 0 && until <= imminentMinutes
		} else {
			r.MinutesUntilDeparture = 0
			r.HasDeparted = false
			r.IsImminent = false
		}

		if delay, ok := liveDelays[r.TrainNo]; ok {
			r.DelayMinutes = delay.DelayMinutes
			r.AdjustedDepartureTime = AddMinutesToTime(r.DepartureTime, delay.DelayMinutes)
			r.AdjustedArrivalTime = AddMinutesToTime(r.ArrivalTime, delay.DelayMinutes)

			// A train past its scheduled slot but still delayed at the
			// platform has not actually departed. This is what the
			// lookback portion of the window exists for.
			if isToday && r.HasDeparted && delay.DelayMinutes > 0 {
				adjusted := anchored.Add(time.Duration(delay.DelayMinutes) * time.Minute)
				if until := int(adjusted.Sub(now).Minutes()); until >= 0 {
					r.HasDeparted = false
					r.MinutesUntilDeparture = until
					r.IsImminent = until <= imminentMinutes
				}
			}
		}

		if isToday && r.HasDeparted {
			continue
		}

		if r.IsMonthlyPassEligible || prefs.IncludeAllTrainTypes {
			primary = append(primary, r)
		} else {
			excluded = append(excluded, r)
		}
	}

	sortByDeparture(primary)
	sortByDeparture(excluded)

	if len(primary) > f.maxResults {
		primary = primary[:f.maxResults]
	}

	// Backfill a thin primary set from the excluded pool, flagged as
	// backups, unless the caller already asked for everything.
	if !prefs.IncludeAllTrainTypes && len(primary) < f.maxResults {
		shortfall := f.maxResults - len(primary)
		for i := 0; i < len(excluded) && i < shortfall; i++ {
			backup := excluded[i]
			backup.IsBackupOption = true
			primary = append(primary, backup)
		}
		sortByDeparture(primary)
	}

	return primary
}

// resolveBaseTime constructs the window's base instant. Explicit
// date/time components are bounds-checked rather than trusted from
// string parsing; anything out of range falls back to now with a log
// line for observability.
func (f *TemporalFilter) resolveBaseTime(now time.Time, targetDate, targetTime string) time.Time {
	if targetDate == "" {
		return now
	}

	year, month, day, ok := parseISODate(targetDate)
	if !ok {
		logger.Warn("invalid target date %q, falling back to now", targetDate)
		return now
	}

	hour, minute := now.Hour(), now.Minute()
	if targetTime != "" {
		m, ok := parseClockMinutes(targetTime)
		if !ok {
			logger.Warn("invalid target time %q, falling back to current clock", targetTime)
		} else {
			hour, minute = m/60, m%60
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
}

// parseISODate validates a YYYY-MM-DD string component-wise: numeric
// fields within calendar bounds, and the assembled date must round-
// trip (rejecting e.g. Feb 30, which time.Date would silently
// normalize).
func parseISODate(s string) (year, month, day int, ok bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 2000 || year > 2100 {
		return 0, 0, 0, false
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	day, err = strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	assembled := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if assembled.Day() != day || int(assembled.Month()) != month {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// anchorDepartureTime pins a bare clock time to a concrete date. With
// an explicit reference date there is nothing to guess. Without one,
// a time earlier than now is disambiguated heuristically:
//
//   - early-morning departure (before 06:00) while the clock reads
//     late evening (20:00 or later), or a gap over 18 hours, means the
//     departure is tomorrow;
//   - a gap under 2 hours means the train left recently today;
//   - anything between is treated as today's departed train.
//
// The thresholds are tie-breaks with no formal justification; callers
// that can supply an explicit date bypass them entirely.
func (f *TemporalFilter) anchorDepartureTime(now time.Time, depTime, refDate string) (time.Time, bool) {
	m, ok := parseClockMinutes(depTime)
	if !ok {
		return time.Time{}, false
	}
	hour, minute := m/60, m%60

	if refDate != "" {
		year, month, day, ok := parseISODate(refDate)
		if !ok {
			logger.Warn("invalid reference date %q, anchoring to today", refDate)
		} else {
			return time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location()), true
		}
	}

	anchored := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !anchored.Before(now) {
		return anchored, true
	}

	gap := now.Sub(anchored)
	earlyDeparture := hour < earlyMorningHour
	lateClock := now.Hour() >= lateClockHour
	switch {
	case (earlyDeparture && lateClock) || gap > nextDayGapHours*time.Hour:
		return anchored.AddDate(0, 0, 1), true
	case gap < recentGapHours*time.Hour:
		// Recent same-day departure; keep today's date so it is
		// reported as departed rather than shifted to tomorrow.
		return anchored, true
	default:
		return anchored, true
	}
}

// clampWindowHours bounds the user-supplied forward window.
func clampWindowHours(h int) int {
	switch {
	case h == 0:
		return defaultWindowHours
	case h < minWindowHours:
		return minWindowHours
	case h > maxWindowHours:
		return maxWindowHours
	default:
		return h
	}
}

// sortByDeparture orders results ascending by scheduled departure.
// Lexical comparison is valid: times are fixed-width zero-padded.
func sortByDeparture(results []domain.TrainSearchResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].DepartureTime < results[j].DepartureTime
	})
}
