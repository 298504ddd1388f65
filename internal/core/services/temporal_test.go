package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

func taipei(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return loc
}

func fixedFilter(t *testing.T, instant time.Time) *TemporalFilter {
	t.Helper()
	return NewTemporalFilter(&FixedClock{Instant: instant})
}

func row(trainNo, typeCode, dep, arr string) domain.TrainSearchResult {
	return domain.TrainSearchResult{
		TrainNo:               trainNo,
		TrainTypeCode:         typeCode,
		TrainType:             "區間",
		DepartureTime:         dep,
		ArrivalTime:           arr,
		TravelTimeMinutes:     travelMinutes(dep, arr),
		IsMonthlyPassEligible: domain.IsMonthlyPassEligible(typeCode),
	}
}

func TestAddMinutesToTime(t *testing.T) {
	tests := []struct {
		in    string
		delta int
		want  string
	}{
		{"23:45", 30, "00:15"},
		{"00:15", -30, "23:45"},
		{"12:00", 0, "12:00"},
		{"12:00", 1440, "12:00"},
		{"12:00", -2880, "12:00"},
		{"00:00", -1, "23:59"},
		{"08:30", 3000, "10:30"},
		{"08:30:15", 30, "09:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMinutesToTime(tt.in, tt.delta), "%s %+d", tt.in, tt.delta)
	}

	// Unparseable input passes through unchanged.
	assert.Equal(t, "garbage", AddMinutesToTime("garbage", 10))
}

func TestAddMinutesToTimeAssociative(t *testing.T) {
	deltas := []int{0, 1, -1, 59, 60, 61, 1439, 1440, 1441, -1440, -5000, 99999}
	times := []string{"00:00", "06:30", "12:00", "23:59"}
	for _, base := range times {
		for _, d1 := range deltas {
			for _, d2 := range deltas {
				chained := AddMinutesToTime(AddMinutesToTime(base, d1), d2)
				direct := AddMinutesToTime(base, d1+d2)
				assert.Equal(t, direct, chained, "base=%s d1=%d d2=%d", base, d1, d2)
			}
		}
	}
}

func TestFilterWindowExclusion(t *testing.T) {
	// 2026-03-14 10:00 local.
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{
		row("1", "6", "08:00", "09:00"), // before lookback
		row("2", "6", "10:30", "11:30"), // inside window
		row("3", "6", "12:45", "13:45"), // inside window
		row("4", "6", "14:00", "15:00"), // past default 3h window
	}

	got := f.Filter(rows, domain.Preferences{}, "", "", nil)
	nos := resultNos(got)
	assert.Equal(t, []string{"2", "3"}, nos)
}

func TestFilterExcludesDepartedToday(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{
		row("1", "6", "09:30", "10:30"), // within lookback but departed
		row("2", "6", "10:15", "11:15"),
	}

	got := f.Filter(rows, domain.Preferences{}, "", "", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].TrainNo)
	assert.False(t, got[0].HasDeparted)
	assert.True(t, got[0].IsImminent)
	assert.Equal(t, 15, got[0].MinutesUntilDeparture)
}

func TestFilterDelayedTrainNotDeparted(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{
		row("152", "6", "09:50", "11:00"), // scheduled 10 min ago
	}
	delays := map[string]domain.LiveDelay{
		"152": {TrainNo: "152", DelayMinutes: 25, Status: "誤點"},
	}

	got := f.Filter(rows, domain.Preferences{}, "", "", delays)
	require.Len(t, got, 1)
	assert.False(t, got[0].HasDeparted)
	assert.Equal(t, 25, got[0].DelayMinutes)
	assert.Equal(t, "10:15", got[0].AdjustedDepartureTime)
	assert.Equal(t, "11:25", got[0].AdjustedArrivalTime)
	assert.Equal(t, 15, got[0].MinutesUntilDeparture)
}

func TestFilterDelayMergeNegativeOffset(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{row("272", "6", "11:00", "12:10")}
	delays := map[string]domain.LiveDelay{
		"272": {TrainNo: "272", DelayMinutes: -5, Status: "早點"},
	}

	got := f.Filter(rows, domain.Preferences{}, "", "", delays)
	require.Len(t, got, 1)
	assert.Equal(t, "10:55", got[0].AdjustedDepartureTime)
	assert.Equal(t, "12:05", got[0].AdjustedArrivalTime)
}

func TestFilterFutureDateSuppressesStatusFlags(t *testing.T) {
	now := time.Date(2026, 3, 14, 22, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{row("1", "6", "21:30", "22:30")}

	// For tomorrow's date 21:30 is within the window around 22:00 and
	// must not be reported as departed.
	got := f.Filter(rows, domain.Preferences{}, "2026-03-15", "21:00", nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].HasDeparted)
	assert.False(t, got[0].IsImminent)
	assert.Zero(t, got[0].MinutesUntilDeparture)
}

func TestFilterExplicitTargetTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 6, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{
		row("1", "6", "07:00", "08:00"),
		row("2", "6", "15:10", "16:10"),
		row("3", "6", "16:40", "17:40"),
	}

	got := f.Filter(rows, domain.Preferences{}, "2026-03-14", "15:00", nil)
	assert.Equal(t, []string{"2", "3"}, resultNos(got))
}

func TestFilterMalformedDateFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{row("1", "6", "10:30", "11:30")}

	for _, bad := range []string{"2026-13-01", "2026-02-30", "not-a-date", "1999-01-01", "2026-00-10"} {
		got := f.Filter(rows, domain.Preferences{}, bad, "", nil)
		require.Len(t, got, 1, "date %q should degrade to now, not drop results", bad)
	}
}

func TestFilterMonthlyPassDefaultAndBackfill(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	// One eligible local, four ineligible expresses, all in window.
	rows := []domain.TrainSearchResult{
		row("101", "3", "10:20", "11:00"),
		row("201", "6", "10:40", "12:00"),
		row("103", "3", "11:00", "11:40"),
		row("105", "1", "11:30", "12:05"),
		row("107", "2", "12:10", "12:45"),
	}

	got := f.Filter(rows, domain.Preferences{}, "", "", nil)
	require.Len(t, got, 3)

	var primaries, backups []string
	for _, r := range got {
		if r.IsBackupOption {
			backups = append(backups, r.TrainNo)
		} else {
			primaries = append(primaries, r.TrainNo)
		}
	}
	assert.Equal(t, []string{"201"}, primaries)
	assert.Equal(t, []string{"101", "103"}, backups)

	// Ordered by departure time overall, flags mixed.
	assert.Equal(t, []string{"101", "201", "103"}, resultNos(got))
}

func TestFilterIncludeAllTrainTypes(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	rows := []domain.TrainSearchResult{
		row("101", "3", "10:20", "11:00"),
		row("201", "6", "10:40", "12:00"),
	}

	got := f.Filter(rows, domain.Preferences{IncludeAllTrainTypes: true}, "", "", nil)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.False(t, r.IsBackupOption)
	}
}

func TestFilterDirectOnly(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	direct := row("1", "6", "10:20", "11:00")
	stopping := row("2", "6", "10:40", "12:00")
	stopping.IntermediateStopCount = 4

	got := f.Filter([]domain.TrainSearchResult{direct, stopping}, domain.Preferences{DirectOnly: true}, "", "", nil)
	assert.Equal(t, []string{"1"}, resultNos(got))
}

func TestFilterWindowOverrideClamped(t *testing.T) {
	assert.Equal(t, defaultWindowHours, clampWindowHours(0))
	assert.Equal(t, minWindowHours, clampWindowHours(-3))
	assert.Equal(t, maxWindowHours, clampWindowHours(48))
	assert.Equal(t, 6, clampWindowHours(6))
}

func TestAnchorDepartureRollover(t *testing.T) {
	loc := taipei(t)

	tests := []struct {
		name    string
		now     time.Time
		depTime string
		wantDay int
	}{
		{
			name:    "early departure late clock rolls to tomorrow",
			now:     time.Date(2026, 3, 14, 22, 30, 0, 0, loc),
			depTime: "00:30",
			wantDay: 15,
		},
		{
			name:    "gap over 18 hours rolls to tomorrow",
			now:     time.Date(2026, 3, 14, 23, 30, 0, 0, loc),
			depTime: "04:00",
			wantDay: 15,
		},
		{
			name:    "recent departure stays today",
			now:     time.Date(2026, 3, 14, 10, 0, 0, 0, loc),
			depTime: "09:30",
			wantDay: 14,
		},
		{
			name:    "mid-gap ambiguity defaults to today",
			now:     time.Date(2026, 3, 14, 18, 0, 0, 0, loc),
			depTime: "10:00",
			wantDay: 14,
		},
		{
			name:    "future time stays today",
			now:     time.Date(2026, 3, 14, 10, 0, 0, 0, loc),
			depTime: "10:01",
			wantDay: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fixedFilter(t, tt.now)
			anchored, ok := f.anchorDepartureTime(tt.now, tt.depTime, "")
			require.True(t, ok)
			assert.Equal(t, tt.wantDay, anchored.Day())
		})
	}
}

func TestAnchorDepartureExplicitDateBypassesHeuristics(t *testing.T) {
	now := time.Date(2026, 3, 14, 23, 0, 0, 0, taipei(t))
	f := fixedFilter(t, now)

	anchored, ok := f.anchorDepartureTime(now, "00:30", "2026-03-20")
	require.True(t, ok)
	assert.Equal(t, 20, anchored.Day())
	assert.Equal(t, time.March, anchored.Month())
}

func resultNos(results []domain.TrainSearchResult) []string {
	nos := make([]string, len(results))
	for i, r := range results {
		nos[i] = r.TrainNo
	}
	return nos
}
