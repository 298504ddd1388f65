package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

// --- Mock implementations ---

// mockTimetableSource implements driven.TimetableSource for testing.
type mockTimetableSource struct {
	rows     []domain.TimetableRow
	delays   map[string]domain.LiveDelay
	catalog  []domain.TrainCandidate
	rowsErr  error
	delayErr error

	// lastRequest records the most recent DailyTimetable call.
	lastOrigin string
	lastDest   string
	lastDate   string
}

func (m *mockTimetableSource) DailyTimetable(_ context.Context, originID, destinationID, date string) ([]domain.TimetableRow, error) {
	m.lastOrigin, m.lastDest, m.lastDate = originID, destinationID, date
	return m.rows, m.rowsErr
}

func (m *mockTimetableSource) LiveDelays(_ context.Context) (map[string]domain.LiveDelay, error) {
	if m.delayErr != nil {
		return nil, m.delayErr
	}
	return m.delays, nil
}

func (m *mockTimetableSource) TrainCatalog(_ context.Context) ([]domain.TrainCandidate, error) {
	return m.catalog, nil
}

// timetableRow builds a three-stop run 1000 → 1020 → 3300.
func timetableRow(trainNo, typeCode, typeName, depOrigin, arrMid, arrDest string) domain.TimetableRow {
	return domain.TimetableRow{
		TrainNo:       trainNo,
		TrainTypeCode: typeCode,
		TrainTypeName: typeName,
		Stops: []domain.StopTime{
			{StationID: "1000", StopSequence: 1, ArrivalTime: depOrigin, DepartureTime: depOrigin},
			{StationID: "1020", StopSequence: 2, ArrivalTime: arrMid, DepartureTime: arrMid},
			{StationID: "3300", StopSequence: 3, ArrivalTime: arrDest, DepartureTime: arrDest},
		},
	}
}

func newTestSearch(t *testing.T, source *mockTimetableSource) *TrainSearch {
	t.Helper()
	clock := &FixedClock{Instant: time.Date(2026, 3, 14, 10, 0, 0, 0, taipei(t))}

	idx := NewStationIndex(testAliases())
	idx.Rebuild(testStations())

	return NewTrainSearch(
		NewQueryParser(clock),
		idx,
		NewTrainCatalogResolver(testCatalog()),
		source,
		NewTemporalFilter(clock),
		clock,
	)
}

func TestSearchEndToEnd(t *testing.T) {
	source := &mockTimetableSource{
		rows: []domain.TimetableRow{
			timetableRow("201", "6", "區間", "10:30", "10:50", "12:30"),
			timetableRow("101", "3", "自強", "11:00", "11:15", "12:10"),
			timetableRow("9", "6", "區間", "08:00", "08:20", "09:40"), // departed
		},
	}
	s := newTestSearch(t, source)

	resp, err := s.Search(context.Background(), "台北到台中")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeResults, resp.Outcome)
	require.NotNil(t, resp.Origin)
	require.NotNil(t, resp.Destination)
	assert.Equal(t, "1000", resp.Origin.StationID)
	assert.Equal(t, "3300", resp.Destination.StationID)

	// Fetch used the resolved pair and defaulted the date to today.
	assert.Equal(t, "1000", source.lastOrigin)
	assert.Equal(t, "3300", source.lastDest)
	assert.Equal(t, "2026-03-14", source.lastDate)

	// 201 is the eligible primary; 101 backfills as backup; 9 is gone.
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "201", resp.Results[0].TrainNo)
	assert.False(t, resp.Results[0].IsBackupOption)
	assert.Equal(t, "101", resp.Results[1].TrainNo)
	assert.True(t, resp.Results[1].IsBackupOption)
	assert.NotEmpty(t, resp.RequestID)
}

func TestSearchMergesLiveDelays(t *testing.T) {
	source := &mockTimetableSource{
		rows: []domain.TimetableRow{
			timetableRow("201", "6", "區間", "10:30", "10:50", "12:30"),
		},
		delays: map[string]domain.LiveDelay{
			"201": {TrainNo: "201", DelayMinutes: 10, Status: "誤點"},
		},
	}
	s := newTestSearch(t, source)

	resp, err := s.Search(context.Background(), "台北到台中")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 10, resp.Results[0].DelayMinutes)
	assert.Equal(t, "10:40", resp.Results[0].AdjustedDepartureTime)
}

func TestSearchLiveDelayFailureDegrades(t *testing.T) {
	source := &mockTimetableSource{
		rows: []domain.TimetableRow{
			timetableRow("201", "6", "區間", "10:30", "10:50", "12:30"),
		},
		delayErr: errors.New("live board down"),
	}
	s := newTestSearch(t, source)

	resp, err := s.Search(context.Background(), "台北到台中")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Zero(t, resp.Results[0].DelayMinutes)
}

func TestSearchFutureDateSkipsLiveDelays(t *testing.T) {
	source := &mockTimetableSource{
		rows: []domain.TimetableRow{
			timetableRow("201", "6", "區間", "10:30", "10:50", "12:30"),
		},
		delayErr: errors.New("must not be called"),
	}
	s := newTestSearch(t, source)

	resp, err := s.Search(context.Background(), "台北到台中明天10:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", source.lastDate)
	require.Len(t, resp.Results, 1)
	assert.Zero(t, resp.Results[0].DelayMinutes)
}

func TestSearchIncompleteQuery(t *testing.T) {
	s := newTestSearch(t, &mockTimetableSource{})

	resp, err := s.Search(context.Background(), "你好")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIncomplete, resp.Outcome)
	assert.Empty(t, resp.Results)
}

func TestSearchAmbiguousStation(t *testing.T) {
	s := newTestSearch(t, &mockTimetableSource{})

	// 臺 alone prefixes several stations below the firm threshold.
	resp, err := s.Search(context.Background(), "臺到台中")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStationChoice, resp.Outcome)
	assert.NotEmpty(t, resp.OriginCandidates)
}

func TestSearchUnknownStation(t *testing.T) {
	s := newTestSearch(t, &mockTimetableSource{})

	resp, err := s.Search(context.Background(), "東京到台中")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStationChoice, resp.Outcome)
	assert.Empty(t, resp.OriginCandidates)
	assert.NotEmpty(t, resp.DestinationCandidates)
}

func TestSearchTrainNumberExact(t *testing.T) {
	s := newTestSearch(t, &mockTimetableSource{})

	resp, err := s.Search(context.Background(), "152")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTrainChoice, resp.Outcome)
	require.NotNil(t, resp.TrainMatch)
	assert.Equal(t, domain.MatchStrategyExact, resp.TrainMatch.Strategy)
	require.Len(t, resp.TrainMatch.Candidates, 1)
	assert.Equal(t, "152", resp.TrainMatch.Candidates[0].TrainNo)
}

func TestSearchPartialTrainNumberNeverAutoPicks(t *testing.T) {
	s := newTestSearch(t, &mockTimetableSource{})

	// Scenario: "2" must surface candidates for disambiguation even
	// though train 2 exists in the catalog.
	resp, err := s.Search(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTrainChoice, resp.Outcome)
	require.NotNil(t, resp.TrainMatch)
	assert.True(t, resp.Query.IsPartialTrainNumber)
	assert.NotEmpty(t, resp.TrainMatch.Candidates)
}

func TestSearchTimetableErrorSurfaces(t *testing.T) {
	source := &mockTimetableSource{rowsErr: errors.New("tdx down")}
	s := newTestSearch(t, source)

	_, err := s.Search(context.Background(), "台北到台中")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tdx down")
}

func TestSearchFastestPreference(t *testing.T) {
	source := &mockTimetableSource{
		rows: []domain.TimetableRow{
			timetableRow("201", "6", "區間", "10:30", "10:50", "12:30"), // 120 min
			timetableRow("205", "6", "區間", "11:00", "11:20", "12:00"), // 60 min
		},
	}
	s := newTestSearch(t, source)

	resp, err := s.Search(context.Background(), "台北到台中最快")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "205", resp.Results[0].TrainNo)
}

func TestBuildSearchResultDirection(t *testing.T) {
	rowForward := timetableRow("201", "6", "區間", "10:30", "10:50", "12:30")

	r, ok := buildSearchResult(rowForward, "1000", "3300")
	require.True(t, ok)
	assert.Equal(t, "10:30", r.DepartureTime)
	assert.Equal(t, "12:30", r.ArrivalTime)
	assert.Equal(t, 120, r.TravelTimeMinutes)
	assert.Equal(t, 1, r.IntermediateStopCount)

	// Reversed direction does not serve this OD pair.
	_, ok = buildSearchResult(rowForward, "3300", "1000")
	assert.False(t, ok)

	// Trains missing a stop are dropped.
	_, ok = buildSearchResult(rowForward, "1000", "9999")
	assert.False(t, ok)
}
