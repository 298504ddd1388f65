package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

func newToolServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Query == nil {
		ports.Query = &mockQueryService{}
	}
	if ports.Stations == nil {
		ports.Stations = &mockStationResolver{}
	}
	if ports.Trains == nil {
		ports.Trains = &mockTrainResolver{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearchTrains(t *testing.T) {
	ctx := context.Background()

	t.Run("returns journey results", func(t *testing.T) {
		server := newToolServer(t, &Ports{
			Query: &mockQueryService{
				resp: &domain.SearchResponse{
					RequestID: "req-1",
					Outcome:   domain.OutcomeResults,
					Origin:    &domain.StationCandidate{StationID: "1000", DisplayName: "臺北", Confidence: 1.0},
					Destination: &domain.StationCandidate{
						StationID: "3300", DisplayName: "臺中", Confidence: 1.0,
					},
					Results: []domain.TrainSearchResult{
						{TrainNo: "201", TrainType: "區間", DepartureTime: "10:30",
							ArrivalTime: "12:30", TravelTimeMinutes: 120,
							IsMonthlyPassEligible: true},
						{TrainNo: "101", TrainType: "自強", DepartureTime: "11:00",
							ArrivalTime: "12:10", IsBackupOption: true},
					},
				},
			},
		})

		_, output, err := server.handleSearchTrains(ctx, nil, SearchTrainsInput{Query: "台北到台中"})
		require.NoError(t, err)
		assert.Equal(t, "req-1", output.RequestID)
		assert.Equal(t, "results", output.Outcome)
		require.NotNil(t, output.Origin)
		assert.Equal(t, "臺北", output.Origin.Name)
		require.Len(t, output.Results, 2)
		assert.True(t, output.Results[0].MonthlyPassEligible)
		assert.True(t, output.Results[1].IsBackupOption)
	})

	t.Run("surfaces station ambiguity", func(t *testing.T) {
		server := newToolServer(t, &Ports{
			Query: &mockQueryService{
				resp: &domain.SearchResponse{
					Outcome: domain.OutcomeStationChoice,
					OriginCandidates: []domain.StationCandidate{
						{StationID: "1000", DisplayName: "臺北", Confidence: 0.9},
						{StationID: "3300", DisplayName: "臺中", Confidence: 0.9},
					},
				},
			},
		})

		_, output, err := server.handleSearchTrains(ctx, nil, SearchTrainsInput{Query: "臺到花蓮"})
		require.NoError(t, err)
		assert.Equal(t, "station_choice", output.Outcome)
		assert.Len(t, output.OriginCandidates, 2)
		assert.Empty(t, output.Results)
	})

	t.Run("returns error on service failure", func(t *testing.T) {
		server := newToolServer(t, &Ports{
			Query: &mockQueryService{err: errors.New("timetable down")},
		})

		_, _, err := server.handleSearchTrains(ctx, nil, SearchTrainsInput{Query: "台北到台中"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timetable down")
	})
}

func TestTrainResultsLiveFields(t *testing.T) {
	out := trainResults([]domain.TrainSearchResult{
		// Departing right now, live board says on time.
		{TrainNo: "201", DepartureTime: "10:00", MinutesUntilDeparture: 0, IsImminent: true,
			DelayMinutes: 0, AdjustedDepartureTime: "10:00", AdjustedArrivalTime: "12:00"},
		// No live board entry at all.
		{TrainNo: "205", DepartureTime: "11:00", MinutesUntilDeparture: 60},
	})
	require.Len(t, out, 2)

	require.NotNil(t, out[0].DelayMinutes)
	assert.Equal(t, 0, *out[0].DelayMinutes)
	assert.Nil(t, out[1].DelayMinutes)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	payload := string(raw)
	assert.Contains(t, payload, `"minutes_until_departure":0`)
	assert.Contains(t, payload, `"minutes_until_departure":60`)
	assert.Contains(t, payload, `"delay_minutes":0`)
	assert.Equal(t, 1, strings.Count(payload, `"delay_minutes"`))
}

func TestServer_handleSearchStation(t *testing.T) {
	server := newToolServer(t, &Ports{
		Stations: &mockStationResolver{
			candidates: []domain.StationCandidate{
				{StationID: "1000", DisplayName: "臺北", Confidence: 1.0},
			},
		},
	})

	_, output, err := server.handleSearchStation(context.Background(), nil, SearchStationInput{Query: "北車"})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	require.Len(t, output.Candidates, 1)
	assert.Equal(t, "1000", output.Candidates[0].StationID)
}

func TestServer_handleSearchTrainByNo(t *testing.T) {
	server := newToolServer(t, &Ports{
		Trains: &mockTrainResolver{
			match: domain.TrainNumberMatch{
				Strategy: domain.MatchStrategyPrefix,
				Candidates: []domain.TrainCandidate{
					{TrainNo: "123", TrainTypeName: "區間"},
					{TrainNo: "1234", TrainTypeName: "區間"},
				},
			},
		},
	})

	_, output, err := server.handleSearchTrainByNo(context.Background(), nil, SearchTrainByNoInput{TrainNo: "12"})
	require.NoError(t, err)
	assert.Equal(t, "prefix", output.Strategy)
	assert.Equal(t, 2, output.Count)
}

func TestServer_handlePlanTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("returns transfer plan", func(t *testing.T) {
		server := newToolServer(t, &Ports{
			Planner: &mockTripPlanner{
				plan: &domain.TransferPlan{
					Hub:        domain.StationCandidate{StationID: "7360", DisplayName: "瑞芳", Confidence: 1.0},
					BranchLine: "平溪線",
					FirstLeg:   []domain.TrainSearchResult{{TrainNo: "4100"}},
					SecondLeg:  []domain.TrainSearchResult{{TrainNo: "4722"}},
				},
			},
		})

		_, output, err := server.handlePlanTrip(ctx, nil, PlanTripInput{OriginID: "1000", DestinationID: "7336"})
		require.NoError(t, err)
		assert.Equal(t, "瑞芳", output.Hub.Name)
		assert.Equal(t, "平溪線", output.BranchLine)
		require.Len(t, output.FirstLeg, 1)
		assert.Equal(t, "4100", output.FirstLeg[0].TrainNo)
	})

	t.Run("no transfer route", func(t *testing.T) {
		server := newToolServer(t, &Ports{
			Planner: &mockTripPlanner{err: domain.ErrNoTransferRoute},
		})

		_, _, err := server.handlePlanTrip(ctx, nil, PlanTripInput{OriginID: "1000", DestinationID: "3300"})
		assert.ErrorIs(t, err, domain.ErrNoTransferRoute)
	})
}
