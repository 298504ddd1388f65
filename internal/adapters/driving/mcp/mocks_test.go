package mcp

import (
	"context"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	resp *domain.SearchResponse
	err  error
}

func (m *mockQueryService) Search(_ context.Context, _ string) (*domain.SearchResponse, error) {
	return m.resp, m.err
}

// mockStationResolver is a mock implementation of driving.StationResolver.
type mockStationResolver struct {
	candidates []domain.StationCandidate
}

func (m *mockStationResolver) Resolve(_ string) []domain.StationCandidate {
	return m.candidates
}

// mockTrainResolver is a mock implementation of driving.TrainResolver.
type mockTrainResolver struct {
	match domain.TrainNumberMatch
}

func (m *mockTrainResolver) Search(_ string) domain.TrainNumberMatch {
	return m.match
}

// mockTripPlanner is a mock implementation of driving.TripPlanner.
type mockTripPlanner struct {
	plan *domain.TransferPlan
	err  error
}

func (m *mockTripPlanner) Plan(_ context.Context, _, _, _, _ string) (*domain.TransferPlan, error) {
	return m.plan, m.err
}
