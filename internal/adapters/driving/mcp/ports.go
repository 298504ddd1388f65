package mcp

import (
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers natural-language travel utterances.
	Query driving.QueryService

	// Stations resolves free text to station candidates.
	Stations driving.StationResolver

	// Trains resolves train-number tokens.
	Trains driving.TrainResolver

	// Planner plans branch-line transfers. Optional; the plan_trip tool
	// is only registered when set.
	Planner driving.TripPlanner
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Stations == nil {
		return ErrMissingStationResolver
	}
	if p.Trains == nil {
		return ErrMissingTrainResolver
	}
	return nil
}
