package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
)

// SearchTrainsInput is the input schema for the search_trains tool.
type SearchTrainsInput struct {
	Query string `json:"query" jsonschema:"natural-language train query in Chinese or English, e.g. 台北到台中明天早上八點"`
}

// StationOutput represents one station candidate.
type StationOutput struct {
	StationID  string  `json:"station_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// TrainResultOutput represents one journey option.
type TrainResultOutput struct {
	TrainNo               string `json:"train_no"`
	TrainType             string `json:"train_type"`
	DepartureTime         string `json:"departure_time"`
	ArrivalTime           string `json:"arrival_time"`
	TravelTimeMinutes     int    `json:"travel_time_minutes"`
	Stops                 int    `json:"intermediate_stops"`
	MonthlyPassEligible   bool   `json:"monthly_pass_eligible"`
	IsBackupOption        bool   `json:"is_backup_option,omitempty"`
	MinutesUntilDeparture int    `json:"minutes_until_departure"`
	IsImminent            bool   `json:"is_imminent,omitempty"`
	// DelayMinutes is present only when live delay data was merged, so
	// an on-time 0 stays distinguishable from "no live data".
	DelayMinutes          *int   `json:"delay_minutes,omitempty"`
	AdjustedDepartureTime string `json:"adjusted_departure_time,omitempty"`
	AdjustedArrivalTime   string `json:"adjusted_arrival_time,omitempty"`
}

// TrainCandidateOutput represents one train-number candidate.
type TrainCandidateOutput struct {
	TrainNo       string `json:"train_no"`
	TrainTypeName string `json:"train_type_name"`
}

// SearchTrainsOutput is the output schema for the search_trains tool.
type SearchTrainsOutput struct {
	RequestID             string                 `json:"request_id"`
	Outcome               string                 `json:"outcome"`
	Origin                *StationOutput         `json:"origin,omitempty"`
	Destination           *StationOutput         `json:"destination,omitempty"`
	Results               []TrainResultOutput    `json:"results,omitempty"`
	OriginCandidates      []StationOutput        `json:"origin_candidates,omitempty"`
	DestinationCandidates []StationOutput        `json:"destination_candidates,omitempty"`
	TrainMatchStrategy    string                 `json:"train_match_strategy,omitempty"`
	TrainCandidates       []TrainCandidateOutput `json:"train_candidates,omitempty"`
}

// SearchStationInput is the input schema for the search_station tool.
type SearchStationInput struct {
	Query string `json:"query" jsonschema:"station name or abbreviation to resolve, e.g. 北車 or Taipei"`
}

// SearchStationOutput is the output schema for the search_station tool.
type SearchStationOutput struct {
	Candidates []StationOutput `json:"candidates"`
	Count      int             `json:"count"`
}

// SearchTrainByNoInput is the input schema for the search_train_by_no tool.
type SearchTrainByNoInput struct {
	TrainNo string `json:"train_no" jsonschema:"train number, possibly partial, e.g. 152"`
}

// SearchTrainByNoOutput is the output schema for the search_train_by_no tool.
type SearchTrainByNoOutput struct {
	Strategy   string                 `json:"strategy"`
	Candidates []TrainCandidateOutput `json:"candidates"`
	Count      int                    `json:"count"`
}

// PlanTripInput is the input schema for the plan_trip tool.
type PlanTripInput struct {
	OriginID      string `json:"origin_id" jsonschema:"resolved origin station ID"`
	DestinationID string `json:"destination_id" jsonschema:"resolved destination station ID"`
	Date          string `json:"date,omitempty" jsonschema:"service date as YYYY-MM-DD (default today)"`
	Time          string `json:"time,omitempty" jsonschema:"earliest departure as HH:MM (default now)"`
}

// PlanTripOutput is the output schema for the plan_trip tool.
type PlanTripOutput struct {
	Hub        StationOutput       `json:"hub"`
	BranchLine string              `json:"branch_line"`
	FirstLeg   []TrainResultOutput `json:"first_leg"`
	SecondLeg  []TrainResultOutput `json:"second_leg"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_trains",
		Description: "Search TRA trains with a natural-language query (Chinese or English): routes, dates, times and preferences",
	}, s.handleSearchTrains)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_station",
		Description: "Resolve a station name, abbreviation or alias to ranked station candidates",
	}, s.handleSearchStation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_train_by_no",
		Description: "Look up trains by exact or partial train number",
	}, s.handleSearchTrainByNo)

	if s.ports.Planner != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "plan_trip",
			Description: "Plan a two-leg journey to or from a branch-line station via its transfer hub",
		}, s.handlePlanTrip)
	}
}

// handleSearchTrains handles the search_trains tool invocation.
func (s *Server) handleSearchTrains(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchTrainsInput,
) (*mcp.CallToolResult, SearchTrainsOutput, error) {
	resp, err := s.ports.Query.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchTrainsOutput{}, err
	}

	output := SearchTrainsOutput{
		RequestID:             resp.RequestID,
		Outcome:               string(resp.Outcome),
		Origin:                stationOutput(resp.Origin),
		Destination:           stationOutput(resp.Destination),
		Results:               trainResults(resp.Results),
		OriginCandidates:      stationOutputs(resp.OriginCandidates),
		DestinationCandidates: stationOutputs(resp.DestinationCandidates),
	}
	if resp.TrainMatch != nil {
		output.TrainMatchStrategy = resp.TrainMatch.Strategy
		output.TrainCandidates = trainCandidates(resp.TrainMatch.Candidates)
	}
	return nil, output, nil
}

// handleSearchStation handles the search_station tool invocation.
func (s *Server) handleSearchStation(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchStationInput,
) (*mcp.CallToolResult, SearchStationOutput, error) {
	candidates := s.ports.Stations.Resolve(input.Query)
	return nil, SearchStationOutput{
		Candidates: stationOutputs(candidates),
		Count:      len(candidates),
	}, nil
}

// handleSearchTrainByNo handles the search_train_by_no tool invocation.
func (s *Server) handleSearchTrainByNo(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchTrainByNoInput,
) (*mcp.CallToolResult, SearchTrainByNoOutput, error) {
	match := s.ports.Trains.Search(input.TrainNo)
	return nil, SearchTrainByNoOutput{
		Strategy:   match.Strategy,
		Candidates: trainCandidates(match.Candidates),
		Count:      len(match.Candidates),
	}, nil
}

// handlePlanTrip handles the plan_trip tool invocation.
func (s *Server) handlePlanTrip(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanTripInput,
) (*mcp.CallToolResult, PlanTripOutput, error) {
	plan, err := s.ports.Planner.Plan(ctx, input.OriginID, input.DestinationID, input.Date, input.Time)
	if err != nil {
		return nil, PlanTripOutput{}, err
	}

	return nil, PlanTripOutput{
		Hub: StationOutput{
			StationID:  plan.Hub.StationID,
			Name:       plan.Hub.DisplayName,
			Confidence: plan.Hub.Confidence,
		},
		BranchLine: plan.BranchLine,
		FirstLeg:   trainResults(plan.FirstLeg),
		SecondLeg:  trainResults(plan.SecondLeg),
	}, nil
}

func stationOutput(c *domain.StationCandidate) *StationOutput {
	if c == nil {
		return nil
	}
	return &StationOutput{StationID: c.StationID, Name: c.DisplayName, Confidence: c.Confidence}
}

func stationOutputs(cands []domain.StationCandidate) []StationOutput {
	if len(cands) == 0 {
		return nil
	}
	out := make([]StationOutput, len(cands))
	for i, c := range cands {
		out[i] = StationOutput{StationID: c.StationID, Name: c.DisplayName, Confidence: c.Confidence}
	}
	return out
}

func trainResults(results []domain.TrainSearchResult) []TrainResultOutput {
	if len(results) == 0 {
		return nil
	}
	out := make([]TrainResultOutput, len(results))
	for i, r := range results {
		out[i] = TrainResultOutput{
			TrainNo:               r.TrainNo,
			TrainType:             r.TrainType,
			DepartureTime:         r.DepartureTime,
			ArrivalTime:           r.ArrivalTime,
			TravelTimeMinutes:     r.TravelTimeMinutes,
			Stops:                 r.IntermediateStopCount,
			MonthlyPassEligible:   r.IsMonthlyPassEligible,
			IsBackupOption:        r.IsBackupOption,
			MinutesUntilDeparture: r.MinutesUntilDeparture,
			IsImminent:            r.IsImminent,
			AdjustedDepartureTime: r.AdjustedDepartureTime,
			AdjustedArrivalTime:   r.AdjustedArrivalTime,
		}
		// Adjusted times are set exactly when a live board entry was
		// merged, delayed or not.
		if r.AdjustedDepartureTime != "" {
			delay := r.DelayMinutes
			out[i].DelayMinutes = &delay
		}
	}
	return out
}

func trainCandidates(cands []domain.TrainCandidate) []TrainCandidateOutput {
	if len(cands) == 0 {
		return nil
	}
	out := make([]TrainCandidateOutput, len(cands))
	for i, c := range cands {
		out[i] = TrainCandidateOutput{TrainNo: c.TrainNo, TrainTypeName: c.TrainTypeName}
	}
	return out
}
