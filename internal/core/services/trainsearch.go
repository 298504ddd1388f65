package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driving"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Ensure TrainSearch implements the interface.
var _ driving.QueryService = (*TrainSearch)(nil)

// TrainSearch orchestrates the query pipeline: parse the utterance,
// resolve its entities, fetch the day's timetable and run the
// temporal filter. It owns no data; stations and trains come from the
// injected resolvers and the timetable from the driven port.
type TrainSearch struct {
	parser    *QueryParser
	stations  driving.StationResolver
	trains    driving.TrainResolver
	timetable driven.TimetableSource
	filter    *TemporalFilter
	clock     driven.Clock
}

// NewTrainSearch creates the orchestration service.
func NewTrainSearch(
	parser *QueryParser,
	stations driving.StationResolver,
	trains driving.TrainResolver,
	timetable driven.TimetableSource,
	filter *TemporalFilter,
	clock driven.Clock,
) *TrainSearch {
	return &TrainSearch{
		parser:    parser,
		stations:  stations,
		trains:    trains,
		timetable: timetable,
		filter:    filter,
		clock:     clock,
	}
}

// Search answers one utterance. Ambiguity and incompleteness are
// reported through the response outcome; only infrastructure failures
// (timetable fetch) surface as errors.
func (s *TrainSearch) Search(ctx context.Context, utterance string) (*domain.SearchResponse, error) {
	requestID := uuid.NewString()
	logger.Section("Train Search")
	logger.Debug("[%s] utterance: %q", requestID, utterance)

	q := s.parser.Parse(utterance)
	resp := &domain.SearchResponse{RequestID: requestID, Query: q}

	if !q.IsValidForTrainSearch() {
		logger.Info("[%s] query incomplete: %v", requestID, domain.ErrQueryIncomplete)
		resp.Outcome = domain.OutcomeIncomplete
		return resp, nil
	}

	if q.TrainNumber != "" {
		return s.searchByTrainNumber(requestID, resp, q)
	}
	return s.searchByRoute(ctx, requestID, resp, q)
}

// searchByTrainNumber routes the token through the catalog resolver.
// Partial tokens always come back as a candidate list: a 1–2 digit
// token carries too little signal to commit to a single train.
func (s *TrainSearch) searchByTrainNumber(requestID string, resp *domain.SearchResponse, q domain.ParsedQuery) (*domain.SearchResponse, error) {
	match := s.trains.Search(q.TrainNumber)
	logger.Debug("[%s] train %q: strategy=%s candidates=%d",
		requestID, q.TrainNumber, match.Strategy, len(match.Candidates))

	resp.Outcome = domain.OutcomeTrainChoice
	resp.TrainMatch = &match
	return resp, nil
}

// searchByRoute resolves both endpoints, fetches the day's timetable
// for the station pair and runs the temporal filter.
func (s *TrainSearch) searchByRoute(ctx context.Context, requestID string, resp *domain.SearchResponse, q domain.ParsedQuery) (*domain.SearchResponse, error) {
	originCands := s.stations.Resolve(q.OriginText)
	destCands := s.stations.Resolve(q.DestinationText)

	origin := acceptCandidate(originCands)
	destination := acceptCandidate(destCands)
	if origin == nil || destination == nil {
		logger.Info("[%s] station ambiguity: origin=%d candidates, destination=%d candidates",
			requestID, len(originCands), len(destCands))
		resp.Outcome = domain.OutcomeStationChoice
		resp.OriginCandidates = originCands
		resp.DestinationCandidates = destCands
		return resp, nil
	}

	results, err := s.SearchByStationIDs(ctx, origin.StationID, destination.StationID, q.Date, q.Time, q.Preferences)
	if err != nil {
		return nil, err
	}

	resp.Outcome = domain.OutcomeResults
	resp.Origin = origin
	resp.Destination = destination
	resp.Results = results
	logger.Debug("[%s] %d results for %s → %s", requestID, len(results), origin.DisplayName, destination.DisplayName)
	return resp, nil
}

// SearchByStationIDs runs the fetch-and-filter pipeline for an
// already-resolved station pair. Also used by the trip planner for
// transfer legs.
func (s *TrainSearch) SearchByStationIDs(ctx context.Context, originID, destinationID, date, timeHHMM string, prefs domain.Preferences) ([]domain.TrainSearchResult, error) {
	now := s.clock.Now()
	serviceDate := date
	if serviceDate == "" {
		serviceDate = now.Format(time.DateOnly)
	}

	rows, err := s.timetable.DailyTimetable(ctx, originID, destinationID, serviceDate)
	if err != nil {
		return nil, fmt.Errorf("fetching timetable %s→%s on %s: %w", originID, destinationID, serviceDate, err)
	}

	candidates := make([]domain.TrainSearchResult, 0, len(rows))
	for _, row := range rows {
		if r, ok := buildSearchResult(row, originID, destinationID); ok {
			candidates = append(candidates, r)
		}
	}

	// Live data only matters for today's departures, and is
	// best-effort: a dead live feed degrades to scheduled times.
	var delays map[string]domain.LiveDelay
	if serviceDate == now.Format(time.DateOnly) {
		delays, err = s.timetable.LiveDelays(ctx)
		if err != nil {
			logger.Warn("live delays unavailable: %v", err)
			delays = nil
		}
	}

	results := s.filter.Filter(candidates, prefs, date, timeHHMM, delays)

	if prefs.Fastest {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].TravelTimeMinutes < results[j].TravelTimeMinutes
		})
	}
	return results, nil
}

// acceptCandidate applies the firm-match rule: take the top candidate
// when it sits at or above the firm threshold and strictly outranks
// the runner-up, or a sole candidate at or above the lower
// sole-candidate threshold. A tie at the top means the text is
// genuinely ambiguous and the user must choose.
func acceptCandidate(candidates []domain.StationCandidate) *domain.StationCandidate {
	if len(candidates) == 0 {
		return nil
	}
	top := candidates[0]
	if len(candidates) == 1 {
		if top.Confidence >= domain.SoleCandidateThreshold {
			return &top
		}
		return nil
	}
	if top.Confidence >= domain.FirmMatchThreshold && top.Confidence > candidates[1].Confidence {
		return &top
	}
	return nil
}

// buildSearchResult derives one journey option from a timetable row.
// Rows that do not call at both stations in travel order are dropped.
func buildSearchResult(row domain.TimetableRow, originID, destinationID string) (domain.TrainSearchResult, bool) {
	var originStop, destStop *domain.StopTime
	for i := range row.Stops {
		switch row.Stops[i].StationID {
		case originID:
			originStop = &row.Stops[i]
		case destinationID:
			destStop = &row.Stops[i]
		}
	}
	if originStop == nil || destStop == nil || originStop.StopSequence >= destStop.StopSequence {
		return domain.TrainSearchResult{}, false
	}

	departure := normalizeClock(originStop.DepartureTime)
	arrival := normalizeClock(destStop.ArrivalTime)
	return domain.TrainSearchResult{
		TrainNo:               row.TrainNo,
		TrainType:             row.TrainTypeName,
		TrainTypeCode:         row.TrainTypeCode,
		DepartureTime:         departure,
		ArrivalTime:           arrival,
		TravelTimeMinutes:     travelMinutes(departure, arrival),
		IntermediateStopCount: destStop.StopSequence - originStop.StopSequence - 1,
		IsMonthlyPassEligible: domain.IsMonthlyPassEligible(row.TrainTypeCode),
	}, true
}
