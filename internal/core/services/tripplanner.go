package services

import (
	"context"
	"fmt"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driving"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Ensure BranchLinePlanner implements the interface.
var _ driving.TripPlanner = (*BranchLinePlanner)(nil)

// BranchLinePlanner plans two-leg journeys onto TRA branch lines via
// their main-line hubs. The hub table is versioned data injected at
// construction; the planning itself is plain lookup-and-compose.
type BranchLinePlanner struct {
	branches []domain.BranchLine
	search   *TrainSearch
}

// NewBranchLinePlanner creates a planner over the given hub table.
// Pass domain.DefaultBranchLines for the curated default.
func NewBranchLinePlanner(branches []domain.BranchLine, search *TrainSearch) *BranchLinePlanner {
	return &BranchLinePlanner{branches: branches, search: search}
}

// Plan composes origin → hub and hub → destination legs when exactly
// one endpoint sits on a branch line. Returns
// domain.ErrNoTransferRoute when no branch is involved (the journey
// needs no transfer) or when both endpoints are on branches.
func (p *BranchLinePlanner) Plan(ctx context.Context, originID, destinationID, date, timeHHMM string) (*domain.TransferPlan, error) {
	if originID == "" || destinationID == "" {
		return nil, fmt.Errorf("%w: origin and destination station IDs are required", domain.ErrInvalidInput)
	}

	originBranch := p.branchOf(originID)
	destBranch := p.branchOf(destinationID)

	var branch *domain.BranchLine
	switch {
	case originBranch == nil && destBranch != nil:
		branch = destBranch
	case originBranch != nil && destBranch == nil:
		branch = originBranch
	default:
		return nil, domain.ErrNoTransferRoute
	}

	hub := domain.StationCandidate{
		StationID:   branch.HubStationID,
		DisplayName: branch.HubName,
		Confidence:  1.0,
	}
	logger.Debug("transfer plan %s → %s via %s (%s)", originID, destinationID, branch.HubName, branch.Name)

	firstLeg, err := p.search.SearchByStationIDs(ctx, originID, hub.StationID, date, timeHHMM, domain.Preferences{})
	if err != nil {
		return nil, err
	}

	// The second leg starts no earlier than the first leg's earliest
	// arrival at the hub; without a first leg, fall back to the
	// requested time.
	secondTime := timeHHMM
	if len(firstLeg) > 0 {
		secondTime = firstLeg[0].ArrivalTime
	}
	secondLeg, err := p.search.SearchByStationIDs(ctx, hub.StationID, destinationID, date, secondTime, domain.Preferences{})
	if err != nil {
		return nil, err
	}

	return &domain.TransferPlan{
		Hub:        hub,
		BranchLine: branch.Name,
		FirstLeg:   firstLeg,
		SecondLeg:  secondLeg,
	}, nil
}

// branchOf returns the branch line a station sits on, hub excluded.
func (p *BranchLinePlanner) branchOf(stationID string) *domain.BranchLine {
	for i := range p.branches {
		for _, id := range p.branches[i].StationIDs {
			if id == stationID {
				return &p.branches[i]
			}
		}
	}
	return nil
}
