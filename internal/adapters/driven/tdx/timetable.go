package tdx

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.TimetableSource = (*Client)(nil)

// DailyTimetable returns all trains between two stations on a service
// date (ISO YYYY-MM-DD), with their full stop lists.
func (c *Client) DailyTimetable(ctx context.Context, originID, destinationID, date string) ([]domain.TimetableRow, error) {
	path := fmt.Sprintf("/DailyTrainTimetable/OD/%s/to/%s/%s?%%24format=JSON",
		url.PathEscape(originID), url.PathEscape(destinationID), url.PathEscape(date))

	var list timetableList
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("fetching timetable: %w", err)
	}

	rows := make([]domain.TimetableRow, 0, len(list.TrainTimetables))
	for _, t := range list.TrainTimetables {
		rows = append(rows, t.toDomain())
	}
	logger.Debug("tdx: %d trains %s → %s on %s", len(rows), originID, destinationID, date)
	return rows, nil
}

// LiveDelays returns the current live board keyed by train number.
// Trains running on time are included with a zero delay.
func (c *Client) LiveDelays(ctx context.Context) (map[string]domain.LiveDelay, error) {
	var list liveBoardList
	if err := c.getJSON(ctx, "/TrainLiveBoard?%24format=JSON", &list); err != nil {
		return nil, fmt.Errorf("fetching live board: %w", err)
	}

	delays := make(map[string]domain.LiveDelay, len(list.TrainLiveBoards))
	for _, b := range list.TrainLiveBoards {
		if b.TrainNo == "" {
			continue
		}
		delays[b.TrainNo] = domain.LiveDelay{
			TrainNo:      b.TrainNo,
			DelayMinutes: b.DelayTime,
			Status:       b.TrainStationStatus,
		}
	}
	logger.Debug("tdx: live board covers %d trains", len(delays))
	return delays, nil
}

// TrainCatalog returns the train numbers running today, for the
// train-number resolver.
func (c *Client) TrainCatalog(ctx context.Context) ([]domain.TrainCandidate, error) {
	var list timetableList
	if err := c.getJSON(ctx, "/DailyTrainTimetable/Today?%24format=JSON", &list); err != nil {
		return nil, fmt.Errorf("fetching train catalog: %w", err)
	}

	seen := make(map[string]bool, len(list.TrainTimetables))
	catalog := make([]domain.TrainCandidate, 0, len(list.TrainTimetables))
	for _, t := range list.TrainTimetables {
		no := t.TrainInfo.TrainNo
		if no == "" || seen[no] {
			continue
		}
		seen[no] = true
		catalog = append(catalog, domain.TrainCandidate{
			TrainNo:       no,
			TrainTypeCode: t.TrainInfo.TrainTypeCode,
			TrainTypeName: t.TrainInfo.TrainTypeName.ZhTw,
		})
	}
	logger.Debug("tdx: catalog has %d trains", len(catalog))
	return catalog, nil
}
