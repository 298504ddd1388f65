package tdx

import (
	"context"
	"fmt"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.StationSource = (*Client)(nil)

// FetchStations returns the full TRA station directory.
func (c *Client) FetchStations(ctx context.Context) ([]domain.StationRecord, error) {
	var list stationList
	if err := c.getJSON(ctx, "/Station?%24format=JSON", &list); err != nil {
		return nil, fmt.Errorf("fetching stations: %w", err)
	}

	stations := make([]domain.StationRecord, 0, len(list.Stations))
	for _, s := range list.Stations {
		if s.StationID == "" {
			continue
		}
		stations = append(stations, s.toDomain())
	}
	logger.Debug("tdx: fetched %d stations", len(stations))
	return stations, nil
}
