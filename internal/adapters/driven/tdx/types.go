package tdx

import "github.com/lis186/smart-tra-mcp-server/internal/core/domain"

// Wire types mirror the TDX v3 JSON payloads. Only the fields this
// client reads are declared.

type nameType struct {
	ZhTw string `json:"Zh_tw"`
	En   string `json:"En"`
}

type stationPosition struct {
	PositionLat float64 `json:"PositionLat"`
	PositionLon float64 `json:"PositionLon"`
}

type station struct {
	StationID       string           `json:"StationID"`
	StationName     nameType         `json:"StationName"`
	StationAddress  string           `json:"StationAddress"`
	StationPosition *stationPosition `json:"StationPosition"`
}

type stationList struct {
	Stations []station `json:"Stations"`
}

type trainInfo struct {
	TrainNo       string   `json:"TrainNo"`
	TrainTypeCode string   `json:"TrainTypeCode"`
	TrainTypeName nameType `json:"TrainTypeName"`
}

type stopTime struct {
	StopSequence  int    `json:"StopSequence"`
	StationID     string `json:"StationID"`
	ArrivalTime   string `json:"ArrivalTime"`
	DepartureTime string `json:"DepartureTime"`
}

type trainTimetable struct {
	TrainInfo trainInfo  `json:"TrainInfo"`
	StopTimes []stopTime `json:"StopTimes"`
}

type timetableList struct {
	TrainTimetables []trainTimetable `json:"TrainTimetables"`
}

type trainLiveBoard struct {
	TrainNo            string `json:"TrainNo"`
	TrainStationStatus string `json:"TrainStationStatus"`
	DelayTime          int    `json:"DelayTime"`
}

type liveBoardList struct {
	TrainLiveBoards []trainLiveBoard `json:"TrainLiveBoards"`
}

func (s station) toDomain() domain.StationRecord {
	rec := domain.StationRecord{
		ID:            s.StationID,
		NameLocal:     s.StationName.ZhTw,
		NameRomanized: s.StationName.En,
		Address:       s.StationAddress,
	}
	if s.StationPosition != nil {
		rec.Position = &domain.Coordinates{
			Lat: s.StationPosition.PositionLat,
			Lon: s.StationPosition.PositionLon,
		}
	}
	return rec
}

func (t trainTimetable) toDomain() domain.TimetableRow {
	row := domain.TimetableRow{
		TrainNo:       t.TrainInfo.TrainNo,
		TrainTypeCode: t.TrainInfo.TrainTypeCode,
		TrainTypeName: t.TrainInfo.TrainTypeName.ZhTw,
		Stops:         make([]domain.StopTime, 0, len(t.StopTimes)),
	}
	for _, s := range t.StopTimes {
		row.Stops = append(row.Stops, domain.StopTime{
			StationID:     s.StationID,
			StopSequence:  s.StopSequence,
			ArrivalTime:   s.ArrivalTime,
			DepartureTime: s.DepartureTime,
		})
	}
	return row
}
