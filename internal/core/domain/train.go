package domain

// StopTime is one scheduled call within a train's run.
type StopTime struct {
	// StationID identifies the station called at.
	StationID string

	// StopSequence is the 1-based position within the run.
	StopSequence int

	// ArrivalTime is the scheduled arrival, "HH:MM" or "HH:MM:SS".
	ArrivalTime string

	// DepartureTime is the scheduled departure, "HH:MM" or "HH:MM:SS".
	DepartureTime string
}

// TimetableRow is one train's scheduled run for a service date, as
// delivered by the upstream timetable source.
type TimetableRow struct {
	// TrainNo is the train number, e.g. "152".
	TrainNo string

	// TrainTypeCode is the TRA train type code, e.g. "6" for local.
	TrainTypeCode string

	// TrainTypeName is the local train type name, e.g. "區間".
	TrainTypeName string

	// Stops is the ordered list of calls.
	Stops []StopTime
}

// LiveDelay is a real-time delay report for one train.
type LiveDelay struct {
	// TrainNo is the delayed train's number.
	TrainNo string

	// DelayMinutes is the reported offset from schedule. Negative
	// values (early running) occur and are applied as-is.
	DelayMinutes int

	// Status is the upstream status text, passed through untouched.
	Status string
}

// TrainSearchResult is one journey option for a (train, origin,
// destination) triple. Timing/status fields are derived by the
// temporal filter; results are never mutated after filtering.
type TrainSearchResult struct {
	TrainNo       string
	TrainType     string
	TrainTypeCode string

	// DepartureTime and ArrivalTime are scheduled times at the origin
	// and destination stops, zero-padded "HH:MM".
	DepartureTime string
	ArrivalTime   string

	// TravelTimeMinutes is the scheduled journey duration.
	TravelTimeMinutes int

	// IntermediateStopCount is the number of calls strictly between
	// origin and destination.
	IntermediateStopCount int

	// IsMonthlyPassEligible reports whether the train type is covered
	// by the commuter monthly pass.
	IsMonthlyPassEligible bool

	// MinutesUntilDeparture, HasDeparted and IsImminent are only
	// meaningful for today's queries; the filter suppresses them for
	// future dates.
	MinutesUntilDeparture int
	HasDeparted           bool
	IsImminent            bool

	// IsBackupOption marks results backfilled from outside the default
	// eligibility filter when the primary set ran thin.
	IsBackupOption bool

	// DelayMinutes and the adjusted times are set when a live delay
	// entry was merged.
	DelayMinutes          int
	AdjustedDepartureTime string
	AdjustedArrivalTime   string
}

// TrainCandidate is one ranked match from the train-number resolver.
type TrainCandidate struct {
	// TrainNo is the catalog train number.
	TrainNo string

	// TrainTypeCode is the TRA train type code.
	TrainTypeCode string

	// TrainTypeName is the local train type name.
	TrainTypeName string
}

// Train-number match strategies, in the order they are attempted.
const (
	MatchStrategyExact  = "exact"
	MatchStrategyPrefix = "prefix"
	MatchStrategyFuzzy  = "fuzzy"
)

// TrainNumberMatch is the result of resolving a train-number token.
type TrainNumberMatch struct {
	// Strategy names the strategy that produced the candidates.
	Strategy string

	// Candidates is the ranked list; empty when nothing matched.
	Candidates []TrainCandidate
}

// monthlyPassRestricted lists the train type codes excluded from the
// commuter monthly pass: reserved-seat limited expresses.
var monthlyPassRestricted = map[string]string{
	"1":  "太魯閣",     // Taroko Express
	"2":  "普悠瑪",     // Puyuma Express
	"3":  "自強",      // Tze-Chiang Limited Express
	"11": "EMU3000", // new Tze-Chiang
}

// IsMonthlyPassEligible reports whether a train type code is covered by
// the commuter monthly pass.
func IsMonthlyPassEligible(trainTypeCode string) bool {
	_, restricted := monthlyPassRestricted[trainTypeCode]
	return !restricted
}
