package domain

// Preferences is the fixed-shape set of options a user can express in
// an utterance. Zero values mean "not requested".
type Preferences struct {
	// Fastest requests sorting/selection biased to shortest travel time.
	Fastest bool

	// Cheapest requests the lowest-fare train types.
	Cheapest bool

	// DirectOnly keeps only trains with zero intermediate stops.
	DirectOnly bool

	// TrainType restricts results to a named train type, e.g. "自強".
	TrainType string

	// TimeWindowHours overrides the forward search window. Zero means
	// the engine default. Clamping to a sane range is the filter
	// engine's job, not the parser's.
	TimeWindowHours int

	// IncludeAllTrainTypes disables the monthly-pass eligibility filter.
	IncludeAllTrainTypes bool
}

// ParsedQuery is the structured result of parsing one utterance.
// Unresolvable fields are left zero and reflected in Confidence.
// A ParsedQuery is created once per utterance and never persisted.
type ParsedQuery struct {
	// OriginText is the raw origin reference, unresolved.
	OriginText string

	// DestinationText is the raw destination reference, unresolved.
	DestinationText string

	// Date is the requested service date in ISO form (YYYY-MM-DD),
	// empty when the utterance named none (caller defaults to today).
	Date string

	// Time is the requested departure time in 24-hour HH:MM form.
	Time string

	// TrainNumber is a train-number token when the utterance is a
	// train-number query rather than a route query.
	TrainNumber string

	// IsPartialTrainNumber marks 1–2 digit tokens that are too short to
	// identify a single train; they must be routed through the train
	// resolver for disambiguation.
	IsPartialTrainNumber bool

	// Preferences carries the recognized options.
	Preferences Preferences

	// Confidence expresses parse certainty in [0,1].
	Confidence float64

	// MatchedRules names every extraction rule that fired, for
	// observability and tests.
	MatchedRules []string
}

// IsValidForTrainSearch reports whether the query can drive a search:
// either a train number, or both route endpoints. It performs no
// resolution; that is the caller's job.
func (q ParsedQuery) IsValidForTrainSearch() bool {
	if q.TrainNumber != "" {
		return true
	}
	return q.OriginText != "" && q.DestinationText != ""
}
