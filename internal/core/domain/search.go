package domain

// SearchOutcome classifies what a search produced.
type SearchOutcome string

const (
	// OutcomeResults means the search produced journey options.
	OutcomeResults SearchOutcome = "results"

	// OutcomeStationChoice means one or both station references were
	// ambiguous and the user must pick from the candidates.
	OutcomeStationChoice SearchOutcome = "station_choice"

	// OutcomeTrainChoice means the train-number token was partial or
	// inexact and the user must pick from the candidates.
	OutcomeTrainChoice SearchOutcome = "train_choice"

	// OutcomeIncomplete means the utterance did not yield a searchable
	// query; the parsed query shows what was understood.
	OutcomeIncomplete SearchOutcome = "incomplete"
)

// SearchResponse is the structured answer to one utterance. Rendering
// it as user-facing text is strictly a downstream concern.
type SearchResponse struct {
	// RequestID correlates log lines for one search.
	RequestID string

	// Outcome says which of the payload fields are populated.
	Outcome SearchOutcome

	// Query is the parsed utterance, always present.
	Query ParsedQuery

	// Origin and Destination are the resolved endpoints when the
	// outcome is OutcomeResults.
	Origin      *StationCandidate
	Destination *StationCandidate

	// Results is the filtered, ranked journey list, primary options
	// first by departure time with backups flagged.
	Results []TrainSearchResult

	// OriginCandidates and DestinationCandidates are populated for
	// OutcomeStationChoice.
	OriginCandidates      []StationCandidate
	DestinationCandidates []StationCandidate

	// TrainMatch is populated for train-number queries.
	TrainMatch *TrainNumberMatch
}
