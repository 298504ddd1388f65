package domain

// Coordinates is a WGS84 position.
type Coordinates struct {
	// Lat is the latitude in decimal degrees.
	Lat float64

	// Lon is the longitude in decimal degrees.
	Lon float64
}

// StationRecord is one entry in the canonical station directory.
// Records are immutable; the directory is rebuilt wholesale when the
// station list changes.
type StationRecord struct {
	// ID is the TRA station identifier, e.g. "1000" for Taipei.
	ID string

	// NameLocal is the traditional-Chinese station name, e.g. "臺北".
	NameLocal string

	// NameRomanized is the romanized station name, e.g. "Taipei".
	NameRomanized string

	// Address is the street address, if known.
	Address string

	// Position is the station location, if known.
	Position *Coordinates
}

// StationCandidate is one ranked result of resolving free text against
// the station directory. It lives for a single resolution call.
type StationCandidate struct {
	// StationID is the matched station's identifier.
	StationID string

	// DisplayName is the local name shown for disambiguation.
	DisplayName string

	// Confidence expresses match certainty in [0,1]. It is an ordering
	// heuristic, not a probability.
	Confidence float64

	// Address is carried through from the station record, if known.
	Address string

	// Position is carried through from the station record, if known.
	Position *Coordinates
}

// FirmMatchThreshold is the confidence at or above which a top station
// candidate may be accepted without asking the user to disambiguate.
const FirmMatchThreshold = 0.9

// SoleCandidateThreshold is the confidence at or above which a single
// returned candidate may be accepted even below the firm threshold.
const SoleCandidateThreshold = 0.7
