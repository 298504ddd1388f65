package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotReady indicates the station directory has not been built yet.
	// Calling resolve before the first build is a programming error.
	ErrIndexNotReady = errors.New("station directory not built")

	// ErrQueryIncomplete indicates the parsed query has neither a train
	// number nor both route endpoints.
	ErrQueryIncomplete = errors.New("query missing route or train number")

	// ErrTimetableUnavailable indicates the upstream timetable source is
	// not configured or could not be reached.
	ErrTimetableUnavailable = errors.New("timetable source unavailable")

	// ErrNoTransferRoute indicates no branch-line transfer plan exists
	// between the requested stations.
	ErrNoTransferRoute = errors.New("no transfer route between stations")
)
