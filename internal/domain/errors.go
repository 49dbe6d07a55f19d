package domain

import (
	"errors"
	"fmt"
	"time"
)

// DataError reports advisory input that failed validation before scoring.
// It carries enough context (storm, timestamp, field) for the scheduler to
// log and skip the cycle without crashing a multi-storm batch run.
type DataError struct {
	StormID   string
	Timestamp time.Time
	Field     string
	Reason    string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid advisory data for storm %q at %s: field %s: %s",
		e.StormID, e.Timestamp.Format(time.RFC3339), e.Field, e.Reason)
}

// NewDataError creates a DataError for the given observation context.
func NewDataError(stormID string, ts time.Time, field, reason string) *DataError {
	return &DataError{StormID: stormID, Timestamp: ts, Field: field, Reason: reason}
}

// IsDataError reports whether err is or wraps a DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// SequenceError reports an attempted timeline append whose timestamp is not
// strictly greater than the last stored snapshot's. The append is rejected
// and the timeline is left untouched.
type SequenceError struct {
	StormID   string
	Last      time.Time
	Attempted time.Time
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("out-of-order snapshot for storm %q: attempted %s, last stored %s",
		e.StormID, e.Attempted.Format(time.RFC3339), e.Last.Format(time.RFC3339))
}

// IsSequenceError reports whether err is or wraps a SequenceError.
func IsSequenceError(err error) bool {
	var se *SequenceError
	return errors.As(err, &se)
}
