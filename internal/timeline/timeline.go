// Package timeline holds the per-storm, append-only sequences of constraint
// snapshots. A timeline owns its snapshots exclusively: accessors return
// copies, and history is never reordered or rewritten. Execution is
// single-threaded per storm per cycle, so the store does no locking; a
// deployment that parallelizes across storms must partition by storm
// identifier so each timeline has exactly one writer.
package timeline

import (
	"fmt"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

// Timeline is the ordered snapshot history of one storm. Insertion order is
// chronological order; timestamps are strictly increasing.
type Timeline struct {
	stormID   string
	snapshots []domain.ConstraintSnapshot
	archived  bool
}

// New creates an empty timeline for a storm. Live processing goes through
// [Store.GetOrCreate]; New exists for historical replay, which reconstructs
// a single storm outside the active store.
func New(stormID string) *Timeline {
	return &Timeline{stormID: stormID}
}

// StormID returns the storm identifier this timeline belongs to.
func (t *Timeline) StormID() string { return t.stormID }

// Len returns the number of stored snapshots.
func (t *Timeline) Len() int { return len(t.snapshots) }

// Archived reports whether the storm has dissipated or gone post-tropical.
func (t *Timeline) Archived() bool { return t.archived }

// Append adds a snapshot to the end of the timeline. It fails with a
// SequenceError if the timestamp is not strictly greater than the last
// stored timestamp, and with a plain error if the timeline is archived.
// A failed append leaves the timeline untouched.
func (t *Timeline) Append(snap domain.ConstraintSnapshot) error {
	if t.archived {
		return fmt.Errorf("timeline for storm %q is archived", t.stormID)
	}
	if last := t.Latest(); last != nil && !snap.Timestamp.After(last.Timestamp) {
		return &domain.SequenceError{
			StormID:   t.stormID,
			Last:      last.Timestamp,
			Attempted: snap.Timestamp,
		}
	}
	t.snapshots = append(t.snapshots, snap)
	return nil
}

// Latest returns a copy of the most recent snapshot, or nil if the timeline
// is empty.
func (t *Timeline) Latest() *domain.ConstraintSnapshot {
	if len(t.snapshots) == 0 {
		return nil
	}
	last := t.snapshots[len(t.snapshots)-1]
	return &last
}

// MostRecent returns up to n snapshots from the end of the timeline in
// chronological order, fewer if the timeline is shorter.
func (t *Timeline) MostRecent(n int) []domain.ConstraintSnapshot {
	if n <= 0 {
		return nil
	}
	start := len(t.snapshots) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.ConstraintSnapshot, len(t.snapshots)-start)
	copy(out, t.snapshots[start:])
	return out
}

// All returns a copy of the full history in chronological order.
func (t *Timeline) All() []domain.ConstraintSnapshot {
	out := make([]domain.ConstraintSnapshot, len(t.snapshots))
	copy(out, t.snapshots)
	return out
}
