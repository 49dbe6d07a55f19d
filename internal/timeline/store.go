package timeline

import "github.com/couchcryptid/cyclone-constraint-service/internal/domain"

// Store keeps the active timeline per storm identifier plus the archived
// timelines of past storms. Archived timelines are retained, never deleted:
// archival only ends the append lifecycle.
type Store struct {
	active   map[string]*Timeline
	archived []*Timeline
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{active: make(map[string]*Timeline)}
}

// Get returns the active timeline for a storm, or nil if none exists.
func (s *Store) Get(stormID string) *Timeline {
	return s.active[stormID]
}

// GetOrCreate returns the active timeline for a storm, creating a fresh one
// on the first observation of that identifier.
func (s *Store) GetOrCreate(stormID string) *Timeline {
	if t, ok := s.active[stormID]; ok {
		return t
	}
	t := &Timeline{stormID: stormID}
	s.active[stormID] = t
	return t
}

// Archive marks a storm's timeline as archived and moves it out of the
// active set. A later observation with the same identifier (an ID reused for
// a new season's system) starts a fresh timeline with fresh smoothing state,
// guarding against silent carry-over from the prior storm.
func (s *Store) Archive(stormID string) {
	t, ok := s.active[stormID]
	if !ok {
		return
	}
	t.archived = true
	s.archived = append(s.archived, t)
	delete(s.active, stormID)
}

// ActiveStorms returns the identifiers with an active timeline.
func (s *Store) ActiveStorms() []string {
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	return ids
}

// ActiveCount returns the number of active timelines.
func (s *Store) ActiveCount() int { return len(s.active) }

// ArchivedTimelines returns the archived timelines in archival order.
func (s *Store) ArchivedTimelines() []*Timeline {
	out := make([]*Timeline, len(s.archived))
	copy(out, s.archived)
	return out
}

// LatestSnapshot returns the most recent snapshot across a storm's active
// timeline, or nil if the storm is unknown or its timeline empty.
func (s *Store) LatestSnapshot(stormID string) *domain.ConstraintSnapshot {
	t := s.Get(stormID)
	if t == nil {
		return nil
	}
	return t.Latest()
}
