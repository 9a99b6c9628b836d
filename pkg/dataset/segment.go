package dataset

import "github.com/sheltr/route-engine/pkg/geo"

// Segment is one road element: two projected endpoints, a unique identifier,
// a machine-learned probability of being safe during flooding, and optionally
// the full multi-point shape of the road. Segments are immutable once loaded.
type Segment struct {
	ID        string
	From      geo.XY
	To        geo.XY
	Safety    float64 // probability in [0, 1]; meaningful only when HasSafety
	HasSafety bool
	Geometry  []geo.XY // full polyline including endpoints; nil when unavailable
}

// Store holds the loaded segment collection and the safe-point set.
type Store struct {
	Segments   []Segment
	SafePoints []geo.XY // evacuation points, projected
	Skipped    int      // malformed records dropped during load

	byID map[string]int
}

// NewStore builds a Store from an already-assembled segment list.
func NewStore(segments []Segment) *Store {
	s := &Store{Segments: segments}
	s.reindex()
	return s
}

// SegmentByID returns the segment with the given identifier.
func (s *Store) SegmentByID(id string) (Segment, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Segment{}, false
	}
	return s.Segments[idx], true
}

// WithSafety returns a new Store with updated safety probabilities for the
// given segment identifiers. The receiver is left untouched so that a graph
// built from it can keep serving concurrent requests during a rebuild.
func (s *Store) WithSafety(updates map[string]float64) *Store {
	segs := make([]Segment, len(s.Segments))
	copy(segs, s.Segments)
	for id, prob := range updates {
		idx, ok := s.byID[id]
		if !ok {
			continue
		}
		segs[idx].Safety = prob
		segs[idx].HasSafety = true
	}
	return &Store{
		Segments:   segs,
		SafePoints: s.SafePoints,
		Skipped:    s.Skipped,
		byID:       s.byID,
	}
}

// reindex rebuilds the id lookup. Later duplicates win, matching the
// dedup behavior of the source dataset.
func (s *Store) reindex() {
	s.byID = make(map[string]int, len(s.Segments))
	for i := range s.Segments {
		s.byID[s.Segments[i].ID] = i
	}
}
