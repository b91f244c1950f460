package state

import (
	"database/sql"
	"sort"
	"time"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	markers map[string]Marker
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{markers: make(map[string]Marker)}
}

var _ Interface = (*Mock)(nil)

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SaveOffset(contentID string, offset float64) {
	mk := m.markers[contentID]
	mk.ContentID = contentID
	mk.Offset = offset
	m.markers[contentID] = mk
}

func (m *Mock) GetMarker(contentID string) (*Marker, error) {
	mk, ok := m.markers[contentID]
	if !ok {
		return nil, nil //nolint:nilnil // mirrors Manager
	}
	return &mk, nil
}

func (m *Mock) SaveMarker(mk Marker) error {
	m.markers[mk.ContentID] = mk
	return nil
}

func (m *Mock) SetLiked(contentID, title string, liked bool) error {
	mk := m.markers[contentID]
	mk.ContentID = contentID
	if title != "" {
		mk.Title = title
	}
	mk.Liked = liked
	m.markers[contentID] = mk
	return nil
}

func (m *Mock) SetMediaPosition(contentID string, pos time.Duration) error {
	mk := m.markers[contentID]
	mk.ContentID = contentID
	mk.MediaPosition = &pos
	m.markers[contentID] = mk
	return nil
}

func (m *Mock) ListMarkers() ([]Marker, error) {
	out := make([]Marker, 0, len(m.markers))
	for _, mk := range m.markers {
		out = append(out, mk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContentID < out[j].ContentID })
	return out, nil
}

func (m *Mock) ClearMarker(contentID string) (bool, error) {
	_, ok := m.markers[contentID]
	delete(m.markers, contentID)
	return ok, nil
}

func (m *Mock) ClearMarkers() (int64, error) {
	n := int64(len(m.markers))
	clear(m.markers)
	return n, nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *Mock) IsClosed() bool { return m.closed }
