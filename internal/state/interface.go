package state

import (
	"database/sql"
	"time"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	DB() *sql.DB
	SaveOffset(contentID string, offset float64)
	GetMarker(contentID string) (*Marker, error)
	SaveMarker(mk Marker) error
	SetLiked(contentID, title string, liked bool) error
	SetMediaPosition(contentID string, pos time.Duration) error
	ListMarkers() ([]Marker, error)
	ClearMarker(contentID string) (bool, error)
	ClearMarkers() (int64, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
