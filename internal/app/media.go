package app

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/keyhold/internal/host"
	"github.com/llehouerou/keyhold/internal/state"
)

// MediaMarkers stores the playhead of a document's media.
type MediaMarkers interface {
	GetMarker(contentID string) (*state.Marker, error)
	SetMediaPosition(contentID string, pos time.Duration) error
}

// restoreMedia moves the player to the position saved for path.
func restoreMedia(markers MediaMarkers, path string, player *host.Player, log logrus.FieldLogger) {
	mk, err := markers.GetMarker(path)
	if err != nil {
		log.WithError(err).Warn("loading media position")
		return
	}
	if mk == nil || mk.MediaPosition == nil {
		return
	}
	if err := player.SeekTo(*mk.MediaPosition); err != nil {
		log.WithError(err).Debug("restoring media position")
	}
}

// saveMedia records the player position for path.
func saveMedia(markers MediaMarkers, path string, player *host.Player, log logrus.FieldLogger) {
	if player.Length() <= 0 {
		return
	}
	if err := markers.SetMediaPosition(path, player.Position()); err != nil {
		log.WithError(err).Warn("saving media position")
	}
}
