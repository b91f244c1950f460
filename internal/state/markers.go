package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/keyhold/internal/db"
)

// Marker is the saved session state of one document, keyed by its absolute
// path.
type Marker struct {
	ContentID     string
	Title         string
	Liked         bool
	Offset        float64        // scroll offset in lines
	MediaPosition *time.Duration // nil when the document had no media
	UpdatedAt     time.Time
}

// GetMarker returns the marker for contentID, or nil if none is saved.
func (m *Manager) GetMarker(contentID string) (*Marker, error) {
	return getMarker(m.db, contentID)
}

// SaveMarker writes a complete marker, replacing any previous one.
func (m *Manager) SaveMarker(mk Marker) error {
	if mk.UpdatedAt.IsZero() {
		mk.UpdatedAt = time.Now()
	}
	return saveMarker(m.db, mk)
}

// SetLiked updates the liked flag, creating the marker if needed.
func (m *Manager) SetLiked(contentID, title string, liked bool) error {
	_, err := m.db.Exec(`
		INSERT INTO markers (content_id, title, liked, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			title = COALESCE(excluded.title, markers.title),
			liked = excluded.liked,
			updated_at = excluded.updated_at
	`, contentID, dbutil.NotZero(title), liked, time.Now().Unix())
	return err
}

// SetMediaPosition records the playhead of the document's media, creating
// the marker if needed.
func (m *Manager) SetMediaPosition(contentID string, pos time.Duration) error {
	_, err := m.db.Exec(`
		INSERT INTO markers (content_id, media_position_ms, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			media_position_ms = excluded.media_position_ms,
			updated_at = excluded.updated_at
	`, contentID, pos.Milliseconds(), time.Now().Unix())
	return err
}

// ListMarkers returns every marker, most recently updated first.
func (m *Manager) ListMarkers() ([]Marker, error) {
	rows, err := m.db.Query(`
		SELECT content_id, title, liked, scroll_offset, media_position_ms, updated_at
		FROM markers ORDER BY updated_at DESC, content_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markers []Marker
	for rows.Next() {
		mk, err := scanMarker(rows)
		if err != nil {
			return nil, err
		}
		markers = append(markers, *mk)
	}
	return markers, rows.Err()
}

// ClearMarker deletes the marker for contentID and reports whether it existed.
func (m *Manager) ClearMarker(contentID string) (bool, error) {
	res, err := m.db.Exec(`DELETE FROM markers WHERE content_id = ?`, contentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ClearMarkers deletes every marker and returns how many there were.
func (m *Manager) ClearMarkers() (int64, error) {
	var n int64
	err := dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if err := tx.QueryRow(`SELECT COUNT(*) FROM markers`).Scan(&n); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM markers`)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMarker(row scanner) (*Marker, error) {
	var mk Marker
	var title sql.Null[string]
	var mediaMS sql.Null[int64]
	var updated int64

	err := row.Scan(&mk.ContentID, &title, &mk.Liked, &mk.Offset, &mediaMS, &updated)
	if err != nil {
		return nil, err
	}

	mk.Title = dbutil.Value(title)
	if ms := dbutil.Ptr(mediaMS); ms != nil {
		d := time.Duration(*ms) * time.Millisecond
		mk.MediaPosition = &d
	}
	mk.UpdatedAt = time.Unix(updated, 0)
	return &mk, nil
}

func getMarker(db *sql.DB, contentID string) (*Marker, error) {
	row := db.QueryRow(`
		SELECT content_id, title, liked, scroll_offset, media_position_ms, updated_at
		FROM markers WHERE content_id = ?
	`, contentID)

	mk, err := scanMarker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no marker is valid for unseen documents
	}
	return mk, err
}

func saveMarker(db *sql.DB, mk Marker) error {
	var mediaMS sql.Null[int64]
	if mk.MediaPosition != nil {
		mediaMS = sql.Null[int64]{V: mk.MediaPosition.Milliseconds(), Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO markers (content_id, title, liked, scroll_offset, media_position_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			title = excluded.title,
			liked = excluded.liked,
			scroll_offset = excluded.scroll_offset,
			media_position_ms = excluded.media_position_ms,
			updated_at = excluded.updated_at
	`, mk.ContentID, dbutil.NotZero(mk.Title), mk.Liked, mk.Offset, mediaMS, mk.UpdatedAt.Unix())
	return err
}

// saveOffsets writes scroll offsets in one transaction, creating markers as
// needed.
func saveOffsets(db *sql.DB, offsets map[string]float64, now time.Time) error {
	return dbutil.WithTx(db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO markers (content_id, scroll_offset, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(content_id) DO UPDATE SET
				scroll_offset = excluded.scroll_offset,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for id, offset := range offsets {
			if _, err := stmt.Exec(id, offset, now.Unix()); err != nil {
				return err
			}
		}
		return nil
	})
}
