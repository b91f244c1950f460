package state

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupTestManager opens an in-memory database with the schema initialized.
func setupTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := OpenPath(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = m.db.Close() })
	return m
}

func TestGetMarker_Empty(t *testing.T) {
	m := setupTestManager(t)

	mk, err := m.GetMarker("/docs/readme.md")
	if err != nil {
		t.Fatalf("GetMarker failed: %v", err)
	}
	if mk != nil {
		t.Errorf("expected nil marker on empty db, got %+v", mk)
	}
}

func TestSaveAndGetMarker(t *testing.T) {
	m := setupTestManager(t)
	pos := 83 * time.Second
	saved := Marker{
		ContentID:     "/docs/talk.md",
		Title:         "Conference talk",
		Liked:         true,
		Offset:        42.5,
		MediaPosition: &pos,
		UpdatedAt:     time.Unix(1700000000, 0),
	}

	if err := m.SaveMarker(saved); err != nil {
		t.Fatalf("SaveMarker failed: %v", err)
	}

	got, err := m.GetMarker(saved.ContentID)
	if err != nil {
		t.Fatalf("GetMarker failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected marker, got nil")
	}
	if got.Title != saved.Title || !got.Liked || got.Offset != saved.Offset {
		t.Errorf("got %+v, want %+v", got, saved)
	}
	if got.MediaPosition == nil || *got.MediaPosition != pos {
		t.Errorf("MediaPosition = %v, want %v", got.MediaPosition, pos)
	}
	if !got.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, saved.UpdatedAt)
	}
}

func TestSaveMarker_Overwrites(t *testing.T) {
	m := setupTestManager(t)
	id := "/docs/a.md"

	if err := m.SaveMarker(Marker{ContentID: id, Title: "A", Offset: 10}); err != nil {
		t.Fatalf("SaveMarker failed: %v", err)
	}
	if err := m.SaveMarker(Marker{ContentID: id, Offset: 3}); err != nil {
		t.Fatalf("SaveMarker failed: %v", err)
	}

	got, err := m.GetMarker(id)
	if err != nil {
		t.Fatalf("GetMarker failed: %v", err)
	}
	if got.Offset != 3 || got.Title != "" || got.MediaPosition != nil {
		t.Errorf("got %+v, want offset 3 with no title or media", got)
	}
}

func TestSetLiked(t *testing.T) {
	m := setupTestManager(t)
	id := "/docs/b.md"

	if err := m.SetLiked(id, "B", true); err != nil {
		t.Fatalf("SetLiked failed: %v", err)
	}
	got, _ := m.GetMarker(id)
	if got == nil || !got.Liked || got.Title != "B" {
		t.Fatalf("got %+v, want liked marker titled B", got)
	}

	// An empty title keeps the stored one.
	if err := m.SetLiked(id, "", false); err != nil {
		t.Fatalf("SetLiked failed: %v", err)
	}
	got, _ = m.GetMarker(id)
	if got.Liked || got.Title != "B" {
		t.Errorf("got %+v, want unliked marker titled B", got)
	}
}

func TestSetMediaPosition(t *testing.T) {
	m := setupTestManager(t)
	id := "/docs/talk.md"

	if err := m.SetLiked(id, "Talk", true); err != nil {
		t.Fatalf("SetLiked failed: %v", err)
	}
	if err := m.SetMediaPosition(id, 95*time.Second+400*time.Millisecond); err != nil {
		t.Fatalf("SetMediaPosition failed: %v", err)
	}

	got, _ := m.GetMarker(id)
	if got == nil || got.MediaPosition == nil {
		t.Fatalf("got %+v, want a media position", got)
	}
	if *got.MediaPosition != 95*time.Second+400*time.Millisecond {
		t.Errorf("MediaPosition = %v, want 1m35.4s", *got.MediaPosition)
	}
	if !got.Liked || got.Title != "Talk" {
		t.Errorf("got %+v, want other columns kept", got)
	}
}

func TestListAndClearMarkers(t *testing.T) {
	m := setupTestManager(t)
	for i, id := range []string{"/a", "/b", "/c"} {
		mk := Marker{ContentID: id, UpdatedAt: time.Unix(int64(1000+i), 0)}
		if err := m.SaveMarker(mk); err != nil {
			t.Fatalf("SaveMarker failed: %v", err)
		}
	}

	list, err := m.ListMarkers()
	if err != nil {
		t.Fatalf("ListMarkers failed: %v", err)
	}
	if len(list) != 3 || list[0].ContentID != "/c" || list[2].ContentID != "/a" {
		t.Fatalf("ListMarkers = %+v, want newest first", list)
	}

	ok, err := m.ClearMarker("/b")
	if err != nil || !ok {
		t.Fatalf("ClearMarker(/b) = %v, %v; want true, nil", ok, err)
	}
	ok, err = m.ClearMarker("/b")
	if err != nil || ok {
		t.Fatalf("second ClearMarker(/b) = %v, %v; want false, nil", ok, err)
	}

	n, err := m.ClearMarkers()
	if err != nil {
		t.Fatalf("ClearMarkers failed: %v", err)
	}
	if n != 2 {
		t.Errorf("ClearMarkers removed %d, want 2", n)
	}
	list, _ = m.ListMarkers()
	if len(list) != 0 {
		t.Errorf("expected no markers, got %d", len(list))
	}
}

func TestSaveOffsets_KeepsOtherColumns(t *testing.T) {
	m := setupTestManager(t)
	if err := m.SetLiked("/x", "X", true); err != nil {
		t.Fatalf("SetLiked failed: %v", err)
	}

	err := saveOffsets(m.db, map[string]float64{"/x": 12, "/y": 7.25}, time.Unix(2000, 0))
	if err != nil {
		t.Fatalf("saveOffsets failed: %v", err)
	}

	x, _ := m.GetMarker("/x")
	if x.Offset != 12 || !x.Liked || x.Title != "X" {
		t.Errorf("/x = %+v, want offset 12, liked, titled X", x)
	}
	y, _ := m.GetMarker("/y")
	if y == nil || y.Offset != 7.25 {
		t.Errorf("/y = %+v, want offset 7.25", y)
	}
}

func TestSaveOffset_FlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyhold.db")
	m, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}

	m.SaveOffset("/doc", 5)
	m.SaveOffset("/doc", 9) // debounced: only the last value matters
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	mk, err := getMarker(db, "/doc")
	if err != nil {
		t.Fatalf("getMarker failed: %v", err)
	}
	if mk == nil || mk.Offset != 9 {
		t.Errorf("marker = %+v, want offset 9", mk)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	m := setupTestManager(t)

	if err := initSchema(m.db); err != nil {
		t.Fatalf("second initSchema failed: %v", err)
	}
	var version int
	if err := m.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestMockMatchesManagerContract(t *testing.T) {
	for name, s := range map[string]Interface{
		"manager": setupTestManager(t),
		"mock":    NewMock(),
	} {
		t.Run(name, func(t *testing.T) {
			if err := s.SetLiked("/m", "M", true); err != nil {
				t.Fatalf("SetLiked failed: %v", err)
			}
			mk, err := s.GetMarker("/m")
			if err != nil || mk == nil || !mk.Liked {
				t.Fatalf("GetMarker = %+v, %v", mk, err)
			}
			if ok, _ := s.ClearMarker("/m"); !ok {
				t.Error("ClearMarker reported no marker")
			}
			if mk, _ := s.GetMarker("/m"); mk != nil {
				t.Errorf("marker survived ClearMarker: %+v", mk)
			}
		})
	}
}
