package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

// setupTestStore creates an initialized collection in a temp directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	store.SetPool(4, 2)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return store
}

func testTrack(ytID, title string) models.Track {
	return models.Track{
		YTID:    ytID,
		Title:   title,
		Artists: []string{"Test Artist"},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("InsertAndGet", func(t *testing.T) {
		store := setupTestStore(t)

		bpID := models.NumericID(555)
		date, _ := models.ParseDate("2021-06-15")
		track := models.Track{
			YTID:        "vid1",
			BPID:        &bpID,
			Title:       "Deep Cut",
			MixName:     strPtr("Original Mix"),
			Artists:     []string{"Artist A", "Artist B"},
			ReleaseDate: &date,
			Label:       strPtr("Test Label"),
			Length:      intPtr(421),
			BPM:         intPtr(128),
			Genre:       strPtr("Techno"),
			Rating:      intPtr(4),
			PlayCount:   7,
		}

		if err := store.Insert(ctx, &track, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		got, err := store.Get(ctx, "vid1")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Title != "Deep Cut" {
			t.Errorf("expected title Deep Cut, got %s", got.Title)
		}
		if len(got.Artists) != 2 || got.Artists[1] != "Artist B" {
			t.Errorf("unexpected artists: %v", got.Artists)
		}
		if got.BPID == nil || *got.BPID != 555 {
			t.Errorf("expected bp_id 555, got %v", got.BPID)
		}
		if got.ReleaseDate == nil || got.ReleaseDate.String() != "2021-06-15" {
			t.Errorf("expected release date 2021-06-15, got %v", got.ReleaseDate)
		}
		if got.Rating == nil || *got.Rating != 4 {
			t.Errorf("expected rating 4, got %v", got.Rating)
		}
		if got.PlayCount != 7 {
			t.Errorf("expected play count 7, got %d", got.PlayCount)
		}
		if got.Album != nil {
			t.Errorf("expected nil album, got %v", *got.Album)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := setupTestStore(t)

		_, err := store.Get(ctx, "nope")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("ConflictIgnoreKeepsExisting", func(t *testing.T) {
		store := setupTestStore(t)

		first := testTrack("dup", "Original Title")
		if err := store.Insert(ctx, &first, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		second := testTrack("dup", "Replacement Title")
		if err := store.Insert(ctx, &second, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert duplicate: %v", err)
		}

		got, err := store.Get(ctx, "dup")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Title != "Original Title" {
			t.Errorf("expected existing row to win, got title %s", got.Title)
		}
	})

	t.Run("ConflictReplaceOverwrites", func(t *testing.T) {
		store := setupTestStore(t)

		first := testTrack("dup", "Original Title")
		if err := store.Insert(ctx, &first, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		second := testTrack("dup", "Replacement Title")
		if err := store.Insert(ctx, &second, ConflictReplace); err != nil {
			t.Fatalf("failed to replace: %v", err)
		}

		got, err := store.Get(ctx, "dup")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Title != "Replacement Title" {
			t.Errorf("expected replacement to win, got title %s", got.Title)
		}
	})

	t.Run("InsertInvalid", func(t *testing.T) {
		store := setupTestStore(t)

		track := models.Track{YTID: "x"}
		if err := store.Insert(ctx, &track, ConflictIgnore); err == nil {
			t.Error("expected validation error for track without title")
		}
	})

	t.Run("Update", func(t *testing.T) {
		store := setupTestStore(t)

		track := testTrack("u1", "Track")
		if err := store.Insert(ctx, &track, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		changes := map[string]any{"rating": 5, "play_count": 2}
		if err := store.Update(ctx, "u1", changes); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, err := store.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Rating == nil || *got.Rating != 5 {
			t.Errorf("expected rating 5, got %v", got.Rating)
		}
		if got.PlayCount != 2 {
			t.Errorf("expected play count 2, got %d", got.PlayCount)
		}
	})

	t.Run("UpdateClearsWithNil", func(t *testing.T) {
		store := setupTestStore(t)

		track := testTrack("u2", "Track")
		track.Rating = intPtr(3)
		if err := store.Insert(ctx, &track, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		if err := store.Update(ctx, "u2", map[string]any{"rating": nil}); err != nil {
			t.Fatalf("failed to clear rating: %v", err)
		}

		got, err := store.Get(ctx, "u2")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Rating != nil {
			t.Errorf("expected cleared rating, got %v", *got.Rating)
		}
	})

	t.Run("UpdateMissingRow", func(t *testing.T) {
		store := setupTestStore(t)

		err := store.Update(ctx, "ghost", map[string]any{"rating": 1})
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("UpdateRejectsUnknownColumn", func(t *testing.T) {
		store := setupTestStore(t)

		err := store.Update(ctx, "any", map[string]any{"sneaky; DROP TABLE tracks": 1})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("DeleteMany", func(t *testing.T) {
		store := setupTestStore(t)

		for _, id := range []string{"d1", "d2", "d3"} {
			track := testTrack(id, "Track "+id)
			if err := store.Insert(ctx, &track, ConflictIgnore); err != nil {
				t.Fatalf("failed to insert: %v", err)
			}
		}

		deleted, err := store.DeleteMany(ctx, []string{"d1", "d3", "missing"})
		if err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if deleted != 2 {
			t.Errorf("expected 2 deleted, got %d", deleted)
		}

		count, err := store.Count(ctx, nil)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 remaining, got %d", count)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		store := setupTestStore(t)

		track := testTrack("e1", "Track")
		if err := store.Insert(ctx, &track, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		exists, err := store.Exists(ctx, "e1")
		if err != nil {
			t.Fatalf("failed to check: %v", err)
		}
		if !exists {
			t.Error("expected e1 to exist")
		}

		exists, err = store.Exists(ctx, "e2")
		if err != nil {
			t.Fatalf("failed to check: %v", err)
		}
		if exists {
			t.Error("expected e2 to not exist")
		}
	})

	t.Run("GetRandom", func(t *testing.T) {
		store := setupTestStore(t)

		if _, err := store.GetRandom(ctx, nil); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound on empty collection, got %v", err)
		}

		track := testTrack("r1", "Only Track")
		if err := store.Insert(ctx, &track, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		got, err := store.GetRandom(ctx, nil)
		if err != nil {
			t.Fatalf("failed to get random: %v", err)
		}
		if got.YTID != "r1" {
			t.Errorf("expected r1, got %s", got.YTID)
		}
	})
}

func TestStoreQueries(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *Store {
		t.Helper()
		store := setupTestStore(t)

		tracks := []models.Track{
			{YTID: "a", Title: "Alpha", Artists: []string{"X"}, Genre: strPtr("Techno"), Rating: intPtr(5)},
			{YTID: "b", Title: "Beta", Artists: []string{"Y"}, Genre: strPtr("House")},
			{YTID: "c", Title: "Gamma", Artists: []string{"Z"}, Genre: strPtr("Techno"), Rating: intPtr(2)},
			{YTID: "d", Title: "Delta", Artists: []string{"X"}},
		}
		if err := store.InsertMany(ctx, tracks, ConflictIgnore); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
		return store
	}

	t.Run("CountWithEquals", func(t *testing.T) {
		store := seed(t)

		filter := models.FilterModel{
			"genre": {FilterType: "text", Type: models.FilterEquals, Filter: "Techno"},
		}
		count, err := store.Count(ctx, filter)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 techno tracks, got %d", count)
		}
	})

	t.Run("CountWithContains", func(t *testing.T) {
		store := seed(t)

		filter := models.FilterModel{
			"title": {FilterType: "text", Type: models.FilterContains, Filter: "eta"},
		}
		count, err := store.Count(ctx, filter)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 match for 'eta', got %d", count)
		}
	})

	t.Run("CountWithBlank", func(t *testing.T) {
		store := seed(t)

		filter := models.FilterModel{
			"rating": {FilterType: "number", Type: models.FilterBlank},
		}
		count, err := store.Count(ctx, filter)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 unrated tracks, got %d", count)
		}
	})

	t.Run("CountWithCombinedOr", func(t *testing.T) {
		store := seed(t)

		filter := models.FilterModel{
			"title": {
				FilterType: "text",
				Operator:   "OR",
				Conditions: []models.FilterCondition{
					{FilterType: "text", Type: models.FilterEquals, Filter: "Alpha"},
					{FilterType: "text", Type: models.FilterEquals, Filter: "Delta"},
				},
			},
		}
		count, err := store.Count(ctx, filter)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 matches, got %d", count)
		}
	})

	t.Run("RejectsUnknownFilterColumn", func(t *testing.T) {
		store := seed(t)

		filter := models.FilterModel{
			"nonsense": {FilterType: "text", Type: models.FilterEquals, Filter: "x"},
		}
		if _, err := store.Count(ctx, filter); err == nil {
			t.Error("expected error for unknown filter column")
		}
	})

	t.Run("QueryPageSortsAndWindows", func(t *testing.T) {
		store := seed(t)

		sortModel := []models.SortItem{{Column: "title", Direction: "asc"}}
		rows, err := store.QueryPage(ctx, nil, sortModel, 1, 3)
		if err != nil {
			t.Fatalf("failed to query: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		// full order is Alpha, Beta, Delta, Gamma
		if rows[0].Title != "Beta" || rows[1].Title != "Delta" {
			t.Errorf("unexpected window: %s, %s", rows[0].Title, rows[1].Title)
		}
	})

	t.Run("QueryPagePastEnd", func(t *testing.T) {
		store := seed(t)

		rows, err := store.QueryPage(ctx, nil, nil, 100, 200)
		if err != nil {
			t.Fatalf("failed to query: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected empty window, got %d rows", len(rows))
		}
	})
}

func TestValidateSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidCollection", func(t *testing.T) {
		store := setupTestStore(t)
		if !ValidateSchema(ctx, store.Path()) {
			t.Error("expected initialized collection to validate")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if ValidateSchema(ctx, filepath.Join(t.TempDir(), "absent.db")) {
			t.Error("expected missing file to fail validation")
		}
	})

	t.Run("NotADatabase", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.db")
		if err := os.WriteFile(path, []byte("not sqlite"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if ValidateSchema(ctx, path) {
			t.Error("expected junk file to fail validation")
		}
	})
}

func TestImportFrom(t *testing.T) {
	ctx := context.Background()

	setupSource := func(t *testing.T) *Store {
		t.Helper()
		source := setupTestStore(t)

		tracks := []models.Track{
			{YTID: "s1", Title: "Imported One", Artists: []string{"A"}, Rating: intPtr(1)},
			{YTID: "s2", Title: "Imported Two", Artists: []string{"B"}},
		}
		if err := source.InsertMany(ctx, tracks, ConflictIgnore); err != nil {
			t.Fatalf("failed to seed source: %v", err)
		}
		return source
	}

	t.Run("PreserveUserFields", func(t *testing.T) {
		target := setupTestStore(t)
		source := setupSource(t)

		local := testTrack("s1", "Local Title")
		local.Rating = intPtr(5)
		local.PlayCount = 10
		if err := target.Insert(ctx, &local, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert local track: %v", err)
		}

		imported, err := target.ImportFrom(ctx, source.Path(), nil, true)
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if imported != 1 {
			t.Errorf("expected 1 new row, got %d", imported)
		}

		got, err := target.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Rating == nil || *got.Rating != 5 {
			t.Errorf("expected local rating preserved, got %v", got.Rating)
		}
		if got.PlayCount != 10 {
			t.Errorf("expected local play count preserved, got %d", got.PlayCount)
		}

		if _, err := target.Get(ctx, "s2"); err != nil {
			t.Errorf("expected s2 imported: %v", err)
		}
	})

	t.Run("OverwriteEverything", func(t *testing.T) {
		target := setupTestStore(t)
		source := setupSource(t)

		local := testTrack("s1", "Local Title")
		local.Rating = intPtr(5)
		if err := target.Insert(ctx, &local, ConflictIgnore); err != nil {
			t.Fatalf("failed to insert local track: %v", err)
		}

		imported, err := target.ImportFrom(ctx, source.Path(), nil, false)
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if imported != 2 {
			t.Errorf("expected 2 rows written, got %d", imported)
		}

		got, err := target.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got.Title != "Imported One" {
			t.Errorf("expected source row to replace local, got title %s", got.Title)
		}
		if got.Rating == nil || *got.Rating != 1 {
			t.Errorf("expected source rating, got %v", got.Rating)
		}
	})
}
