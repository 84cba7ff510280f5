package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/stereo/internal/catalog"
	"github.com/desertthunder/stereo/internal/envelope"
	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

// handlerFunc runs one decoded command against the session.
type handlerFunc func(ctx context.Context, cmd envelope.Command) error

// handlerTable maps every command tag to its handler. Commands that need the
// active collection are silent no-ops while none is set; the client is told
// about collections only through collection-info events.
func (s *Session) handlerTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		envelope.TypeHeartbeat:            s.handleHeartbeat,
		envelope.TypeAddTrack:             s.handleAddTrack,
		envelope.TypeAddTracks:            s.handleAddTracks,
		envelope.TypeDeleteTracks:         s.handleDeleteTracks,
		envelope.TypeUpdateRating:         s.handleUpdateRating,
		envelope.TypeIncPlayCount:         s.handleIncPlayCount,
		envelope.TypeGetTrackInfo:         s.handleGetTrackInfo,
		envelope.TypeGetRandomTrack:       s.handleGetRandomTrack,
		envelope.TypeGetRows:              s.handleGetRows,
		envelope.TypeCollectionContainsID: s.handleContainsID,
		envelope.TypeSetCollection:        s.handleSetCollection,
		envelope.TypeCreateCollection:     s.handleCreateCollection,
		envelope.TypeGetPathCompletions:   s.handlePathCompletions,
		envelope.TypeSearch:               s.handleSearch,
		envelope.TypeSearchCancelAll:      s.handleSearchCancelAll,
		envelope.TypeSearchTrack:          s.handleSearchTrack,
		envelope.TypeCheckImportFrom:      s.handleCheckImportFrom,
		envelope.TypeImportFrom:           s.handleImportFrom,
	}
}

func (s *Session) handleHeartbeat(ctx context.Context, cmd envelope.Command) error {
	hb := cmd.(*envelope.Heartbeat)
	return s.emit(ctx, envelope.NewHeartbeat(hb.Timestamp))
}

func (s *Session) handleAddTrack(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.AddTrack)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	policy := catalog.ConflictIgnore
	if c.OverwriteExisting {
		policy = catalog.ConflictReplace
	}
	if err := store.Insert(ctx, &c.Track, policy); err != nil {
		return err
	}

	// Echo the submitted track, even when an existing row won the conflict.
	s.debouncer.Mark()
	return s.emit(ctx, envelope.NewTrackUpdate(c.Track))
}

func (s *Session) handleAddTracks(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.AddTracks)
	store := s.activeStore()
	if store == nil || len(c.Tracks) == 0 {
		return nil
	}

	policy := catalog.ConflictIgnore
	if c.OverwriteExisting {
		policy = catalog.ConflictReplace
	}
	if err := store.InsertMany(ctx, c.Tracks, policy); err != nil {
		return err
	}
	s.debouncer.Mark()
	return nil
}

func (s *Session) handleDeleteTracks(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.DeleteTracks)
	store := s.activeStore()
	if store == nil || len(c.IDs) == 0 {
		return nil
	}

	deleted, err := store.DeleteMany(ctx, c.IDs)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.debouncer.Mark()
	}
	return nil
}

func (s *Session) handleUpdateRating(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.UpdateRating)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	var rating any
	if c.Rating != nil {
		rating = *c.Rating
	}
	if err := store.Update(ctx, c.YTID, map[string]any{"rating": rating}); err != nil {
		return err
	}

	track, err := store.Get(ctx, c.YTID)
	if err != nil {
		return err
	}
	return s.emit(ctx, envelope.NewTrackUpdate(*track))
}

func (s *Session) handleIncPlayCount(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.IncPlayCount)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	track, err := store.Get(ctx, c.YTID)
	if err != nil {
		return err
	}
	changes := map[string]any{
		"play_count":  track.PlayCount + 1,
		"last_played": models.Today(),
	}
	if err := store.Update(ctx, c.YTID, changes); err != nil {
		return err
	}

	updated, err := store.Get(ctx, c.YTID)
	if err != nil {
		return err
	}
	return s.emit(ctx, envelope.NewTrackUpdate(*updated))
}

func (s *Session) handleGetTrackInfo(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.GetTrackInfo)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	track, err := store.Get(ctx, c.YTID)
	if errors.Is(err, shared.ErrTrackNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.emit(ctx, envelope.NewTrackInfo(*track))
}

func (s *Session) handleGetRandomTrack(ctx context.Context, cmd envelope.Command) error {
	store := s.activeStore()
	if store == nil {
		return nil
	}

	track, err := store.GetRandom(ctx, nil)
	if errors.Is(err, shared.ErrTrackNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.emit(ctx, envelope.NewPlayID(track.YTID))
}

func (s *Session) handleGetRows(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.GetRows)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	total, err := store.Count(ctx, c.FilterModel)
	if err != nil {
		return err
	}
	rows, err := store.QueryPage(ctx, c.FilterModel, c.SortModel, c.StartRow, c.EndRow)
	if err != nil {
		return err
	}
	return s.emit(ctx, envelope.NewRows(c.ID, rows, total))
}

func (s *Session) handleContainsID(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.CollectionContainsID)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	exists, err := store.Exists(ctx, c.YTID)
	if err != nil {
		return err
	}
	return s.emit(ctx, envelope.NewContainsIDResponse(c.ID, exists))
}

func (s *Session) handleSetCollection(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.SetCollection)
	path := shared.ExpandPath(c.Path)

	if !catalog.ValidateSchema(ctx, path) {
		// An invalid target leaves the session without a collection; the
		// client already considers the old one switched away.
		s.setStore(nil)
		reply := envelope.NewCollectionInfoError(
			c.ID,
			fmt.Sprintf("%s is not a valid collection", c.Path),
			shared.PathCompletions(c.Path),
		)
		return s.emit(ctx, reply)
	}

	store := s.newStore(path)
	s.setStore(store)
	collection, err := collectionSnapshot(ctx, store)
	if err != nil {
		return err
	}
	s.debouncer.Mark()
	return s.emit(ctx, envelope.NewCollectionInfoReply(c.ID, *collection))
}

func (s *Session) handleCreateCollection(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.CreateCollection)
	path := shared.ExpandPath(c.Path)

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", shared.ErrCollectionExists, c.Path)
	}

	store := s.newStore(path)
	if err := store.Init(ctx); err != nil {
		return err
	}

	s.setStore(store)
	collection, err := collectionSnapshot(ctx, store)
	if err != nil {
		return err
	}
	s.debouncer.Mark()
	return s.emit(ctx, envelope.NewCollectionInfo(*collection))
}

func (s *Session) handlePathCompletions(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.GetPathCompletions)
	return s.emit(ctx, envelope.NewPathCompletions(c.ID, shared.PathCompletions(c.PathPrefix)))
}

func (s *Session) handleSearch(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.Search)
	// An empty query is just a cancel; no job, no search-complete.
	if c.Query == "" {
		s.searches.CancelAll()
		return nil
	}
	s.searches.Start(ctx, c)
	return nil
}

func (s *Session) handleSearchCancelAll(_ context.Context, _ envelope.Command) error {
	s.searches.CancelAll()
	return nil
}

func (s *Session) handleSearchTrack(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.SearchTrack)

	track, err := s.searches.provider.FindTrack(ctx, c.Title, c.Artist)
	if errors.Is(err, shared.ErrNoMatch) {
		return s.emit(ctx, envelope.NewTrackNotFound(c.ID))
	}
	if err != nil {
		return err
	}

	exists := false
	if store := s.activeStore(); store != nil {
		if exists, err = store.Exists(ctx, track.YTID); err != nil {
			return err
		}
	}
	return s.emit(ctx, envelope.NewTrackFound(c.ID, *track, exists))
}

func (s *Session) handleCheckImportFrom(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.CheckImportFrom)

	local, cleanup, err := resolveSource(ctx, c.Path)
	if err != nil {
		return s.emit(ctx, envelope.NewImportFromValid(c.Path, false))
	}
	defer cleanup()

	return s.emit(ctx, envelope.NewImportFromValid(c.Path, catalog.ValidateSchema(ctx, local)))
}

func (s *Session) handleImportFrom(ctx context.Context, cmd envelope.Command) error {
	c := cmd.(*envelope.ImportFrom)
	store := s.activeStore()
	if store == nil {
		return nil
	}

	local, cleanup, err := resolveSource(ctx, c.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	if !catalog.ValidateSchema(ctx, local) {
		return fmt.Errorf("%w: %s is not a valid collection", shared.ErrImportSource, c.Path)
	}

	imported, err := store.ImportFrom(ctx, local, nil, c.KeepUserData)
	if err != nil {
		return err
	}

	s.debouncer.Mark()
	notice := envelope.NewNotification(
		fmt.Sprintf("imported %d tracks from %s", imported, c.Path),
		envelope.SeverityInfo,
	)
	return s.emit(ctx, notice)
}

// resolveSource turns an import path into a readable local file. URLs are
// downloaded to a temporary file; the cleanup func removes it.
func resolveSource(ctx context.Context, path string) (string, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		local := shared.ExpandPath(path)
		if _, err := os.Stat(local); err != nil {
			return "", noop, fmt.Errorf("%w: %v", shared.ErrImportSource, err)
		}
		return local, noop, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", noop, fmt.Errorf("%w: %v", shared.ErrImportSource, err)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return "", noop, fmt.Errorf("%w: %v", shared.ErrImportSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", noop, fmt.Errorf("%w: %s returned status %d", shared.ErrImportSource, path, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "stereo-import-*.db")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", noop, fmt.Errorf("failed to download %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("failed to finish download: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
