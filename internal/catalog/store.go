package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

// ConflictPolicy selects what happens when an inserted track's yt_id already
// exists in the collection.
type ConflictPolicy string

const (
	// ConflictIgnore leaves the existing row untouched.
	ConflictIgnore ConflictPolicy = "IGNORE"
	// ConflictReplace overwrites the existing row wholesale.
	ConflictReplace ConflictPolicy = "REPLACE"
)

// queryer is the subset of [sql.DB] used by schema inspection helpers.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store provides access to one collection file.
type Store struct {
	path         string
	maxOpenConns int
	maxIdleConns int
}

// NewStore creates a Store bound to the collection file at path. The file is
// not opened until an operation runs.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// SetPool bounds the connection pool for subsequent operations. Zero values
// leave the driver defaults in place.
func (s *Store) SetPool(maxOpenConns, maxIdleConns int) {
	s.maxOpenConns = maxOpenConns
	s.maxIdleConns = maxIdleConns
}

// Path returns the collection file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) open() (*sql.DB, error) {
	db, err := shared.NewDatabase(s.path)
	if err != nil {
		return nil, err
	}
	if s.maxOpenConns > 0 {
		shared.ConfigureDatabase(db, s.maxOpenConns, s.maxIdleConns)
	}
	return db, nil
}

// Init creates the collection file and its schema if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create collection directory: %w", err)
		}
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}
	return nil
}

// Insert adds a track, resolving key conflicts with the given policy.
func (s *Store) Insert(ctx context.Context, track *models.Track, onConflict ConflictPolicy) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	args, err := trackArgs(track)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, insertSQL(onConflict), args...); err != nil {
		return fmt.Errorf("failed to insert track %s: %w", track.YTID, err)
	}
	return nil
}

// InsertMany adds tracks in one transaction, resolving key conflicts with the
// given policy.
func (s *Store) InsertMany(ctx context.Context, tracks []models.Track, onConflict ConflictPolicy) error {
	if len(tracks) == 0 {
		return nil
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(onConflict))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range tracks {
		if err := tracks[i].Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		args, err := trackArgs(&tracks[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert track %s: %w", tracks[i].YTID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inserts: %w", err)
	}
	return nil
}

// Update applies a partial field update to the track with the given id.
// Change keys are column names; unknown columns are rejected.
func (s *Store) Update(ctx context.Context, ytID string, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}

	cols := make([]string, 0, len(changes))
	for col := range changes {
		if !filterableColumns[col] || col == "yt_id" {
			return fmt.Errorf("%w: cannot update column %q", shared.ErrInvalidArgument, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	setParts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		setParts = append(setParts, fmt.Sprintf("%s = ?", col))
		args = append(args, columnValue(changes[col]))
	}
	args = append(args, ytID)

	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	query := fmt.Sprintf("UPDATE tracks SET %s WHERE yt_id = ?", strings.Join(setParts, ", "))
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update track %s: %w", ytID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, ytID)
	}
	return nil
}

// Delete removes the track with the given id.
func (s *Store) Delete(ctx context.Context, ytID string) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "DELETE FROM tracks WHERE yt_id = ?", ytID); err != nil {
		return fmt.Errorf("failed to delete track %s: %w", ytID, err)
	}
	return nil
}

// DeleteMany removes all tracks with the given ids and returns how many rows
// were deleted.
func (s *Store) DeleteMany(ctx context.Context, ytIDs []string) (int, error) {
	if len(ytIDs) == 0 {
		return 0, nil
	}

	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ytIDs)), ", ")
	args := make([]any, len(ytIDs))
	for i, id := range ytIDs {
		args[i] = id
	}

	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM tracks WHERE yt_id IN (%s)", placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// Get retrieves a track by id. Returns an error wrapping
// [shared.ErrTrackNotFound] when absent.
func (s *Store) Get(ctx context.Context, ytID string) (*models.Track, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, selectSQL()+" WHERE yt_id = ?", ytID)
	track, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, ytID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return track, nil
}

// Exists reports whether a track with the given id is in the collection.
func (s *Store) Exists(ctx context.Context, ytID string) (bool, error) {
	db, err := s.open()
	if err != nil {
		return false, err
	}
	defer db.Close()

	var one int
	err = db.QueryRowContext(ctx, "SELECT 1 FROM tracks WHERE yt_id = ? LIMIT 1", ytID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check track %s: %w", ytID, err)
	}
	return true, nil
}

// GetRandom retrieves one random track matching the filter. Returns an error
// wrapping [shared.ErrTrackNotFound] when nothing matches.
func (s *Store) GetRandom(ctx context.Context, filter models.FilterModel) (*models.Track, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, selectSQL()+where+" ORDER BY RANDOM() LIMIT 1", args...)
	track, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: collection has no matching tracks", shared.ErrTrackNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return track, nil
}

// Count returns the number of tracks matching the filter.
func (s *Store) Count(ctx context.Context, filter models.FilterModel) (int, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return 0, err
	}

	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

// QueryPage returns the [startRow, endRow) window of tracks matching the
// filter in the given sort order.
func (s *Store) QueryPage(ctx context.Context, filter models.FilterModel, sortModel []models.SortItem, startRow, endRow int) ([]models.Track, error) {
	if endRow < startRow {
		return nil, fmt.Errorf("%w: row window [%d, %d)", shared.ErrInvalidArgument, startRow, endRow)
	}

	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}
	order, err := buildOrder(sortModel)
	if err != nil {
		return nil, err
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := selectSQL() + where + order + " LIMIT ? OFFSET ?"
	args = append(args, endRow-startRow, startRow)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, *track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// ImportFrom merges rows from another collection file into this one and
// returns the number of rows written.
//
// With preserveUserFields set, only metadata columns are copied and existing
// rows are left untouched, keeping local ratings, play counts and last-played
// dates. Otherwise every common column is copied and source rows replace
// local ones.
func (s *Store) ImportFrom(ctx context.Context, source string, columns []string, preserveUserFields bool) (int, error) {
	if columns == nil {
		columns = Columns()
	}
	if preserveUserFields {
		columns = intersect(columns, MetadataColumns())
	}

	db, err := s.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "ATTACH DATABASE ? AS source_db", source); err != nil {
		return 0, fmt.Errorf("failed to attach %s: %w", source, err)
	}
	defer db.ExecContext(ctx, "DETACH DATABASE source_db")

	targetCols, err := tableColumns(ctx, db, "main")
	if err != nil {
		return 0, err
	}
	sourceCols, err := tableColumns(ctx, db, "source_db")
	if err != nil {
		return 0, err
	}

	common := []string{}
	for _, col := range columns {
		if targetCols[col] && sourceCols[col] {
			common = append(common, col)
		}
	}
	if len(common) == 0 {
		return 0, fmt.Errorf("%w: no common columns with %s", shared.ErrImportSource, source)
	}

	policy := ConflictReplace
	if preserveUserFields {
		policy = ConflictIgnore
	}

	colNames := strings.Join(common, ", ")
	query := fmt.Sprintf(
		"INSERT OR %s INTO main.tracks (%s) SELECT %s FROM source_db.tracks",
		policy, colNames, colNames,
	)

	result, err := db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to import tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

func insertSQL(onConflict ConflictPolicy) string {
	cols := Columns()
	return fmt.Sprintf(
		"INSERT OR %s INTO tracks (%s) VALUES (%s)",
		onConflict,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
}

func selectSQL() string {
	return "SELECT " + strings.Join(Columns(), ", ") + " FROM tracks"
}

func intersect(a, b []string) []string {
	inB := map[string]bool{}
	for _, s := range b {
		inB[s] = true
	}
	out := []string{}
	for _, s := range a {
		if inB[s] {
			out = append(out, s)
		}
	}
	return out
}
