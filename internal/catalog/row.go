package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/stereo/internal/models"
)

// trackArgs converts a track to SQL arguments in [Columns] order. The artist
// list is stored as a JSON string and dates as ISO-8601 strings, matching the
// wire representation.
func trackArgs(t *models.Track) ([]any, error) {
	artists, err := json.Marshal(t.Artists)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artists for %s: %w", t.YTID, err)
	}

	return []any{
		t.YTID,
		numericIDValue(t.BPID),
		stringValue(t.MBID),
		t.Title,
		stringValue(t.MixName),
		string(artists),
		dateValue(t.ReleaseDate),
		stringValue(t.Label),
		stringValue(t.Album),
		intValue(t.Length),
		intValue(t.BPM),
		stringValue(t.Genre),
		stringValue(t.Key),
		stringValue(t.Mood),
		intValue(t.Rating),
		t.PlayCount,
		dateValue(t.LastPlayed),
	}, nil
}

// scanner abstracts [sql.Row] and [sql.Rows] for track scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrack reads one row selected via [selectSQL] into a track.
func scanTrack(row scanner) (*models.Track, error) {
	var (
		ytID        string
		bpID        sql.NullInt64
		mbID        sql.NullString
		title       string
		mixName     sql.NullString
		artists     string
		releaseDate sql.NullString
		label       sql.NullString
		album       sql.NullString
		length      sql.NullInt64
		bpm         sql.NullInt64
		genre       sql.NullString
		key         sql.NullString
		mood        sql.NullString
		rating      sql.NullInt64
		playCount   sql.NullInt64
		lastPlayed  sql.NullString
	)

	err := row.Scan(
		&ytID, &bpID, &mbID, &title, &mixName, &artists, &releaseDate,
		&label, &album, &length, &bpm, &genre, &key, &mood,
		&rating, &playCount, &lastPlayed,
	)
	if err != nil {
		return nil, err
	}

	track := &models.Track{
		YTID:      ytID,
		Title:     title,
		MixName:   nullString(mixName),
		MBID:      nullString(mbID),
		Label:     nullString(label),
		Album:     nullString(album),
		Genre:     nullString(genre),
		Key:       nullString(key),
		Mood:      nullString(mood),
		Length:    nullInt(length),
		BPM:       nullInt(bpm),
		Rating:    nullInt(rating),
		PlayCount: int(playCount.Int64),
	}

	if err := json.Unmarshal([]byte(artists), &track.Artists); err != nil {
		return nil, fmt.Errorf("failed to decode artists for %s: %w", ytID, err)
	}

	if bpID.Valid {
		id := models.NumericID(bpID.Int64)
		track.BPID = &id
	}
	if track.ReleaseDate, err = nullDate(releaseDate); err != nil {
		return nil, err
	}
	if track.LastPlayed, err = nullDate(lastPlayed); err != nil {
		return nil, err
	}

	return track, nil
}

// columnValue converts change-set values to SQL arguments, giving slices and
// dates the same storage form as inserts.
func columnValue(v any) any {
	switch val := v.(type) {
	case []string:
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(encoded)
	case models.Date:
		return val.String()
	case *models.Date:
		if val == nil {
			return nil
		}
		return val.String()
	case models.NumericID:
		return int64(val)
	default:
		return v
	}
}

func stringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intValue(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func dateValue(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func numericIDValue(n *models.NumericID) any {
	if n == nil {
		return nil
	}
	return int64(*n)
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}

func nullDate(s sql.NullString) (*models.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
