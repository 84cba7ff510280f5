// Package discovery finds track metadata in external catalogs.
//
// Results come back as pull streams so callers control pacing and can stop
// early without draining the provider. Network access goes through JSON
// proxy endpoints: one for catalog metadata, one for resolving playable
// video ids.
package discovery

import (
	"context"

	"github.com/desertthunder/stereo/internal/models"
)

// Stream yields discovery matches one at a time. Next returns [io.EOF] when
// the result set is exhausted; any other error ends the stream.
type Stream interface {
	Next(ctx context.Context) (*models.Track, error)
}

// Provider runs catalog searches. Implementations must be safe for
// concurrent use; each returned stream is single-consumer.
type Provider interface {
	// SearchFuzzy matches the query against titles, artists and remixers.
	SearchFuzzy(query string, limit int) Stream

	// SearchByArtist returns tracks credited to artists matching the query.
	SearchByArtist(query string, limit int) Stream

	// SearchByLabel returns tracks released on labels matching the query.
	SearchByLabel(query string, limit int) Stream

	// FindTrack returns the single best match for a title/artist pair, or
	// [shared.ErrNoMatch] when the catalog has nothing suitable.
	FindTrack(ctx context.Context, title, artist string) (*models.Track, error)
}
