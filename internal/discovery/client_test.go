package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/stereo/internal/shared"
)

// newTestClient spins up a fake proxy serving canned catalog pages and video
// lookups, keyed by query parameters.
func newTestClient(t *testing.T, tracks []map[string]any, videoIDs map[string]string) (*Client, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/catalog/tracks/search", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		body := map[string]any{"tracks": []map[string]any{}}
		if page == "1" {
			body["tracks"] = tracks
		}
		json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("/api/video/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(map[string]string{"video_id": videoIDs[q]})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(shared.DiscoveryConfig{
		CatalogBaseURL:    server.URL,
		VideoBaseURL:      server.URL,
		RequestsPerSecond: 1000,
	})
	return client, server
}

func catalogEntry(id int, name, artist string) map[string]any {
	return map[string]any{
		"id":      id,
		"name":    name,
		"artists": []map[string]any{{"id": 1, "name": artist}},
	}
}

func TestClientSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("StreamsResolvedTracks", func(t *testing.T) {
		tracks := []map[string]any{
			catalogEntry(10, "First", "Artist A"),
			catalogEntry(11, "Second", "Artist B"),
		}
		videos := map[string]string{
			"Artist A First":  "vidA",
			"Artist B Second": "vidB",
		}
		client, _ := newTestClient(t, tracks, videos)

		stream := client.SearchFuzzy("anything", 0)

		first, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("failed to get first result: %v", err)
		}
		if first.YTID != "vidA" || first.Title != "First" {
			t.Errorf("unexpected first result: %+v", first)
		}
		if first.BPID == nil || *first.BPID != 10 {
			t.Errorf("expected bp_id 10, got %v", first.BPID)
		}

		second, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("failed to get second result: %v", err)
		}
		if second.YTID != "vidB" {
			t.Errorf("unexpected second result: %+v", second)
		}

		if _, err := stream.Next(ctx); err != io.EOF {
			t.Errorf("expected io.EOF at end of results, got %v", err)
		}
	})

	t.Run("HonorsLimit", func(t *testing.T) {
		tracks := []map[string]any{
			catalogEntry(10, "First", "Artist A"),
			catalogEntry(11, "Second", "Artist B"),
		}
		videos := map[string]string{
			"Artist A First":  "vidA",
			"Artist B Second": "vidB",
		}
		client, _ := newTestClient(t, tracks, videos)

		stream := client.SearchFuzzy("anything", 1)
		if _, err := stream.Next(ctx); err != nil {
			t.Fatalf("failed to get result: %v", err)
		}
		if _, err := stream.Next(ctx); err != io.EOF {
			t.Errorf("expected io.EOF after limit, got %v", err)
		}
	})

	t.Run("SkipsTracksWithoutVideo", func(t *testing.T) {
		tracks := []map[string]any{
			catalogEntry(10, "Obscure", "Artist A"),
			catalogEntry(11, "Popular", "Artist B"),
		}
		videos := map[string]string{
			"Artist B Popular": "vidB",
		}
		client, _ := newTestClient(t, tracks, videos)

		stream := client.SearchFuzzy("anything", 0)
		track, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("failed to get result: %v", err)
		}
		if track.YTID != "vidB" {
			t.Errorf("expected unresolvable track skipped, got %+v", track)
		}
	})

	t.Run("UpstreamErrorStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail": "rate limited"}`, http.StatusTooManyRequests)
		}))
		t.Cleanup(server.Close)

		client := NewClient(shared.DiscoveryConfig{
			CatalogBaseURL:    server.URL,
			VideoBaseURL:      server.URL,
			RequestsPerSecond: 1000,
		})

		_, err := client.SearchFuzzy("anything", 0).Next(ctx)
		if !errors.Is(err, shared.ErrProviderRequest) {
			t.Errorf("expected ErrProviderRequest, got %v", err)
		}
	})

	t.Run("UnreachableUpstream", func(t *testing.T) {
		client := NewClient(shared.DiscoveryConfig{
			CatalogBaseURL:    "http://127.0.0.1:1",
			VideoBaseURL:      "http://127.0.0.1:1",
			RequestsPerSecond: 1000,
		})

		_, err := client.SearchFuzzy("anything", 0).Next(ctx)
		if !errors.Is(err, shared.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})
}

func TestFindTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsBestMatch", func(t *testing.T) {
		tracks := []map[string]any{catalogEntry(10, "Target", "Artist A")}
		videos := map[string]string{"Artist A Target": "vidT"}
		client, _ := newTestClient(t, tracks, videos)

		track, err := client.FindTrack(ctx, "Target", "Artist A")
		if err != nil {
			t.Fatalf("failed to find track: %v", err)
		}
		if track.YTID != "vidT" {
			t.Errorf("unexpected match: %+v", track)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		client, _ := newTestClient(t, nil, nil)

		_, err := client.FindTrack(ctx, "Nothing", "Nobody")
		if !errors.Is(err, shared.ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
	})
}
