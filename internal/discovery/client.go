package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

const (
	defaultCatalogBaseURL = "http://localhost:8080"
	defaultVideoBaseURL   = "http://localhost:8080"
	defaultRPS            = 4.0
	pageSize              = 25
)

// Client implements [Provider] against the catalog and video proxy servers.
//
// Every outbound request passes through a shared rate limiter so concurrent
// sessions cannot stampede the upstream services.
type Client struct {
	catalogBaseURL string
	videoBaseURL   string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewClient creates a discovery client from configuration, filling empty
// fields with defaults.
func NewClient(cfg shared.DiscoveryConfig) *Client {
	catalogURL := cfg.CatalogBaseURL
	if catalogURL == "" {
		catalogURL = defaultCatalogBaseURL
	}
	videoURL := cfg.VideoBaseURL
	if videoURL == "" {
		videoURL = defaultVideoBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		catalogBaseURL: strings.TrimSuffix(catalogURL, "/"),
		videoBaseURL:   strings.TrimSuffix(videoURL, "/"),
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SearchFuzzy matches the query against titles, artists and remixers.
func (c *Client) SearchFuzzy(query string, limit int) Stream {
	return c.newStream(url.Values{"q": {query}}, limit)
}

// SearchByArtist returns tracks credited to artists matching the query.
func (c *Client) SearchByArtist(query string, limit int) Stream {
	return c.newStream(url.Values{"artist": {query}}, limit)
}

// SearchByLabel returns tracks released on labels matching the query.
func (c *Client) SearchByLabel(query string, limit int) Stream {
	return c.newStream(url.Values{"label": {query}}, limit)
}

// FindTrack returns the single best match for a title/artist pair.
//
// The catalog is queried with both terms joined; the first result that
// resolves to a playable video id wins.
func (c *Client) FindTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	query := strings.TrimSpace(artist + " " + title)
	stream := c.newStream(url.Values{"q": {query}}, 1)

	track, err := stream.Next(ctx)
	if err == io.EOF {
		return nil, fmt.Errorf("no catalog match for %q: %w", query, shared.ErrNoMatch)
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (c *Client) newStream(params url.Values, limit int) *trackStream {
	return &trackStream{client: c, params: params, limit: limit, page: 1}
}

// doRequest performs a rate-limited GET and decodes the JSON body into
// result. Transport failures map to [shared.ErrProviderUnavailable], non-2xx
// statuses to [shared.ErrProviderRequest].
func (c *Client) doRequest(ctx context.Context, apiURL string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrProviderRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrProviderRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// searchPage fetches one page of catalog matches.
func (c *Client) searchPage(ctx context.Context, params url.Values, page int) ([]catalogTrack, error) {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("per_page", fmt.Sprintf("%d", pageSize))

	var body struct {
		Tracks []catalogTrack `json:"tracks"`
	}
	apiURL := c.catalogBaseURL + "/api/catalog/tracks/search?" + query.Encode()
	if err := c.doRequest(ctx, apiURL, &body); err != nil {
		return nil, err
	}
	return body.Tracks, nil
}

// resolveVideoID finds the playable video id for a catalog track. An empty
// id means the video service had no match.
func (c *Client) resolveVideoID(ctx context.Context, track *models.Track) (string, error) {
	terms := append([]string{}, track.Artists...)
	terms = append(terms, track.Title)
	if track.MixName != nil && *track.MixName != "" {
		terms = append(terms, *track.MixName)
	}

	query := url.Values{"q": {strings.Join(terms, " ")}}
	var body struct {
		VideoID string `json:"video_id"`
	}
	apiURL := c.videoBaseURL + "/api/video/search?" + query.Encode()
	if err := c.doRequest(ctx, apiURL, &body); err != nil {
		return "", err
	}
	return body.VideoID, nil
}

// trackStream pages through catalog results lazily, resolving a video id
// for each match before yielding it. Matches without a playable video are
// skipped.
type trackStream struct {
	client  *Client
	params  url.Values
	limit   int
	page    int
	yielded int
	buf     []catalogTrack
	done    bool
}

func (s *trackStream) Next(ctx context.Context) (*models.Track, error) {
	for {
		if s.limit > 0 && s.yielded >= s.limit {
			return nil, io.EOF
		}

		if len(s.buf) == 0 {
			if s.done {
				return nil, io.EOF
			}
			page, err := s.client.searchPage(ctx, s.params, s.page)
			if err != nil {
				return nil, err
			}
			s.page++
			if len(page) < pageSize {
				s.done = true
			}
			if len(page) == 0 {
				return nil, io.EOF
			}
			s.buf = page
		}

		next := s.buf[0]
		s.buf = s.buf[1:]

		track := next.toTrack()
		videoID, err := s.client.resolveVideoID(ctx, track)
		if err != nil {
			return nil, err
		}
		if videoID == "" {
			continue
		}
		track.YTID = videoID

		s.yielded++
		return track, nil
	}
}
