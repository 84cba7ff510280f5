// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/stereo/internal/discovery"
	"github.com/desertthunder/stereo/internal/models"
	"github.com/desertthunder/stereo/internal/shared"
)

// FakeStream yields a fixed track list, then a terminal error (io.EOF by
// default). A test double for [discovery.Stream].
type FakeStream struct {
	Tracks []models.Track
	Err    error
	pos    int
}

func (f *FakeStream) Next(ctx context.Context) (*models.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.pos >= len(f.Tracks) {
		if f.Err != nil {
			return nil, f.Err
		}
		return nil, io.EOF
	}
	track := f.Tracks[f.pos]
	f.pos++
	return &track, nil
}

// FakeProvider serves canned results for every search kind. A test double
// for [discovery.Provider].
type FakeProvider struct {
	Results   []models.Track
	StreamErr error
	Found     *models.Track
	FindErr   error
}

func (f *FakeProvider) SearchFuzzy(query string, limit int) discovery.Stream {
	return f.stream(limit)
}

func (f *FakeProvider) SearchByArtist(query string, limit int) discovery.Stream {
	return f.stream(limit)
}

func (f *FakeProvider) SearchByLabel(query string, limit int) discovery.Stream {
	return f.stream(limit)
}

func (f *FakeProvider) FindTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	if f.Found == nil {
		return nil, shared.ErrNoMatch
	}
	return f.Found, nil
}

func (f *FakeProvider) stream(limit int) *FakeStream {
	tracks := f.Results
	if limit > 0 && limit < len(tracks) {
		tracks = tracks[:limit]
	}
	return &FakeStream{Tracks: tracks, Err: f.StreamErr}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
