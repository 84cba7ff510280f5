package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stereo/internal/discovery"
	"github.com/desertthunder/stereo/internal/envelope"
)

// Supervisor runs at most one discovery search per session.
//
// Starting a search cancels and awaits the previous one, so result streams
// for different query ids never interleave. Every job emits exactly one
// search-complete event for its query id, whether it drained, failed or was
// cancelled.
type Supervisor struct {
	provider discovery.Provider
	emit     func(ctx context.Context, event envelope.Event) error
	logger   *log.Logger

	mu      sync.Mutex
	current *searchJob
}

type searchJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSupervisor creates a search supervisor delivering events through emit.
func NewSupervisor(provider discovery.Provider, emit func(ctx context.Context, event envelope.Event) error, logger *log.Logger) *Supervisor {
	return &Supervisor{provider: provider, emit: emit, logger: logger}
}

// Start launches a search, superseding any running one. The job's lifetime
// is bounded by ctx.
func (s *Supervisor) Start(ctx context.Context, cmd *envelope.Search) {
	jobCtx, cancel := context.WithCancel(ctx)
	job := &searchJob{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.current
	s.current = job
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	go s.run(ctx, jobCtx, job, cmd)
}

// CancelAll stops the running search, if any, and waits for its completion
// event to be queued.
func (s *Supervisor) CancelAll() {
	s.mu.Lock()
	job := s.current
	s.current = nil
	s.mu.Unlock()

	if job != nil {
		job.cancel()
		<-job.done
	}
}

func (s *Supervisor) run(sessionCtx, jobCtx context.Context, job *searchJob, cmd *envelope.Search) {
	defer close(job.done)
	defer job.cancel()

	// The completion event rides the session context, not the job context,
	// so cancelled jobs still resolve their query id.
	defer func() {
		if err := s.emit(sessionCtx, envelope.NewSearchComplete(cmd.QueryID)); err != nil {
			s.logger.Debug("search completion dropped", "query_id", cmd.QueryID, "error", err)
		}
	}()

	var stream discovery.Stream
	switch cmd.Kind {
	case envelope.SearchKindByArtist:
		stream = s.provider.SearchByArtist(cmd.Query, cmd.Limit)
	case envelope.SearchKindByLabel:
		stream = s.provider.SearchByLabel(cmd.Query, cmd.Limit)
	default:
		stream = s.provider.SearchFuzzy(cmd.Query, cmd.Limit)
	}

	for {
		track, err := stream.Next(jobCtx)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if jobCtx.Err() != nil {
				return
			}
			s.logger.Warn("search failed", "query_id", cmd.QueryID, "error", err)
			notice := envelope.NewNotification("search failed: "+err.Error(), envelope.SeverityError)
			if err := s.emit(sessionCtx, notice); err != nil {
				s.logger.Debug("search failure notice dropped", "query_id", cmd.QueryID, "error", err)
			}
			return
		}

		if err := s.emit(jobCtx, envelope.NewSearchResult(cmd.QueryID, *track)); err != nil {
			return
		}
	}
}
