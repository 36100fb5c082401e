// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package grid

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/stat-grid/logfields"
	"github.com/danielhkuo/stat-grid/metrics"
	"github.com/danielhkuo/stat-grid/models"
)

// Fetcher reads one page of records from the stats service.
type Fetcher interface {
	ListStateStats(ctx context.Context, req models.PageRequest) ([]models.Record, error)
}

// Store owns one grid State. Dispatch is safe for concurrent use.
//
// Page reads run as cancellable tasks tagged with a generation number:
// starting a read cancels the one in flight, and a response whose
// generation is no longer current is discarded, so a slow earlier read can
// never overwrite a newer page.
type Store struct {
	fetcher  Fetcher
	writer   *Writer
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu          sync.Mutex
	state       State
	cancelFetch context.CancelFunc
	changed     chan struct{}
	closed      bool
}

// StoreOptions configures NewStore. Zero values pick defaults.
type StoreOptions struct {
	PageSize string
	Recorder metrics.Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewStore returns a store in its initial state. No read is issued until
// the first Dispatch. The store takes ownership of w and closes it in Close.
func NewStore(f Fetcher, w *Writer, opts StoreOptions) *Store {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Store{
		fetcher:  f,
		writer:   w,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
		ctx:      ctx,
		stop:     stop,
		state:    Initial(opts.PageSize),
		changed:  make(chan struct{}),
	}
}

// Dispatch applies a and starts whatever work it calls for. It returns the
// resulting snapshot without waiting for that work.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.state.Snapshot()
	}

	next, eff := Reduce(s.state, a)
	s.setLocked(next)

	switch eff := eff.(type) {
	case Fetch:
		s.startFetchLocked(eff)
	case Patch:
		if s.writer != nil {
			s.writer.Submit(eff.Request)
		}
	}
	return s.state.Snapshot()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Wait blocks until read generation is no longer pending: it completed,
// failed, or was superseded. It returns ctx.Err() if ctx ends first.
func (s *Store) Wait(ctx context.Context, generation uint64) error {
	for {
		s.mu.Lock()
		settled := s.closed || !s.state.Fetching || s.state.Generation != generation
		ch := s.changed
		s.mu.Unlock()

		if settled {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels outstanding reads, waits for them to return, then closes
// the store's Writer, which delivers pending patches until ctx ends.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.stop()
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	s.wg.Wait()

	if s.writer == nil {
		return nil
	}
	return s.writer.Close(ctx)
}

// setLocked installs next and wakes waiters. Callers hold s.mu.
func (s *Store) setLocked(next State) {
	s.state = next
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Store) startFetchLocked(f Fetch) {
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.fetch(ctx, f)
	}()
}

func (s *Store) fetch(ctx context.Context, f Fetch) {
	start := s.now()
	records, err := s.fetcher.ListStateStats(ctx, f.Request)
	s.recorder.ObserveFetchDuration(s.now().Sub(start))

	s.mu.Lock()
	defer s.mu.Unlock()

	current := !s.closed && f.Generation == s.state.Generation

	switch {
	case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
		s.recorder.IncFetchOutcome(metrics.FetchCanceled)
	case err != nil:
		s.recorder.IncFetchOutcome(metrics.FetchError)
		s.logger.Error("failed to fetch state stats",
			logfields.Generation(f.Generation),
			logfields.Page(f.Request.Page),
			logfields.PageSize(f.Request.PageSize),
			logfields.Error(err),
		)
	case !current:
		s.recorder.IncFetchOutcome(metrics.FetchStale)
		s.logger.Debug("discarding stale state stats",
			logfields.Generation(f.Generation),
			logfields.Page(f.Request.Page),
		)
	default:
		s.recorder.IncFetchOutcome(metrics.FetchOK)
		s.logger.Debug("fetched state stats",
			logfields.Generation(f.Generation),
			logfields.Page(f.Request.Page),
			logfields.PageSize(f.Request.PageSize),
			logfields.Rows(len(records)),
		)
	}

	if s.closed {
		return
	}

	var next State
	if err != nil {
		next, _ = Reduce(s.state, LoadFailed{Generation: f.Generation, Err: err})
	} else {
		next, _ = Reduce(s.state, Loaded{Generation: f.Generation, Records: records, At: s.now()})
	}
	s.setLocked(next)
}
