// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package grid

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/stat-grid/logfields"
	"github.com/danielhkuo/stat-grid/metrics"
	"github.com/danielhkuo/stat-grid/models"
)

// Patcher sends single-field updates to the stats service.
type Patcher interface {
	PatchStateStat(ctx context.Context, req models.PatchRequest) error
}

type cellKey struct {
	state, date, field string
}

type pendingPatch struct {
	req   models.PatchRequest
	timer *time.Timer
}

// Writer delivers patches fire-and-forget. Failures are logged at debug
// level and dropped: there is no retry and nothing is reported back.
//
// With a zero debounce every Submit is sent. With a positive debounce,
// edits of the same cell arriving within the window collapse into one
// patch carrying the last value.
type Writer struct {
	patcher  Patcher
	debounce time.Duration
	recorder metrics.Recorder
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[cellKey]*pendingPatch
	closed  bool
}

// NewWriter returns a Writer sending through p.
func NewWriter(p Patcher, debounce time.Duration, recorder metrics.Recorder, logger *slog.Logger) *Writer {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Writer{
		patcher:  p,
		debounce: debounce,
		recorder: recorder,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		pending:  map[cellKey]*pendingPatch{},
	}
}

// Submit queues req for delivery and returns immediately.
func (w *Writer) Submit(req models.PatchRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.debounce <= 0 {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.send(req)
		}()
		return
	}

	key := cellKey{req.State, req.Date, req.Field}
	if p, ok := w.pending[key]; ok {
		w.recorder.IncPatchCoalesced()
		if p.timer.Stop() {
			p.req = req
			p.timer.Reset(w.debounce)
			return
		}
		// p's timer already fired; fire drops p once it sees the newer entry
	}

	p := &pendingPatch{req: req}
	w.wg.Add(1)
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(key, p) })
	w.pending[key] = p
}

func (w *Writer) fire(key cellKey, p *pendingPatch) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pending[key] != p {
		w.mu.Unlock()
		return
	}
	delete(w.pending, key)
	req := p.req
	w.mu.Unlock()

	w.send(req)
}

// Flush sends every pending debounced patch now.
func (w *Writer) Flush() {
	w.mu.Lock()
	var due []models.PatchRequest
	for key, p := range w.pending {
		if p.timer.Stop() {
			delete(w.pending, key)
			due = append(due, p.req)
		}
	}
	w.mu.Unlock()

	for _, req := range due {
		go func() {
			defer w.wg.Done()
			w.send(req)
		}()
	}
}

// Close flushes pending patches and waits for deliveries until ctx is done,
// then abandons whatever is still in flight.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.Flush()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	defer w.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) send(req models.PatchRequest) {
	err := w.patcher.PatchStateStat(w.ctx, req)
	w.recorder.IncPatchResult(err == nil)
	if err != nil {
		w.logger.Debug("cell patch dropped",
			logfields.State(req.State),
			logfields.Date(req.Date),
			logfields.Field(req.Field),
			logfields.Error(err),
		)
	}
}
