// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/stat-grid/cliparse"
	"github.com/danielhkuo/stat-grid/grid"
	"github.com/danielhkuo/stat-grid/logfields"
	"github.com/danielhkuo/stat-grid/metrics"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("session registry closed")

// evictTimeout bounds how long an evicted session may spend delivering
// its pending patches.
const evictTimeout = 10 * time.Second

// Key identifies one grid view. A browser session may hold many views,
// one per open page.
type Key struct {
	Session string
	View    string
}

// Factory builds the store for a new view.
type Factory func(key Key) *grid.Store

// API is the stats service as the grid uses it.
type API interface {
	grid.Fetcher
	grid.Patcher
}

// NewFactory returns a Factory whose stores read and write through api
// with the page size and edit debounce of cfg. Each store logs with its
// session and view ids attached.
func NewFactory(api API, cfg cliparse.Config, recorder metrics.Recorder, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(key Key) *grid.Store {
		l := logger.With(logfields.Session(key.Session), logfields.View(key.View))
		w := grid.NewWriter(api, cfg.EditDebounce, recorder, l)
		return grid.NewStore(api, w, grid.StoreOptions{
			PageSize: cfg.PageSize,
			Recorder: recorder,
			Logger:   l,
		})
	}
}

type entry struct {
	key   Key
	store *grid.Store
}

// Registry maps views to grid stores. It holds at most limit views and
// evicts the least recently used one to make room.
type Registry struct {
	factory  Factory
	limit    int
	recorder metrics.Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	entries  map[Key]*list.Element
	order    *list.List // front is most recently used
	closed   bool
	evicting sync.WaitGroup
}

// NewRegistry returns an empty registry. A limit below 1 means 1.
func NewRegistry(factory Factory, limit int, recorder metrics.Recorder, logger *slog.Logger) *Registry {
	if limit < 1 {
		limit = 1
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factory:  factory,
		limit:    limit,
		recorder: recorder,
		logger:   logger,
		entries:  map[Key]*list.Element{},
		order:    list.New(),
	}
}

// Get returns the store of view key, creating it when the key is unknown.
// created reports whether the store is new.
func (r *Registry) Get(key Key) (store *grid.Store, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, ErrClosed
	}

	if el, ok := r.entries[key]; ok {
		r.order.MoveToFront(el)
		return el.Value.(*entry).store, false, nil
	}

	for r.order.Len() >= r.limit {
		r.evictLocked(r.order.Back())
	}

	store = r.factory(key)
	r.entries[key] = r.order.PushFront(&entry{key: key, store: store})
	r.recorder.SetActiveSessions(r.order.Len())
	r.logger.Debug("view opened", logfields.Session(key.Session), logfields.View(key.View))
	return store, true, nil
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// Close closes every store concurrently and waits for them, and for
// earlier evictions, until ctx is done.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stores := make([]*grid.Store, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		stores = append(stores, el.Value.(*entry).store)
	}
	r.entries = map[Key]*list.Element{}
	r.order.Init()
	r.recorder.SetActiveSessions(0)
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range stores {
		g.Go(func() error { return s.Close(gctx) })
	}
	g.Go(func() error {
		done := make(chan struct{})
		go func() {
			r.evicting.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	return g.Wait()
}

func (r *Registry) evictLocked(el *list.Element) {
	e := r.order.Remove(el).(*entry)
	delete(r.entries, e.key)
	r.logger.Debug("view evicted", logfields.Session(e.key.Session), logfields.View(e.key.View))

	r.evicting.Add(1)
	go func() {
		defer r.evicting.Done()
		ctx, cancel := context.WithTimeout(context.Background(), evictTimeout)
		defer cancel()
		if err := e.store.Close(ctx); err != nil {
			r.logger.Warn("evicted view did not close cleanly",
				logfields.Session(e.key.Session),
				logfields.View(e.key.View),
				logfields.Error(err),
			)
		}
	}()
}
