package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// loadTimeout bounds each snapshot reload triggered by a change
const loadTimeout = 10 * time.Second

// loader reads the full content of a collection
type loader func(ctx context.Context, collection string) ([]Document, error)

// hub fans change notifications out to the watchers of each collection.
// Each watcher owns a goroutine; a change marks it dirty and the goroutine
// reloads and delivers, so a burst of writes costs at most one extra reload.
type hub struct {
	mu       sync.Mutex
	nextID   uint64
	watchers map[string]map[uint64]*watcher
	load     loader
	logger   *zap.Logger
	closed   bool
}

type watcher struct {
	id         uint64
	collection string
	fn         func(Snapshot)
	dirty      chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func newHub(load loader, logger *zap.Logger) *hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hub{
		watchers: make(map[string]map[uint64]*watcher),
		load:     load,
		logger:   logger,
	}
}

// watch registers fn, delivers the initial snapshot on the caller's goroutine
// and starts the delivery loop for later changes
func (h *hub) watch(ctx context.Context, collection string, fn func(Snapshot)) (shared.Subscription, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	w := &watcher{
		collection: collection,
		fn:         fn,
		dirty:      make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, shared.ErrUnavailable.WithCause(errStoreClosed)
	}
	h.nextID++
	w.id = h.nextID
	if h.watchers[collection] == nil {
		h.watchers[collection] = make(map[uint64]*watcher)
	}
	h.watchers[collection][w.id] = w
	h.mu.Unlock()

	// Registered before the first load, so a write racing with it marks the
	// watcher dirty and is picked up by the loop.
	docs, err := h.load(ctx, collection)
	if err != nil {
		h.remove(w)
		return nil, err
	}
	fn(Snapshot{Collection: collection, Docs: docs})

	go h.run(context.WithoutCancel(ctx), w)

	return shared.SubscriptionFunc(func() error {
		h.remove(w)
		return nil
	}), nil
}

func (h *hub) run(ctx context.Context, w *watcher) {
	for {
		select {
		case <-w.done:
			return
		case <-w.dirty:
		}

		loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
		docs, err := h.load(loadCtx, w.collection)
		cancel()
		if err != nil {
			h.logger.Warn("Failed to reload watched collection",
				zap.String("collection", w.collection),
				zap.Error(err),
			)
			continue
		}

		select {
		case <-w.done:
			return
		default:
		}
		w.fn(Snapshot{Collection: w.collection, Docs: docs})
	}
}

// notify marks every watcher of collection dirty
func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.watchers[collection] {
		select {
		case w.dirty <- struct{}{}:
		default:
		}
	}
}

func (h *hub) remove(w *watcher) {
	h.mu.Lock()
	if set, ok := h.watchers[w.collection]; ok {
		delete(set, w.id)
		if len(set) == 0 {
			delete(h.watchers, w.collection)
		}
	}
	h.mu.Unlock()
	w.closeOnce.Do(func() { close(w.done) })
}

// count returns the number of open watchers on collection
func (h *hub) count(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[collection])
}

// close stops every watcher and rejects new ones
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	var all []*watcher
	for _, set := range h.watchers {
		for _, w := range set {
			all = append(all, w)
		}
	}
	h.watchers = make(map[string]map[uint64]*watcher)
	h.mu.Unlock()

	for _, w := range all {
		w.closeOnce.Do(func() { close(w.done) })
	}
}
