package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const keyUsers = "users"

func userKey(userID string) string {
	return keyUsers + "/" + userID
}

func archiveKey(kind order.ArchiveKind) string {
	return "archive/" + string(kind)
}

func archiveEntryKey(kind order.ArchiveKind, orderID string) string {
	return string(kind) + "/" + orderID
}

func ownedKey(userID, orderID string) string {
	return userID + "/" + orderID
}

// ErrAggregatorStarted is returned by a second call to Start
var ErrAggregatorStarted = errors.New("order aggregator already started")

// Aggregator merges the live orders of every customer and both archives into
// one list that is kept current by the store's change notifications.
//
// Live orders are held in one partition per customer; every delivery for a
// customer replaces that partition as a whole. Archive entries only accumulate
// and are deduplicated by archive kind and order id. An archived order hides
// the live order of the same customer with the same id, so an interrupted
// archive never shows one order twice.
//
// Listeners receive snapshots one delivery at a time, in the order the
// changes were applied.
type Aggregator struct {
	feed   order.Feed
	logger *zap.Logger
	tree   *shared.SubscriptionTree

	// emitMu serializes snapshot and delivery so a listener never sees an
	// older snapshot after a newer one
	emitMu sync.Mutex

	mu         sync.Mutex
	ctx        context.Context
	started    bool
	closed     bool
	owners     map[string]order.Owner
	watchGen   map[string]uint64
	gen        uint64
	partitions map[string][]order.Order
	archived   map[string]order.ArchivedOrder
	archiveIDs []string
	listeners  map[uint64]func([]OrderView)
	nextID     uint64
}

// NewAggregator creates an aggregator over feed. Call Start to open the queries.
func NewAggregator(feed order.Feed, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		feed:       feed,
		logger:     logger,
		tree:       shared.NewSubscriptionTree(),
		owners:     make(map[string]order.Owner),
		watchGen:   make(map[string]uint64),
		partitions: make(map[string][]order.Order),
		archived:   make(map[string]order.ArchivedOrder),
		listeners:  make(map[uint64]func([]OrderView)),
	}
}

// Start opens the archive queries and the customer query. Each customer that
// appears gets its own order query; it is released when the customer disappears.
func (a *Aggregator) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return ErrAggregatorStarted
	}
	a.started = true
	a.ctx = context.WithoutCancel(ctx)
	a.mu.Unlock()

	for _, kind := range order.ArchiveKinds() {
		sub, err := a.feed.WatchArchive(ctx, kind, a.onArchive)
		if err != nil {
			_ = a.Close()
			return fmt.Errorf("watch %s archive: %w", kind, err)
		}
		if err := a.tree.Attach("", archiveKey(kind), sub); err != nil {
			return err
		}
	}

	// The customer node exists before the query opens, because the initial
	// delivery already attaches per-customer queries below it.
	owners := &deferredSubscription{}
	if err := a.tree.Attach("", keyUsers, owners); err != nil {
		return err
	}
	sub, err := a.feed.WatchOwners(ctx, a.onOwners)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("watch customers: %w", err)
	}
	if err := owners.set(sub); err != nil {
		a.logger.Warn("Failed to close customer query", zap.Error(err))
	}

	a.logger.Info("Order aggregator started",
		zap.Int("customers", len(a.tree.Children(keyUsers))),
	)
	return nil
}

// Close releases every query and drops all listeners
func (a *Aggregator) Close() error {
	a.mu.Lock()
	a.closed = true
	a.listeners = make(map[uint64]func([]OrderView))
	a.mu.Unlock()
	return a.tree.Close()
}

// Listen registers fn to receive the merged list after every change. fn is
// called once with the current list before Listen returns. The returned
// function unregisters fn.
func (a *Aggregator) Listen(fn func([]OrderView)) (cancel func()) {
	a.emitMu.Lock()
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.emitMu.Unlock()
		return func() {}
	}
	a.nextID++
	id := a.nextID
	a.listeners[id] = fn
	current := a.snapshotLocked()
	a.mu.Unlock()

	fn(current)
	a.emitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

// Snapshot returns the current merged list. Order is unspecified.
func (a *Aggregator) Snapshot() []OrderView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Counts returns the number of live and archived orders in the merged list
func (a *Aggregator) Counts() (live, archived int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	shadowed := a.shadowedLocked()
	for userID, orders := range a.partitions {
		for i := range orders {
			if !shadowed[ownedKey(userID, orders[i].ID)] {
				live++
			}
		}
	}
	return live, len(a.archived)
}

// Total returns live plus archived orders
func (a *Aggregator) Total() int {
	live, archived := a.Counts()
	return live + archived
}

// Watching returns the ids of the customers whose order query is open
func (a *Aggregator) Watching() []string {
	children := a.tree.Children(keyUsers)
	ids := make([]string, len(children))
	for i, key := range children {
		ids[i] = key[len(keyUsers)+1:]
	}
	return ids
}

func (a *Aggregator) onOwners(owners []order.Owner) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	next := make(map[string]order.Owner, len(owners))
	added := make(map[string]uint64)
	for _, o := range owners {
		next[o.ID] = o
		if _, ok := a.owners[o.ID]; !ok {
			a.gen++
			a.watchGen[o.ID] = a.gen
			added[o.ID] = a.gen
		}
	}
	var removed []string
	for id := range a.owners {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
			delete(a.partitions, id)
			delete(a.watchGen, id)
		}
	}
	a.owners = next
	ctx := a.ctx
	a.mu.Unlock()

	for _, id := range removed {
		if err := a.tree.Release(userKey(id)); err != nil {
			a.logger.Warn("Failed to release customer order query", zap.String("user_id", id), zap.Error(err))
		}
		a.logger.Debug("Customer removed from order aggregate", zap.String("user_id", id))
	}
	for id, gen := range added {
		a.watchCustomer(ctx, id, gen)
	}
	a.emit()
}

func (a *Aggregator) watchCustomer(ctx context.Context, userID string, gen uint64) {
	sub, err := a.feed.WatchLive(ctx, userID, func(orders []order.Order) {
		a.onLive(userID, gen, orders)
	})
	if err != nil {
		a.logger.Warn("Failed to watch customer orders", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := a.tree.Attach(keyUsers, userKey(userID), sub); err != nil {
		a.logger.Debug("Customer order query not attached", zap.String("user_id", userID), zap.Error(err))
	}
}

func (a *Aggregator) onLive(userID string, gen uint64, orders []order.Order) {
	a.mu.Lock()
	// Late deliveries for a released or re-added customer are dropped.
	if a.closed || a.watchGen[userID] != gen {
		a.mu.Unlock()
		return
	}
	a.partitions[userID] = append([]order.Order(nil), orders...)
	a.mu.Unlock()
	a.emit()
}

func (a *Aggregator) onArchive(entries []order.ArchivedOrder) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	for _, e := range entries {
		key := archiveEntryKey(e.Kind, e.ID)
		if _, ok := a.archived[key]; !ok {
			a.archiveIDs = append(a.archiveIDs, key)
		}
		a.archived[key] = e
	}
	a.mu.Unlock()
	a.emit()
}

func (a *Aggregator) emit() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if len(a.listeners) == 0 {
		a.mu.Unlock()
		return
	}
	snapshot := a.snapshotLocked()
	listeners := make([]func([]OrderView), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (a *Aggregator) snapshotLocked() []OrderView {
	userIDs := make([]string, 0, len(a.partitions))
	for id := range a.partitions {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	shadowed := a.shadowedLocked()
	out := make([]OrderView, 0, len(a.archived))
	for _, id := range userIDs {
		owner := a.owners[id]
		for i := range a.partitions[id] {
			o := &a.partitions[id][i]
			if shadowed[ownedKey(id, o.ID)] {
				continue
			}
			out = append(out, NewLiveView(o, owner))
		}
	}
	for _, key := range a.archiveIDs {
		e := a.archived[key]
		out = append(out, NewArchivedView(&e))
	}
	return out
}

// shadowedLocked returns the live orders that already have an archive copy,
// keyed by customer and order id. A legacy entry without a customer id hides
// the live order with its id under every customer.
func (a *Aggregator) shadowedLocked() map[string]bool {
	set := make(map[string]bool, len(a.archived))
	for _, e := range a.archived {
		if e.UserID != "" {
			set[ownedKey(e.UserID, e.ID)] = true
			continue
		}
		for userID := range a.partitions {
			set[ownedKey(userID, e.ID)] = true
		}
	}
	return set
}

// deferredSubscription holds a place in the subscription tree until the real
// handle is known. A handle set after Close is closed at once.
type deferredSubscription struct {
	mu     sync.Mutex
	sub    shared.Subscription
	closed bool
}

func (d *deferredSubscription) set(sub shared.Subscription) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return sub.Close()
	}
	d.sub = sub
	d.mu.Unlock()
	return nil
}

func (d *deferredSubscription) Close() error {
	d.mu.Lock()
	d.closed = true
	sub := d.sub
	d.sub = nil
	d.mu.Unlock()
	if sub == nil {
		return nil
	}
	return sub.Close()
}
