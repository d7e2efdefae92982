package order

import (
	"context"
	"sync"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindLive(ctx context.Context, userID, orderID string) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListLive(ctx context.Context, userID string) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, userID, orderID string, status order.Status) error {
	args := m.Called(ctx, userID, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteLive(ctx context.Context, userID, orderID string) error {
	args := m.Called(ctx, userID, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveArchived(ctx context.Context, archived *order.ArchivedOrder) error {
	args := m.Called(ctx, archived)
	return args.Error(0)
}

func (m *MockOrderRepository) FindArchived(ctx context.Context, kind order.ArchiveKind, orderID string) (*order.ArchivedOrder, error) {
	args := m.Called(ctx, kind, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ArchivedOrder), args.Error(1)
}

func (m *MockOrderRepository) ListArchived(ctx context.Context, kind order.ArchiveKind) ([]order.ArchivedOrder, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]order.ArchivedOrder), args.Error(1)
}

// MockOwnerDirectory is a mock implementation of order.OwnerDirectory
type MockOwnerDirectory struct {
	mock.Mock
}

func (m *MockOwnerDirectory) ListOwners(ctx context.Context) ([]order.Owner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]order.Owner), args.Error(1)
}

func (m *MockOwnerDirectory) FindOwner(ctx context.Context, userID string) (*order.Owner, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Owner), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, n StatusNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// fakeFeed is an order.Feed driven by the test. Every Watch call delivers
// the current contents at once, like the document store does.
type fakeFeed struct {
	mu       sync.Mutex
	owners   []order.Owner
	live     map[string][]order.Order
	archives map[order.ArchiveKind][]order.ArchivedOrder

	ownerFns   []func([]order.Owner)
	liveFns    map[string]func([]order.Order)
	archiveFns map[order.ArchiveKind]func([]order.ArchivedOrder)
	closed     map[string]int
	liveErr    error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		live:       make(map[string][]order.Order),
		archives:   make(map[order.ArchiveKind][]order.ArchivedOrder),
		liveFns:    make(map[string]func([]order.Order)),
		archiveFns: make(map[order.ArchiveKind]func([]order.ArchivedOrder)),
		closed:     make(map[string]int),
	}
}

func (f *fakeFeed) WatchOwners(_ context.Context, fn func([]order.Owner)) (shared.Subscription, error) {
	f.mu.Lock()
	f.ownerFns = append(f.ownerFns, fn)
	owners := append([]order.Owner(nil), f.owners...)
	f.mu.Unlock()

	fn(owners)
	return f.closer("users", func() { f.ownerFns = nil }), nil
}

func (f *fakeFeed) WatchLive(_ context.Context, userID string, fn func([]order.Order)) (shared.Subscription, error) {
	f.mu.Lock()
	if f.liveErr != nil {
		f.mu.Unlock()
		return nil, f.liveErr
	}
	f.liveFns[userID] = fn
	orders := append([]order.Order(nil), f.live[userID]...)
	f.mu.Unlock()

	fn(orders)
	return f.closer("users/"+userID, func() { delete(f.liveFns, userID) }), nil
}

func (f *fakeFeed) WatchArchive(_ context.Context, kind order.ArchiveKind, fn func([]order.ArchivedOrder)) (shared.Subscription, error) {
	f.mu.Lock()
	f.archiveFns[kind] = fn
	entries := append([]order.ArchivedOrder(nil), f.archives[kind]...)
	f.mu.Unlock()

	fn(entries)
	return f.closer("archive/"+string(kind), func() { delete(f.archiveFns, kind) }), nil
}

func (f *fakeFeed) closer(name string, detach func()) shared.Subscription {
	return shared.SubscriptionFunc(func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.closed[name]++
		detach()
		return nil
	})
}

func (f *fakeFeed) setOwners(owners ...order.Owner) {
	f.mu.Lock()
	f.owners = owners
	fns := append(([]func([]order.Owner))(nil), f.ownerFns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(owners)
	}
}

func (f *fakeFeed) setLive(userID string, orders ...order.Order) {
	f.mu.Lock()
	f.live[userID] = orders
	fn := f.liveFns[userID]
	f.mu.Unlock()
	if fn != nil {
		fn(orders)
	}
}

// deliverLive calls the registered callback without changing the stored orders
func (f *fakeFeed) deliverLive(userID string, orders ...order.Order) {
	f.mu.Lock()
	fn := f.liveFns[userID]
	f.mu.Unlock()
	if fn != nil {
		fn(orders)
	}
}

func (f *fakeFeed) setArchive(kind order.ArchiveKind, entries ...order.ArchivedOrder) {
	f.mu.Lock()
	f.archives[kind] = entries
	fn := f.archiveFns[kind]
	f.mu.Unlock()
	if fn != nil {
		fn(entries)
	}
}

func (f *fakeFeed) closedCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed[name]
}

func (f *fakeFeed) isWatchingLive(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.liveFns[userID]
	return ok
}

func liveOrder(id, userID string, status order.Status) order.Order {
	return order.Order{
		ID:           id,
		UserID:       userID,
		CustomerName: "Customer " + userID,
		Status:       status,
		Fields:       map[string]any{"status": string(status)},
	}
}

func archivedOrder(id, userID string, kind order.ArchiveKind) order.ArchivedOrder {
	o := liveOrder(id, userID, kind.Status())
	return order.ArchivedOrder{Order: o, Kind: kind, UserName: "Archived " + userID}
}
