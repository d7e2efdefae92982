package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MemoryStore keeps documents in process memory. It backs local development
// and tests; data does not survive a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	hub         *hub
	publisher   ChangePublisher
	now         func() time.Time
	logger      *zap.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *zap.Logger, opts ...Option) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	s := &MemoryStore{
		collections: make(map[string]map[string]Document),
		publisher:   o.publisher,
		now:         o.now,
		logger:      logger,
	}
	s.hub = newHub(s.List, logger.Named("docstore"))
	return s
}

// Get returns one document
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validateRef(collection, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, notFound(collection, id)
	}
	out := copyDocument(doc)
	return &out, nil
}

// List returns every document of collection ordered by id
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		docs = append(docs, copyDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Create stores data under a new random id
func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set creates or replaces a document
func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	normalized, err := Normalize(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	now := s.now()
	docs := s.collections[collection]
	if docs == nil {
		docs = make(map[string]Document)
		s.collections[collection] = docs
	}
	created := now
	if existing, ok := docs[id]; ok {
		created = existing.CreatedAt
	}
	docs[id] = Document{ID: id, Data: normalized, CreatedAt: created, UpdatedAt: now}
	s.mu.Unlock()

	s.changed(ctx, collection)
	return nil
}

// Update merges patch into an existing document
func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	normalized, err := Normalize(patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return notFound(collection, id)
	}
	doc.Data = merge(doc.Data, normalized)
	doc.UpdatedAt = s.now()
	s.collections[collection][id] = doc
	s.mu.Unlock()

	s.changed(ctx, collection)
	return nil
}

// Delete removes a document
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.collections[collection][id]; !ok {
		s.mu.Unlock()
		return notFound(collection, id)
	}
	delete(s.collections[collection], id)
	if len(s.collections[collection]) == 0 {
		delete(s.collections, collection)
	}
	s.mu.Unlock()

	s.changed(ctx, collection)
	return nil
}

// Watch opens a live query on collection
func (s *MemoryStore) Watch(ctx context.Context, collection string, fn func(Snapshot)) (shared.Subscription, error) {
	return s.hub.watch(ctx, collection, fn)
}

// Notify marks collection as changed
func (s *MemoryStore) Notify(collection string) {
	s.hub.notify(collection)
}

// WatcherCount returns the number of open live queries on collection
func (s *MemoryStore) WatcherCount(collection string) int {
	return s.hub.count(collection)
}

// Close stops every live query
func (s *MemoryStore) Close() error {
	s.hub.close()
	return nil
}

func (s *MemoryStore) changed(ctx context.Context, collection string) {
	s.hub.notify(collection)
	publishChange(ctx, s.publisher, s.logger, collection)
}

func copyDocument(d Document) Document {
	d.Data = cloneData(d.Data)
	return d
}

var _ Store = (*MemoryStore)(nil)
