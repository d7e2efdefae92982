// Package docstore provides a collection-of-documents store with live queries.
//
// Collections are addressed by slash separated paths with an odd number of
// segments ("users", "users/u1/orders", "orders/completed_orders/list"). Every
// backend normalizes document data through JSON on write, so readers see the
// same value shapes regardless of backend: strings, bools, json.Number, nested
// map[string]any and []any.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopadmin/backend/internal/domain/shared"
)

var errStoreClosed = errors.New("document store is closed")

// Document is one stored document
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is the complete content of a collection at one point in time,
// ordered by document id
type Snapshot struct {
	Collection string
	Docs       []Document
}

// IDs returns the document ids in snapshot order
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.Docs))
	for i, d := range s.Docs {
		ids[i] = d.ID
	}
	return ids
}

// Store is a document database with per-collection live queries
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	// Create stores data under a generated id and returns it
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set creates or fully replaces the document
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges patch into the top-level fields of an existing document
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error

	// Watch delivers the current snapshot of collection to fn before returning,
	// then delivers a fresh snapshot after each change until the subscription is
	// closed. Bursts of changes may be coalesced into one delivery. A delivery
	// already running when Close is called may still complete.
	Watch(ctx context.Context, collection string, fn func(Snapshot)) (shared.Subscription, error)

	// Notify marks collection as changed by a writer outside this process
	Notify(collection string)

	Close() error
}

// ChangePublisher announces local writes to other processes
type ChangePublisher interface {
	Publish(ctx context.Context, collection string) error
}

// Path joins path segments into a collection or document path
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// ValidateCollection checks that path names a collection
func ValidateCollection(path string) error {
	if path == "" {
		return invalidPath(path, "collection path is empty")
	}
	segments := strings.Split(path, "/")
	if len(segments)%2 == 0 {
		return invalidPath(path, "collection path must have an odd number of segments")
	}
	for _, s := range segments {
		if s == "" {
			return invalidPath(path, "collection path has an empty segment")
		}
	}
	return nil
}

// ValidateID checks that id is usable as a document id
func ValidateID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid document id %q", id))
	}
	return nil
}

func validateRef(collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	return ValidateID(id)
}

func invalidPath(path, reason string) error {
	return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid collection path %q: %s", path, reason))
}

func notFound(collection, id string) error {
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("document %s/%s not found", collection, id))
}

func unavailable(err error) error {
	return shared.ErrUnavailable.WithCause(err)
}
