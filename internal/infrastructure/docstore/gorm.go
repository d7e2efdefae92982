package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRecord is the row layout of the documents table
type documentRecord struct {
	Collection string    `gorm:"column:collection;type:varchar(255);primaryKey"`
	ID         string    `gorm:"column:id;type:varchar(255);primaryKey"`
	Data       string    `gorm:"column:data;type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (documentRecord) TableName() string {
	return "documents"
}

func (r documentRecord) toDocument() (Document, error) {
	data, err := decodeJSON([]byte(r.Data))
	if err != nil {
		return Document{}, fmt.Errorf("document %s/%s: %w", r.Collection, r.ID, err)
	}
	return Document{ID: r.ID, Data: data, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}, nil
}

// GormStore keeps documents in one SQL table, one row per document.
// Live queries see writes made through this store; writes from other
// processes arrive through Notify.
type GormStore struct {
	db        *gorm.DB
	hub       *hub
	publisher ChangePublisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewGormStore creates a store on db
func NewGormStore(db *gorm.DB, logger *zap.Logger, opts ...Option) *GormStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	s := &GormStore{
		db:        db,
		publisher: o.publisher,
		now:       o.now,
		logger:    logger,
	}
	s.hub = newHub(s.List, logger.Named("docstore"))
	return s
}

// AutoMigrate creates the documents table when it does not exist.
// Production databases use the SQL migrations instead.
func (s *GormStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&documentRecord{})
}

// Get returns one document
func (s *GormStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validateRef(collection, id); err != nil {
		return nil, err
	}
	var rec documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(collection, id)
		}
		return nil, unavailable(err)
	}
	doc, err := rec.toDocument()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns every document of collection ordered by id
func (s *GormStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	var recs []documentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, unavailable(err)
	}
	docs := make([]Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := rec.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Create stores data under a new random id
func (s *GormStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set creates or replaces a document
func (s *GormStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	normalized, err := Normalize(data)
	if err != nil {
		return err
	}
	raw, err := encodeJSON(normalized)
	if err != nil {
		return err
	}

	now := s.now()
	rec := documentRecord{
		Collection: collection,
		ID:         id,
		Data:       string(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return unavailable(err)
	}

	s.changed(ctx, collection)
	return nil
}

// Update merges patch into an existing document. The row is locked for the
// read-modify-write on databases that support row locks.
func (s *GormStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	normalized, err := Normalize(patch)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec documentRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", collection, id).
			First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(collection, id)
			}
			return unavailable(err)
		}

		current, err := decodeJSON([]byte(rec.Data))
		if err != nil {
			return err
		}
		raw, err := encodeJSON(merge(current, normalized))
		if err != nil {
			return err
		}

		err = tx.Model(&documentRecord{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{
				"data":       string(raw),
				"updated_at": s.now(),
			}).Error
		if err != nil {
			return unavailable(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.changed(ctx, collection)
	return nil
}

// Delete removes a document
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&documentRecord{})
	if result.Error != nil {
		return unavailable(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(collection, id)
	}

	s.changed(ctx, collection)
	return nil
}

// Watch opens a live query on collection
func (s *GormStore) Watch(ctx context.Context, collection string, fn func(Snapshot)) (shared.Subscription, error) {
	return s.hub.watch(ctx, collection, fn)
}

// Notify marks collection as changed
func (s *GormStore) Notify(collection string) {
	s.hub.notify(collection)
}

// Close stops every live query. The database handle is owned by the caller.
func (s *GormStore) Close() error {
	s.hub.close()
	return nil
}

func (s *GormStore) changed(ctx context.Context, collection string) {
	s.hub.notify(collection)
	publishChange(ctx, s.publisher, s.logger, collection)
}

var _ Store = (*GormStore)(nil)
