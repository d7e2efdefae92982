package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// mongoDocument is the stored layout of one document. The key joins the
// collection path and document id so a single Mongo collection holds
// every logical collection.
type mongoDocument struct {
	Key        string    `bson:"_id"`
	Collection string    `bson:"collection"`
	DocID      string    `bson:"doc_id"`
	Data       bson.Raw  `bson:"data"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d mongoDocument) toDocument() (Document, error) {
	data := map[string]any{}
	if len(d.Data) > 0 {
		raw, err := bson.MarshalExtJSON(d.Data, false, false)
		if err != nil {
			return Document{}, fmt.Errorf("document %s: %w", d.Key, err)
		}
		if data, err = decodeJSON(raw); err != nil {
			return Document{}, fmt.Errorf("document %s: %w", d.Key, err)
		}
	}
	return Document{ID: d.DocID, Data: data, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

// MongoStore keeps documents in one MongoDB collection
type MongoStore struct {
	client    *mongo.Client
	coll      *mongo.Collection
	hub       *hub
	publisher ChangePublisher
	now       func() time.Time
	logger    *zap.Logger
}

// ConnectMongoStore dials uri, checks the connection and ensures the
// collection index
func ConnectMongoStore(ctx context.Context, uri, database, collection string, logger *zap.Logger, opts ...Option) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "collection", Value: 1}, {Key: "doc_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	s := NewMongoStore(coll, logger, opts...)
	s.client = client
	return s, nil
}

// NewMongoStore creates a store on an existing collection handle. The
// caller keeps ownership of the client.
func NewMongoStore(coll *mongo.Collection, logger *zap.Logger, opts ...Option) *MongoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	s := &MongoStore{
		coll:      coll,
		publisher: o.publisher,
		now:       o.now,
		logger:    logger,
	}
	s.hub = newHub(s.List, logger.Named("docstore"))
	return s
}

func mongoKey(collection, id string) string {
	return collection + "/" + id
}

// Get returns one document
func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validateRef(collection, id); err != nil {
		return nil, err
	}
	var md mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": mongoKey(collection, id)}).Decode(&md)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(collection, id)
		}
		return nil, unavailable(err)
	}
	doc, err := md.toDocument()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns every document of collection ordered by id
func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	cur, err := s.coll.Find(ctx,
		bson.M{"collection": collection},
		options.Find().SetSort(bson.D{{Key: "doc_id", Value: 1}}),
	)
	if err != nil {
		return nil, unavailable(err)
	}
	defer cur.Close(ctx)

	docs := []Document{}
	for cur.Next(ctx) {
		var md mongoDocument
		if err := cur.Decode(&md); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		doc, err := md.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, unavailable(err)
	}
	return docs, nil
}

// Create stores data under a new random id
func (s *MongoStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set creates or replaces a document
func (s *MongoStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	body, err := toBSON(data)
	if err != nil {
		return err
	}

	now := s.now()
	_, err = s.coll.UpdateOne(ctx,
		bson.M{"_id": mongoKey(collection, id)},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "collection", Value: collection},
				{Key: "doc_id", Value: id},
				{Key: "data", Value: body},
				{Key: "updated_at", Value: now},
			}},
			{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return unavailable(err)
	}

	s.changed(ctx, collection)
	return nil
}

// Update sets the patched top-level fields of an existing document
func (s *MongoStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	for field := range patch {
		if field == "" || strings.ContainsAny(field, ".$") {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid field name %q", field))
		}
	}
	body, err := toBSON(patch)
	if err != nil {
		return err
	}

	set := make(bson.D, 0, len(body)+1)
	for _, e := range body {
		set = append(set, bson.E{Key: "data." + e.Key, Value: e.Value})
	}
	set = append(set, bson.E{Key: "updated_at", Value: s.now()})

	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": mongoKey(collection, id)},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return unavailable(err)
	}
	if result.MatchedCount == 0 {
		return notFound(collection, id)
	}

	s.changed(ctx, collection)
	return nil
}

// Delete removes a document
func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if err := validateRef(collection, id); err != nil {
		return err
	}
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": mongoKey(collection, id)})
	if err != nil {
		return unavailable(err)
	}
	if result.DeletedCount == 0 {
		return notFound(collection, id)
	}

	s.changed(ctx, collection)
	return nil
}

// Watch opens a live query on collection
func (s *MongoStore) Watch(ctx context.Context, collection string, fn func(Snapshot)) (shared.Subscription, error) {
	return s.hub.watch(ctx, collection, fn)
}

// Notify marks collection as changed
func (s *MongoStore) Notify(collection string) {
	s.hub.notify(collection)
}

// StreamChanges follows the server change stream and marks the collections
// touched by any writer as changed. It needs a replica set deployment and
// returns when ctx is done.
func (s *MongoStore) StreamChanges(ctx context.Context) error {
	stream, err := s.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("failed to open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var event struct {
			DocumentKey struct {
				ID string `bson:"_id"`
			} `bson:"documentKey"`
		}
		if err := stream.Decode(&event); err != nil {
			s.logger.Warn("Failed to decode change event", zap.Error(err))
			continue
		}
		if i := strings.LastIndex(event.DocumentKey.ID, "/"); i > 0 {
			s.hub.notify(event.DocumentKey.ID[:i])
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change stream: %w", err)
	}
	return nil
}

// Ping checks the server connection. A store built on a caller owned client
// only checks that the collection can be read.
func (s *MongoStore) Ping(ctx context.Context) error {
	if s.client != nil {
		return s.client.Ping(ctx, nil)
	}
	return s.coll.FindOne(ctx, bson.D{}).Err()
}

// Close stops every live query and disconnects a client opened by
// ConnectMongoStore
func (s *MongoStore) Close() error {
	s.hub.close()
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) changed(ctx context.Context, collection string) {
	s.hub.notify(collection)
	publishChange(ctx, s.publisher, s.logger, collection)
}

// toBSON converts data into a BSON document through its normalized JSON
// form, so numbers are stored as BSON numbers rather than strings
func toBSON(data map[string]any) (bson.D, error) {
	normalized, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	raw, err := encodeJSON(normalized)
	if err != nil {
		return nil, err
	}
	var out bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &out); err != nil {
		return nil, shared.ErrInvalidInput.WithCause(fmt.Errorf("convert document: %w", err))
	}
	return out, nil
}

var _ Store = (*MongoStore)(nil)
