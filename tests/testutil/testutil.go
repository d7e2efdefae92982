// Package testutil provides fixtures shared by the integration suites: an
// in-memory document store, a sqlmock backed gorm handle and seeders that
// write shop documents in the shape the storefront produces them.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"github.com/shopadmin/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockDB wraps a GORM database with sqlmock for testing
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres dialect gorm handle over sqlmock. It is closed
// when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() { _ = mockDB.Close() })
	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewMemoryStore returns an in-memory document store closed at test end
func NewMemoryStore(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	s := docstore.NewMemoryStore(nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Seeder writes fixture documents into a store
type Seeder struct {
	t     *testing.T
	store docstore.Store
	ctx   context.Context
}

// NewSeeder creates a Seeder for store
func NewSeeder(t *testing.T, store docstore.Store) *Seeder {
	return &Seeder{t: t, store: store, ctx: context.Background()}
}

func (s *Seeder) set(collection, id string, data map[string]any) {
	s.t.Helper()
	require.NoError(s.t, s.store.Set(s.ctx, collection, id, data), "seed %s/%s", collection, id)
}

// User writes a customer profile
func (s *Seeder) User(id, fullName, email string, lastActive time.Time) *Seeder {
	s.t.Helper()
	s.set(persistence.UsersCollection, id, map[string]any{
		"fullName":   fullName,
		"email":      email,
		"createdAt":  lastActive.Add(-30 * 24 * time.Hour).UTC().Format(time.RFC3339),
		"lastActive": lastActive.UTC().Format(time.RFC3339),
	})
	return s
}

// Order writes a live order with a single line item
func (s *Seeder) Order(userID, id, status string, total float64, placed time.Time) *Seeder {
	s.t.Helper()
	s.set(persistence.LiveOrdersCollection(userID), id, map[string]any{
		"customerName":    "Customer " + userID,
		"customerPhone":   "+1 555 0100",
		"customerAddress": "1 Main St",
		"email":           userID + "@example.com",
		"orderDate":       placed.UTC().Format(time.RFC3339),
		"total":           total,
		"status":          status,
		"products": []any{map[string]any{
			"name":       "Linen Shirt",
			"size":       "M",
			"quantity":   1,
			"unitPrice":  total,
			"totalPrice": total,
		}},
	})
	return s
}

// ArchivedOrder writes an entry into the archive of kind
func (s *Seeder) ArchivedOrder(kind order.ArchiveKind, userID, id, status string, total float64, archived time.Time) *Seeder {
	s.t.Helper()
	s.set(persistence.ArchiveCollection(kind), id, map[string]any{
		"customerName": "Customer " + userID,
		"email":        userID + "@example.com",
		"orderDate":    archived.Add(-24 * time.Hour).UTC().Format(time.RFC3339),
		"total":        total,
		"status":       status,
		"userId":       userID,
		"userName":     "Customer " + userID,
		"userEmail":    userID + "@example.com",
		"archivedAt":   archived.UTC().Format(time.RFC3339),
	})
	return s
}

// Product writes a catalog entry
func (s *Seeder) Product(id, name, gender string, price float64) *Seeder {
	s.t.Helper()
	s.set(persistence.ProductsCollection, id, map[string]any{
		"name":        name,
		"price":       price,
		"description": name + " description",
		"gender":      gender,
		"imageUrl":    "https://cdn.example.com/" + id + ".jpg",
	})
	return s
}

// Testimonial writes a feedback entry
func (s *Seeder) Testimonial(id, name string, rating int, shown bool) *Seeder {
	s.t.Helper()
	s.set(persistence.TestimonialsCollection, id, map[string]any{
		"name":   name,
		"desc":   "Great fit from " + name,
		"rating": rating,
		"shown":  shown,
	})
	return s
}

// NewTestID derives a stable document id from seed
func NewTestID(seed string) string {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed)).String()
}

// Day returns midnight UTC of the given date
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
