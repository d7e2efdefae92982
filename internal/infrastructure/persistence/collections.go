package persistence

import (
	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/infrastructure/docstore"
	"go.uber.org/zap"
)

// Collection paths of the shop documents
const (
	UsersCollection        = "users"
	ProductsCollection     = "products"
	TestimonialsCollection = "testimonials"
	AdminCollection        = "admin"
)

// LiveOrdersCollection returns the collection holding the live orders of one user
func LiveOrdersCollection(userID string) string {
	return docstore.Path(UsersCollection, userID, "orders")
}

// ArchiveCollection returns the collection holding archived orders of kind
func ArchiveCollection(kind order.ArchiveKind) string {
	return docstore.Path("orders", string(kind)+"_orders", "list")
}

// skipUnreadable logs a document that could not be decoded
func skipUnreadable(logger *zap.Logger, collection, id string, err error) {
	logger.Warn("Skipping unreadable document",
		zap.String("collection", collection),
		zap.String("id", id),
		zap.Error(err),
	)
}
