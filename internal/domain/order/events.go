package order

import "github.com/shopadmin/backend/internal/domain/shared"

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderArchived      = "OrderArchived"
)

// OrderStatusChangedEvent is raised after a live order's status was persisted
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	PreviousStatus Status `json:"previous_status"`
	Status         Status `json:"status"`
	Email          string `json:"email"`
	CustomerName   string `json:"customer_name"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		PreviousStatus:  previous,
		Status:          o.Status,
		Email:           o.Email,
		CustomerName:    o.CustomerName,
	}
}

// EventType returns the event type name
func (e *OrderStatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}

// OrderArchivedEvent is raised once an order was copied to its archive and
// removed from the live collection
type OrderArchivedEvent struct {
	shared.BaseDomainEvent
	OrderID string      `json:"order_id"`
	UserID  string      `json:"user_id"`
	Kind    ArchiveKind `json:"kind"`
	Status  Status      `json:"status"`
}

// NewOrderArchivedEvent creates a new OrderArchivedEvent
func NewOrderArchivedEvent(a *ArchivedOrder) *OrderArchivedEvent {
	return &OrderArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderArchived, AggregateTypeOrder, a.ID),
		OrderID:         a.ID,
		UserID:          a.UserID,
		Kind:            a.Kind,
		Status:          a.Status,
	}
}

// EventType returns the event type name
func (e *OrderArchivedEvent) EventType() string {
	return EventTypeOrderArchived
}
