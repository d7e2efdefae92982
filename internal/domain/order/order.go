package order

import (
	"fmt"
	"time"

	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one product line of an order
type LineItem struct {
	Name       string          `json:"name"`
	ImageURL   string          `json:"imageUrl"`
	Size       string          `json:"size"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// LineTotal returns unit price times quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents one customer purchase.
// Orders are created by the storefront checkout; this service only changes the
// status of live orders and moves terminal orders to the archive.
type Order struct {
	ID              string
	UserID          string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Email           string
	OrderDate       *time.Time
	Total           decimal.Decimal
	Status          Status
	Products        []LineItem

	// Fields is the stored document as read, including attributes not modelled above.
	Fields map[string]any
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsArchivable returns true if the order may be moved to an archive
func (o *Order) IsArchivable() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// CancelReason returns the resolved cancellation reason of a cancelled order
// and an empty string for any other status.
func (o *Order) CancelReason() string {
	if !o.IsCancelled() {
		return ""
	}
	return ResolveCancelReason(o.Fields)
}

// ChangeStatus moves the order to target and returns the previous status.
// Cancelled orders are read-only.
func (o *Order) ChangeStatus(target Status) (Status, error) {
	if !target.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if o.IsCancelled() {
		return "", shared.NewDomainError("INVALID_STATE", "Cancelled orders are read-only")
	}
	if !o.Status.CanTransitionTo(target) {
		return "", shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}

	previous := o.Status
	o.Status = target
	if o.Fields != nil {
		o.Fields["status"] = string(target)
	}
	return previous, nil
}

// ArchiveKind returns the archive this order belongs in
func (o *Order) ArchiveKind() (ArchiveKind, error) {
	return ArchiveKindFor(o.Status)
}

// ComputedTotal sums the line totals
func (o *Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Products {
		total = total.Add(item.LineTotal())
	}
	return total
}
