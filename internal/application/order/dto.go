package order

import (
	"time"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Origin tells where an aggregated order currently lives
type Origin string

const (
	OriginLive      Origin = "live"
	OriginCancelled Origin = "cancelled"
	OriginCompleted Origin = "completed"
)

// OriginFor returns the origin of an archive kind
func OriginFor(kind order.ArchiveKind) Origin {
	if kind == order.ArchiveCancelled {
		return OriginCancelled
	}
	return OriginCompleted
}

// IsArchived returns true for both archive origins
func (o Origin) IsArchived() bool {
	return o == OriginCancelled || o == OriginCompleted
}

// LineItemView is one product line as shown to operators
type LineItemView struct {
	Name       string          `json:"name"`
	ImageURL   string          `json:"imageUrl"`
	Size       string          `json:"size"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// OrderView is the operator-facing shape of an order, live or archived
type OrderView struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Name         string          `json:"name"`
	OrderName    string          `json:"ordername"`
	OrderPhone   string          `json:"orderphone"`
	OrderAddress string          `json:"orderaddress"`
	Email        string          `json:"email"`
	Date         *time.Time      `json:"date"`
	Total        decimal.Decimal `json:"total"`
	Status       order.Status    `json:"status"`
	Products     []LineItemView  `json:"products"`
	Origin       Origin          `json:"origin"`
	CancelReason string          `json:"cancelReason,omitempty"`
	ArchivedAt   *time.Time      `json:"archivedAt,omitempty"`
}

// NewLiveView builds the view of a live order joined with its owner
func NewLiveView(o *order.Order, owner order.Owner) OrderView {
	v := baseView(o)
	v.Name = owner.DisplayName()
	v.Email = owner.DisplayEmail()
	v.Origin = OriginLive
	return v
}

// NewArchivedView builds the view of an archive entry. The status always
// reports the archive kind, whatever the stored copy says.
func NewArchivedView(a *order.ArchivedOrder) OrderView {
	v := baseView(&a.Order)
	v.Name = orDefault(a.UserName, "Unknown")
	v.Email = orDefault(a.UserEmail, "No email")
	v.Status = a.Kind.Status()
	v.Origin = OriginFor(a.Kind)
	v.ArchivedAt = a.ArchivedAt
	v.CancelReason = ""
	if v.Status == order.StatusCancelled {
		v.CancelReason = order.ResolveCancelReason(a.Fields)
	}
	return v
}

func baseView(o *order.Order) OrderView {
	products := make([]LineItemView, len(o.Products))
	for i, p := range o.Products {
		products[i] = LineItemView{
			Name:       p.Name,
			ImageURL:   p.ImageURL,
			Size:       p.Size,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: p.TotalPrice,
		}
	}
	return OrderView{
		ID:           o.ID,
		UserID:       o.UserID,
		OrderName:    orDefault(o.CustomerName, "Unknown"),
		OrderPhone:   o.CustomerPhone,
		OrderAddress: o.CustomerAddress,
		Date:         o.OrderDate,
		Total:        o.Total,
		Status:       o.Status,
		Products:     products,
		CancelReason: o.CancelReason(),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ChangeStatusInput identifies a live order and the status to move it to
type ChangeStatusInput struct {
	UserID  string
	OrderID string
	Status  string
}

// ListInput selects one page of the aggregated order list
type ListInput struct {
	// Status is "All" (or empty) or one of the five status names
	Status string
	Page   int
}

// StatusCount is the number of aggregated orders with one status
type StatusCount struct {
	Status order.Status `json:"status"`
	Count  int          `json:"count"`
}
