package models

import (
	"encoding/json"

	"github.com/shopadmin/backend/internal/domain/order"
)

// LineItemDocument is one entry of an order's products array
type LineItemDocument struct {
	Name       Text   `json:"name"`
	ImageURL   Text   `json:"imageUrl"`
	Size       Text   `json:"size"`
	Quantity   Count  `json:"quantity"`
	UnitPrice  Amount `json:"unitPrice"`
	TotalPrice Amount `json:"totalPrice"`
}

// LineItems decodes the products array, skipping entries that are not objects
type LineItems []LineItemDocument

// UnmarshalJSON implements json.Unmarshaler
func (l *LineItems) UnmarshalJSON(b []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	items := make(LineItems, 0, len(raw))
	for _, r := range raw {
		var item LineItemDocument
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	*l = items
	return nil
}

// OrderDocument is the stored layout of a live or archived order.
// The archive fields are empty on live orders.
type OrderDocument struct {
	CustomerName    Text      `json:"customerName"`
	CustomerPhone   Text      `json:"customerPhone"`
	CustomerAddress Text      `json:"customerAddress"`
	Email           Text      `json:"email"`
	OrderDate       Timestamp `json:"orderDate"`
	Total           Amount    `json:"total"`
	Status          Text      `json:"status"`
	Products        LineItems `json:"products"`

	UserID     Text      `json:"userId,omitempty"`
	UserName   Text      `json:"userName,omitempty"`
	UserEmail  Text      `json:"userEmail,omitempty"`
	ArchivedAt Timestamp `json:"archivedAt"`
}

// ToDomain converts the stored document of a live order into an Order. A
// missing or unreadable line or order total is derived from the line items.
func (d *OrderDocument) ToDomain(id, userID string, fields map[string]any) *order.Order {
	o := &order.Order{
		ID:              id,
		UserID:          userID,
		CustomerName:    d.CustomerName.String(),
		CustomerPhone:   d.CustomerPhone.String(),
		CustomerAddress: d.CustomerAddress.String(),
		Email:           d.Email.String(),
		OrderDate:       d.OrderDate.Time,
		Total:           d.Total.Decimal,
		Status:          parseStoredStatus(d.Status.String()),
		Fields:          fields,
	}
	if len(d.Products) > 0 {
		o.Products = make([]order.LineItem, len(d.Products))
		for i, p := range d.Products {
			o.Products[i] = order.LineItem{
				Name:       p.Name.String(),
				ImageURL:   p.ImageURL.String(),
				Size:       p.Size.String(),
				Quantity:   int(p.Quantity),
				UnitPrice:  p.UnitPrice.Decimal,
				TotalPrice: p.TotalPrice.Decimal,
			}
			if !p.TotalPrice.Valid {
				o.Products[i].TotalPrice = o.Products[i].LineTotal()
			}
		}
		if !d.Total.Valid {
			o.Total = o.ComputedTotal()
		}
	}
	return o
}

// ToArchived converts the stored document of an archive entry. Every entry
// reports the status of the archive it lives in.
func (d *OrderDocument) ToArchived(id string, kind order.ArchiveKind, fields map[string]any) *order.ArchivedOrder {
	o := d.ToDomain(id, d.UserID.String(), fields)
	o.Status = kind.Status()
	return &order.ArchivedOrder{
		Order:      *o,
		Kind:       kind,
		UserName:   d.UserName.String(),
		UserEmail:  d.UserEmail.String(),
		ArchivedAt: d.ArchivedAt.Time,
	}
}

// parseStoredStatus keeps an unrecognised stored status as is, so an operator
// can still correct it
func parseStoredStatus(s string) order.Status {
	if status, err := order.ParseStatus(s); err == nil {
		return status
	}
	return order.Status(s)
}

// DecodeOrder reads a live order from document data
func DecodeOrder(id, userID string, data map[string]any) (*order.Order, error) {
	var doc OrderDocument
	if err := decodeData(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToDomain(id, userID, data), nil
}

// DecodeArchivedOrder reads an archive entry from document data
func DecodeArchivedOrder(id string, kind order.ArchiveKind, data map[string]any) (*order.ArchivedOrder, error) {
	var doc OrderDocument
	if err := decodeData(data, &doc); err != nil {
		return nil, err
	}
	return doc.ToArchived(id, kind, data), nil
}

// EncodeArchivedOrder builds the archive document: the complete live document
// as read, with the modelled fields filled in where the live document lacked
// them, the archive status, and the owner and archive metadata.
func EncodeArchivedOrder(a *order.ArchivedOrder) (map[string]any, error) {
	modelled := OrderDocument{
		CustomerName:    Text(a.CustomerName),
		CustomerPhone:   Text(a.CustomerPhone),
		CustomerAddress: Text(a.CustomerAddress),
		Email:           Text(a.Email),
		OrderDate:       NewTimestamp(a.OrderDate),
		Total:           NewAmount(a.Total),
		Products:        encodeLineItems(a.Products),
	}
	data, err := encodeData(modelled)
	if err != nil {
		return nil, err
	}
	for k, v := range a.Fields {
		data[k] = v
	}

	data["status"] = string(a.Kind.Status())
	data["userId"] = a.UserID
	data["userName"] = a.UserName
	data["userEmail"] = a.UserEmail
	archivedAt := NewTimestamp(a.ArchivedAt)
	data["archivedAt"] = archivedAt
	return data, nil
}

func encodeLineItems(items []order.LineItem) LineItems {
	out := make(LineItems, len(items))
	for i, item := range items {
		out[i] = LineItemDocument{
			Name:       Text(item.Name),
			ImageURL:   Text(item.ImageURL),
			Size:       Text(item.Size),
			Quantity:   Count(item.Quantity),
			UnitPrice:  NewAmount(item.UnitPrice),
			TotalPrice: NewAmount(item.TotalPrice),
		}
	}
	return out
}
