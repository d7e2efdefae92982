package order

import "context"

// StatusNotification is sent to the customer after an operator changed an order's status
type StatusNotification struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Notifier delivers status notifications. Failures never undo the status change.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, n StatusNotification) error
}
