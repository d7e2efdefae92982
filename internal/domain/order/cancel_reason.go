package order

import "strings"

// DefaultCancelReason is shown when a cancelled order carries no reason
const DefaultCancelReason = "Cancelled by seller"

// CancelReasonFields lists the document fields that have held the cancellation
// reason over time, highest priority first. Older checkout clients wrote the
// later names; new writers should only use the first.
var CancelReasonFields = []string{"cancelReason", "cancellationReason", "reason", "cancel_reason"}

// ResolveCancelReason returns the first non-empty string stored under one of
// CancelReasonFields, or DefaultCancelReason.
func ResolveCancelReason(fields map[string]any) string {
	for _, name := range CancelReasonFields {
		if v, ok := fields[name].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return DefaultCancelReason
}
