package order

import (
	"fmt"
	"strings"

	"github.com/shopadmin/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status represents the fulfilment status of an order
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPacked    Status = "Packed"
	StatusShipped   Status = "Shipped"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// StatusAll is the list filter value that matches every status
const StatusAll = "All"

// AllStatuses returns the statuses in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusPacked, StatusShipped, StatusCompleted, StatusCancelled}
}

// ParseStatus parses a status name case-insensitively
func ParseStatus(s string) (Status, error) {
	// Casers keep state between calls, so each parse gets its own.
	status := Status(cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s))))
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", s))
	}
	return status, nil
}

// IsValid returns true if s is one of the five known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPacked, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for Completed and Cancelled
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// step is the position of s on the forward path; Cancelled has none
func (s Status) step() int {
	switch s {
	case StatusPending:
		return 1
	case StatusPacked:
		return 2
	case StatusShipped:
		return 3
	case StatusCompleted:
		return 4
	}
	return 0
}

// CanTransitionTo reports whether an operator may move an order from s to target.
// The forward path may skip steps, Cancelled is reachable from any non-terminal
// status, and terminal statuses never change. A stored status outside the known set
// may be corrected to any valid status.
func (s Status) CanTransitionTo(target Status) bool {
	if !target.IsValid() || s == target {
		return false
	}
	if !s.IsValid() {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return target.step() > s.step()
}
