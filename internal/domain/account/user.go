package account

import (
	"context"
	"strings"
	"time"

	"github.com/shopadmin/backend/internal/domain/shared"
)

// InactivityThreshold is how long a customer may go without activity before
// being classified as inactive
const InactivityThreshold = 30 * 24 * time.Hour

// ActivityStatus is derived from the last-active timestamp and never stored
type ActivityStatus string

const (
	ActivityActive   ActivityStatus = "Active"
	ActivityInactive ActivityStatus = "Inactive"
)

// ParseActivityStatus parses a status filter; empty and "all" return "" (no filter)
func ParseActivityStatus(s string) (ActivityStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "active":
		return ActivityActive, nil
	case "inactive":
		return ActivityInactive, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "Status filter must be all, active or inactive")
}

// Classify returns Inactive when lastActive is absent or more than
// InactivityThreshold before now.
func Classify(lastActive *time.Time, now time.Time) ActivityStatus {
	if lastActive == nil {
		return ActivityInactive
	}
	if now.Sub(*lastActive) > InactivityThreshold {
		return ActivityInactive
	}
	return ActivityActive
}

// User is a customer account of the storefront
type User struct {
	ID         string
	FullName   string
	Email      string
	CreatedAt  *time.Time
	LastActive *time.Time
}

// Status classifies the user at now
func (u *User) Status(now time.Time) ActivityStatus {
	return Classify(u.LastActive, now)
}

// Repository provides access to customer accounts
type Repository interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}
