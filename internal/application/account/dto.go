package account

import (
	"time"

	"github.com/shopadmin/backend/internal/domain/account"
)

// UserResponse represents a customer account in API responses
type UserResponse struct {
	ID         string                 `json:"id"`
	FullName   string                 `json:"fullName"`
	Email      string                 `json:"email"`
	CreatedAt  *time.Time             `json:"createdAt"`
	LastActive *time.Time             `json:"lastActive"`
	Status     account.ActivityStatus `json:"status"`
}

// ToUserResponse converts a domain user, classifying it at now
func ToUserResponse(u *account.User, now time.Time) UserResponse {
	return UserResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		LastActive: u.LastActive,
		Status:     u.Status(now),
	}
}

// ActivityCounts is the number of active and inactive customers
type ActivityCounts struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ListInput selects a page of the customer list
type ListInput struct {
	// Status is "all" (or empty), "active" or "inactive"
	Status string
	Page   int
}
