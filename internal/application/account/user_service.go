package account

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopadmin/backend/internal/domain/account"
	"github.com/shopadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages customer accounts
type UserService struct {
	users    account.Repository
	logger   *zap.Logger
	now      func() time.Time
	pageSize int
}

// NewUserService creates a new UserService
func NewUserService(users account.Repository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger, now: time.Now, pageSize: shared.DefaultPageSize}
}

// List returns one page of customers sorted by name, each with a derived
// activity status, optionally limited to one status ("all", "active" or
// "inactive")
func (s *UserService) List(ctx context.Context, input ListInput) (shared.Paginated[UserResponse], error) {
	filter, err := account.ParseActivityStatus(input.Status)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}

	now := s.now()
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		r := ToUserResponse(&users[i], now)
		if filter != "" && r.Status != filter {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	return shared.Paginate(out, shared.Filter{Page: input.Page, PageSize: s.pageSize}), nil
}

// Counts classifies every customer
func (s *UserService) Counts(ctx context.Context) (ActivityCounts, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return ActivityCounts{}, err
	}
	now := s.now()
	var counts ActivityCounts
	for i := range users {
		if users[i].Status(now) == account.ActivityActive {
			counts.Active++
		} else {
			counts.Inactive++
		}
	}
	return counts, nil
}

// Delete removes a customer account. Order aggregators drop the customer's
// orders when the change reaches them.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Customer account deleted", zap.String("user_id", id))
	return nil
}
