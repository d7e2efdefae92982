package dashboard

import (
	"context"

	accountapp "github.com/shopadmin/backend/internal/application/account"
	feedbackapp "github.com/shopadmin/backend/internal/application/feedback"
	identityapp "github.com/shopadmin/backend/internal/application/identity"
	orderapp "github.com/shopadmin/backend/internal/application/order"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OrderCounter reports the size of the order aggregate
type OrderCounter interface {
	Counts() (live, archived int)
}

// StatusCounter reports the number of orders per status
type StatusCounter interface {
	StatusCounts(ctx context.Context) []orderapp.StatusCount
}

// UserCounter reports customer activity counts
type UserCounter interface {
	Counts(ctx context.Context) (accountapp.ActivityCounts, error)
}

// ProductCounter reports the catalog size
type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

// FeedbackCounter reports testimonial visibility counts
type FeedbackCounter interface {
	Counts(ctx context.Context) (feedbackapp.VisibilityCounts, error)
}

// ProfileReader loads the admin profile
type ProfileReader interface {
	Get(ctx context.Context) (*identityapp.ProfileResponse, error)
}

// Summary is the dashboard payload
type Summary struct {
	TotalOrders    int                          `json:"totalOrders"`
	LiveOrders     int                          `json:"liveOrders"`
	ArchivedOrders int                          `json:"archivedOrders"`
	ByStatus       []orderapp.StatusCount       `json:"byStatus"`
	Users          accountapp.ActivityCounts    `json:"users"`
	Products       int                          `json:"products"`
	Feedback       feedbackapp.VisibilityCounts `json:"feedback"`
	AdminImageURL  string                       `json:"adminImageUrl"`
}

// Service builds the dashboard summary
type Service struct {
	orders   OrderCounter
	statuses StatusCounter
	users    UserCounter
	products ProductCounter
	feedback FeedbackCounter
	profile  ProfileReader
	logger   *zap.Logger
}

// NewService creates a new dashboard Service
func NewService(
	orders OrderCounter,
	statuses StatusCounter,
	users UserCounter,
	products ProductCounter,
	feedback FeedbackCounter,
	profile ProfileReader,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		statuses: statuses,
		users:    users,
		products: products,
		feedback: feedback,
		profile:  profile,
		logger:   logger,
	}
}

// Summary collects every counter. The order total comes from the in-memory
// aggregate; the other counters read the store concurrently. A missing admin
// avatar is not an error.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	live, archived := s.orders.Counts()
	summary := &Summary{
		TotalOrders:    live + archived,
		LiveOrders:     live,
		ArchivedOrders: archived,
		ByStatus:       s.statuses.StatusCounts(ctx),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.users.Counts(gctx)
		if err != nil {
			return err
		}
		summary.Users = counts
		return nil
	})
	g.Go(func() error {
		count, err := s.products.Count(gctx)
		if err != nil {
			return err
		}
		summary.Products = count
		return nil
	})
	g.Go(func() error {
		counts, err := s.feedback.Counts(gctx)
		if err != nil {
			return err
		}
		summary.Feedback = counts
		return nil
	})
	g.Go(func() error {
		profile, err := s.profile.Get(gctx)
		if err != nil {
			s.logger.Warn("Failed to load admin profile for dashboard", zap.Error(err))
			return nil
		}
		summary.AdminImageURL = profile.ImageURL
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
