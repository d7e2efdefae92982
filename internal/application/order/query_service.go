package order

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
)

// Snapshotter provides the current merged order list
type Snapshotter interface {
	Snapshot() []OrderView
}

// QueryService answers read requests over the aggregated orders
type QueryService struct {
	aggregate Snapshotter
	orders    order.Repository
	owners    order.OwnerDirectory
	pageSize  int
}

// NewQueryService creates a new QueryService
func NewQueryService(aggregate Snapshotter, orders order.Repository, owners order.OwnerDirectory) *QueryService {
	return &QueryService{
		aggregate: aggregate,
		orders:    orders,
		owners:    owners,
		pageSize:  shared.DefaultPageSize,
	}
}

// List returns one page of the merged list, newest first. A page past the end
// is empty but reports the correct totals.
func (s *QueryService) List(ctx context.Context, input ListInput) (shared.Paginated[OrderView], error) {
	views := s.aggregate.Snapshot()

	if !isAllFilter(input.Status) {
		status, err := order.ParseStatus(input.Status)
		if err != nil {
			return shared.Paginated[OrderView]{}, err
		}
		views = filterViews(views, func(v *OrderView) bool { return v.Status == status })
	}

	SortNewestFirst(views)
	return shared.Paginate(views, shared.Filter{Page: input.Page, PageSize: s.pageSize}), nil
}

// History returns one page of archived orders, newest first
func (s *QueryService) History(ctx context.Context, page int) (shared.Paginated[OrderView], error) {
	views, err := s.AllHistory(ctx)
	if err != nil {
		return shared.Paginated[OrderView]{}, err
	}
	return shared.Paginate(views, shared.Filter{Page: page, PageSize: s.pageSize}), nil
}

// AllHistory returns every archived order, newest first
func (s *QueryService) AllHistory(ctx context.Context) ([]OrderView, error) {
	views := filterViews(s.aggregate.Snapshot(), func(v *OrderView) bool { return v.Origin.IsArchived() })
	SortNewestFirst(views)
	return views, nil
}

// StatusCounts returns the number of merged orders per status, in lifecycle order
func (s *QueryService) StatusCounts(ctx context.Context) []StatusCount {
	counts := make(map[order.Status]int)
	for _, v := range s.aggregate.Snapshot() {
		counts[v.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for _, status := range order.AllStatuses() {
		out = append(out, StatusCount{Status: status, Count: counts[status]})
	}
	return out
}

// GetOrder returns one order of a customer. Live orders are looked up first,
// then both archives.
func (s *QueryService) GetOrder(ctx context.Context, userID, orderID string) (*OrderView, error) {
	o, err := s.orders.FindLive(ctx, userID, orderID)
	if err == nil {
		owner := order.Owner{ID: userID}
		if found, ownerErr := s.owners.FindOwner(ctx, userID); ownerErr == nil {
			owner = *found
		}
		view := NewLiveView(o, owner)
		return &view, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	for _, kind := range order.ArchiveKinds() {
		archived, err := s.orders.FindArchived(ctx, kind, orderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if archived.UserID != userID {
			continue
		}
		view := NewArchivedView(archived)
		return &view, nil
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
}

// SortNewestFirst orders views by date descending, undated last, then by id
func SortNewestFirst(views []OrderView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Date, views[j].Date
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return views[i].ID < views[j].ID
	})
}

func isAllFilter(status string) bool {
	status = strings.TrimSpace(status)
	return status == "" || strings.EqualFold(status, order.StatusAll)
}

func filterViews(views []OrderView, keep func(*OrderView) bool) []OrderView {
	out := views[:0:0]
	for i := range views {
		if keep(&views[i]) {
			out = append(out, views[i])
		}
	}
	return out
}
