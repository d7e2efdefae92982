package order

import (
	"context"
	"errors"
	"strings"
	"fmt"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/logger"
	"github.com/shopadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LifecycleService changes the status of live orders
type LifecycleService struct {
	orders   order.Repository
	owners   order.OwnerDirectory
	notifier Notifier
	events   shared.EventPublisher
	metrics  *telemetry.OrderMetrics
	logger   *zap.Logger
}

// NewLifecycleService creates a new LifecycleService. notifier, events and
// metrics may be nil.
func NewLifecycleService(
	orders order.Repository,
	owners order.OwnerDirectory,
	notifier Notifier,
	events shared.EventPublisher,
	metrics *telemetry.OrderMetrics,
	log *zap.Logger,
) *LifecycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{
		orders:   orders,
		owners:   owners,
		notifier: notifier,
		events:   events,
		metrics:  metrics,
		logger:   log,
	}
}

// ChangeStatus moves a live order to a new status and notifies the customer.
// A failed notification is logged and does not undo the change.
func (s *LifecycleService) ChangeStatus(ctx context.Context, input ChangeStatusInput) (*OrderView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_lifecycle", "change_status",
		telemetry.AttrOrderID, input.OrderID,
		telemetry.AttrUserID, input.UserID,
		telemetry.AttrOrderStatus, input.Status,
	)
	defer span.End()
	log := logger.Enrich(ctx, s.logger)

	target, err := order.ParseStatus(input.Status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	o, err := s.orders.FindLive(ctx, input.UserID, input.OrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	previous, err := o.ChangeStatus(target)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, input.UserID, input.OrderID, target); err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to update order status",
			zap.String("order_id", input.OrderID),
			zap.String("user_id", input.UserID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("update status of order %s: %w", input.OrderID, err)
	}
	s.metrics.RecordStatusChange(ctx, previous.String(), target.String())

	log.Info("Order status changed",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("from", previous.String()),
		zap.String("to", target.String()),
	)

	owner := s.findOwner(ctx, input.UserID)
	view := NewLiveView(o, owner)

	if s.events != nil {
		if err := s.events.Publish(ctx, order.NewOrderStatusChangedEvent(o, previous)); err != nil {
			log.Warn("Failed to publish order status event", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	s.notify(ctx, log, StatusNotification{
		Email:   notificationEmail(owner, o),
		Name:    notificationName(owner, o),
		OrderID: o.ID,
		Status:  target.String(),
	})
	return &view, nil
}

func (s *LifecycleService) findOwner(ctx context.Context, userID string) order.Owner {
	if s.owners == nil {
		return order.Owner{ID: userID}
	}
	owner, err := s.owners.FindOwner(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load order owner", zap.String("user_id", userID), zap.Error(err))
		}
		return order.Owner{ID: userID}
	}
	return *owner
}

func (s *LifecycleService) notify(ctx context.Context, log *zap.Logger, n StatusNotification) {
	if s.notifier == nil {
		return
	}
	if n.Email == "" {
		log.Info("Skipping status notification, customer has no email", zap.String("order_id", n.OrderID))
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, n); err != nil {
		s.metrics.RecordNotificationFailure(ctx)
		log.Warn("Failed to send order status notification",
			zap.String("order_id", n.OrderID),
			zap.String("status", n.Status),
			zap.Error(err),
		)
	}
}

// notificationEmail prefers the account email and falls back to the address
// entered at checkout
// notificationName greets the customer by the name given at checkout,
// falling back to the profile name
func notificationName(owner order.Owner, o *order.Order) string {
	if name := strings.TrimSpace(o.CustomerName); name != "" {
		return name
	}
	return owner.DisplayName()
}

func notificationEmail(owner order.Owner, o *order.Order) string {
	if owner.Email != "" {
		return owner.Email
	}
	return o.Email
}
