package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/logger"
	"github.com/shopadmin/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ArchiveService moves terminal orders from a customer's live collection to
// the matching archive
type ArchiveService struct {
	orders  order.Repository
	owners  order.OwnerDirectory
	events  shared.EventPublisher
	metrics *telemetry.OrderMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewArchiveService creates a new ArchiveService. events and metrics may be nil.
func NewArchiveService(
	orders order.Repository,
	owners order.OwnerDirectory,
	events shared.EventPublisher,
	metrics *telemetry.OrderMetrics,
	log *zap.Logger,
) *ArchiveService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ArchiveService{
		orders:  orders,
		owners:  owners,
		events:  events,
		metrics: metrics,
		logger:  log,
		now:     time.Now,
	}
}

// Archive copies a completed or cancelled order to its archive and then
// deletes the live document. The copy is keyed by the order id, so calling
// Archive again after a partial failure finishes the move without duplicating
// the entry. An order that is already archived is returned as is.
//
// When the copy succeeds but the delete fails, the error matches
// shared.ErrArchiveIncomplete.
func (s *ArchiveService) Archive(ctx context.Context, userID, orderID string) (*OrderView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_archive", "archive",
		telemetry.AttrOrderID, orderID,
		telemetry.AttrUserID, userID,
	)
	defer span.End()
	log := logger.Enrich(ctx, s.logger)

	o, err := s.orders.FindLive(ctx, userID, orderID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		archived, findErr := s.findArchived(ctx, userID, orderID)
		if findErr != nil {
			telemetry.RecordError(span, findErr)
			return nil, findErr
		}
		log.Info("Order already archived", zap.String("order_id", orderID), zap.String("kind", string(archived.Kind)))
		view := NewArchivedView(archived)
		return &view, nil
	}

	archived, err := order.NewArchivedOrder(o, s.findOwner(ctx, userID), s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.Attribute(telemetry.AttrArchiveKind, string(archived.Kind)))

	if err := s.checkArchiveSlot(ctx, archived); err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Archive entry held by another customer",
			zap.String("order_id", orderID),
			zap.String("user_id", userID),
			zap.String("kind", string(archived.Kind)),
		)
		return nil, err
	}

	if err := s.orders.SaveArchived(ctx, archived); err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to write archive copy",
			zap.String("order_id", orderID),
			zap.String("kind", string(archived.Kind)),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.orders.DeleteLive(ctx, userID, orderID); err != nil {
		incomplete := shared.ErrArchiveIncomplete.WithCause(err)
		telemetry.RecordError(span, incomplete)
		s.metrics.RecordArchiveIncomplete(ctx)
		log.Error("Archive copy written but live order not removed",
			zap.String("order_id", orderID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, incomplete
	}
	s.metrics.RecordArchived(ctx, string(archived.Kind))

	log.Info("Order archived",
		zap.String("order_id", orderID),
		zap.String("user_id", userID),
		zap.String("kind", string(archived.Kind)),
	)

	if s.events != nil {
		if err := s.events.Publish(ctx, order.NewOrderArchivedEvent(archived)); err != nil {
			log.Warn("Failed to publish order archived event", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	view := NewArchivedView(archived)
	return &view, nil
}

// findArchived looks for the order in both archives. An entry that belongs to
// another customer counts as missing.
func (s *ArchiveService) findArchived(ctx context.Context, userID, orderID string) (*order.ArchivedOrder, error) {
	for _, kind := range order.ArchiveKinds() {
		archived, err := s.orders.FindArchived(ctx, kind, orderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if archived.UserID == userID {
			return archived, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
}

func (s *ArchiveService) findOwner(ctx context.Context, userID string) order.Owner {
	owner, err := s.owners.FindOwner(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load order owner", zap.String("user_id", userID), zap.Error(err))
		}
		return order.Owner{ID: userID}
	}
	return *owner
}

// checkArchiveSlot refuses to overwrite an archive entry that belongs to a
// different customer. Order ids are only unique per customer while archive
// entries are keyed by order id alone.
func (s *ArchiveService) checkArchiveSlot(ctx context.Context, archived *order.ArchivedOrder) error {
	existing, err := s.orders.FindArchived(ctx, archived.Kind, archived.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.UserID != "" && existing.UserID != archived.UserID {
		return shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Order %s is already archived for another customer", archived.ID))
	}
	return nil
}
