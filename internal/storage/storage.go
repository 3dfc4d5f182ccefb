package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/cache"
	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/fulfillment"
	"gitlab.com/discrescue/admin/internal/identity"
	"gitlab.com/discrescue/admin/internal/metrics"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/review"
)

const (
	OrderStatusChangedEvent = "OrderStatusChanged"

	stuckAfter      = 24 * time.Hour
	stuckAlertLimit = 5
)

type Repositories struct {
	Orders   OrderRepository
	History  HistoryRepository
	Plastics PlasticRepository
	Stats    StatsRepository
	Outbox   OutboxTaskRepository
}

type PostgresStorage struct {
	db          db.DB
	orderRepo   OrderRepository
	historyRepo HistoryRepository
	plasticRepo PlasticRepository
	statsRepo   StatsRepository
	outboxRepo  OutboxTaskRepository
	cache       *cache.OrderCache
	topic       string
	logger      *zap.Logger
	timeNow     func() time.Time
}

func NewStorage(database db.DB, repos Repositories, orderCache *cache.OrderCache, topic string, logger *zap.Logger) *PostgresStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	if orderCache == nil {
		orderCache = cache.NewOrderCache(repos.Orders, logger)
	}
	return &PostgresStorage{
		db:          database,
		orderRepo:   repos.Orders,
		historyRepo: repos.History,
		plasticRepo: repos.Plastics,
		statsRepo:   repos.Stats,
		outboxRepo:  repos.Outbox,
		cache:       orderCache,
		topic:       topic,
		logger:      logger,
		timeNow:     time.Now,
	}
}

// GetOrder always reads the row, since the storefront changes orders outside
// this service. The cached copy is only served when the read fails for a
// reason other than a missing row.
func (s *PostgresStorage) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	repoOrder, err := s.loadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, fulfillment.ErrNotFound) {
			return nil, err
		}
		if cached, found := s.cache.Get(orderID); found {
			s.logger.Warn("Serving cached order after read failure",
				zap.String("order_id", orderID), zap.Error(err))
			return orderFromRepo(cached), nil
		}
		return nil, err
	}
	return orderFromRepo(repoOrder), nil
}

func (s *PostgresStorage) loadOrder(ctx context.Context, orderID string) (*repository.Order, error) {
	repoOrder, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			s.cache.Delete(orderID)
			return nil, fmt.Errorf("order %s: %w", orderID, fulfillment.ErrNotFound)
		}
		metrics.OperationErrorsTotal.WithLabelValues("get_order").Inc()
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	s.cache.Set(repoOrder)
	return repoOrder, nil
}

// ReadOrder and ApplyOrderUpdate make PostgresStorage the persistence
// collaborator of the fulfillment machine. Transitions never decide on a
// cached snapshot.
func (s *PostgresStorage) ReadOrder(ctx context.Context, orderID string) (fulfillment.Order, error) {
	repoOrder, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return fulfillment.Order{}, err
	}
	return orderFromRepo(repoOrder).Snapshot(), nil
}

func (s *PostgresStorage) ApplyOrderUpdate(ctx context.Context, orderID string, expected fulfillment.Status, update fulfillment.Update) (err error) {
	logger := s.logger.With(
		zap.String("order_id", orderID),
		zap.String("from", string(expected)),
		zap.String("to", string(update.Status)),
	)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("apply_order_update").Inc()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Warn("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	now := s.timeNow().UTC()
	err = s.orderRepo.ApplyUpdateTx(ctx, tx, orderID, string(expected), repository.OrderUpdate{
		Status:         string(update.Status),
		PrintedAt:      update.PrintedAt,
		ShippedAt:      update.ShippedAt,
		TrackingNumber: update.TrackingNumber,
		UpdatedAt:      now,
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		s.cache.Delete(orderID)
		logger.Info("Order changed concurrently")
		return fmt.Errorf("order %s: %w", orderID, fulfillment.ErrConflict)
	case errors.Is(err, repository.ErrObjectNotFound):
		s.cache.Delete(orderID)
		return fmt.Errorf("order %s: %w", orderID, fulfillment.ErrNotFound)
	case err != nil:
		metrics.OperationErrorsTotal.WithLabelValues("apply_order_update").Inc()
		return fmt.Errorf("failed to update order: %w", err)
	}

	changedBy := identity.FromContext(ctx).Name()
	err = s.historyRepo.CreateTx(ctx, tx, &repository.HistoryEntry{
		OrderID:   orderID,
		Status:    string(update.Status),
		ChangedBy: changedBy,
		ChangedAt: now,
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("apply_order_update").Inc()
		return fmt.Errorf("failed to add order history entry: %w", err)
	}

	payload, err := json.Marshal(repository.OrderEventPayload{
		EventID:        uuid.NewString(),
		Type:           OrderStatusChangedEvent,
		OrderID:        orderID,
		OldStatus:      string(expected),
		NewStatus:      string(update.Status),
		TrackingNumber: update.TrackingNumber,
		ChangedBy:      changedBy,
		OccurredAt:     now,
		PrintedAt:      update.PrintedAt,
		ShippedAt:      update.ShippedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	err = s.outboxRepo.CreateTx(ctx, tx, &repository.OutboxTask{
		Payload: payload,
		Topic:   s.topic,
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("apply_order_update").Inc()
		return fmt.Errorf("failed to enqueue order event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("apply_order_update").Inc()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.refreshCache(orderID, update, now)
	metrics.OrderTransitionsTotal.WithLabelValues(string(expected), string(update.Status)).Inc()
	logger.Info("Order status updated", zap.String("changed_by", changedBy))
	return nil
}

func (s *PostgresStorage) refreshCache(orderID string, update fulfillment.Update, now time.Time) {
	cached, found := s.cache.Get(orderID)
	if !found {
		return
	}
	cached.Status = string(update.Status)
	if update.PrintedAt != nil {
		cached.PrintedAt = update.PrintedAt
	}
	if update.ShippedAt != nil {
		cached.ShippedAt = update.ShippedAt
	}
	if update.TrackingNumber != nil {
		cached.TrackingNumber = update.TrackingNumber
	}
	cached.UpdatedAt = now
	s.cache.Set(cached)
}

func (s *PostgresStorage) ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	repoFilter := repository.OrderFilter{
		Status: filter.Status,
		Search: filter.Search,
		Limit:  OrdersPageSize,
		Offset: (page - 1) * OrdersPageSize,
	}

	total, err := s.orderRepo.Count(ctx, repoFilter)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("list_orders").Inc()
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	repoOrders, err := s.orderRepo.List(ctx, repoFilter)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("list_orders").Inc()
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]Order, len(repoOrders))
	for i, repoOrder := range repoOrders {
		orders[i] = *orderFromRepo(repoOrder)
	}

	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		TotalPages: (total + OrdersPageSize - 1) / OrdersPageSize,
	}, nil
}

func (s *PostgresStorage) GetOrderHistory(ctx context.Context, orderID string) ([]HistoryEntry, error) {
	repoEntries, err := s.historyRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}

	entries := make([]HistoryEntry, len(repoEntries))
	for i, repoEntry := range repoEntries {
		entries[i] = HistoryEntry{
			OrderID:   repoEntry.OrderID,
			Status:    repoEntry.Status,
			ChangedBy: repoEntry.ChangedBy,
			ChangedAt: repoEntry.ChangedAt,
		}
	}

	return entries, nil
}

func plasticFromRepo(p *repository.PlasticType) PlasticType {
	return PlasticType{
		ID:           p.ID,
		Manufacturer: p.Manufacturer,
		PlasticName:  p.PlasticName,
		DisplayOrder: p.DisplayOrder,
		Status:       p.Status,
		SubmittedBy:  p.SubmittedBy,
		ApprovedAt:   p.ApprovedAt,
		ApprovedBy:   p.ApprovedBy,
		CreatedAt:    p.CreatedAt,
	}
}

// ListPlastics returns the filtered plastic types together with the number
// of plastic types in every status, regardless of the filter.
func (s *PostgresStorage) ListPlastics(ctx context.Context, filter PlasticFilter) (*PlasticPage, error) {
	repoPlastics, err := s.plasticRepo.List(ctx, filter)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("list_plastics").Inc()
		return nil, fmt.Errorf("failed to list plastic types: %w", err)
	}

	statusCounts, err := s.plasticRepo.CountByStatus(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("list_plastics").Inc()
		return nil, fmt.Errorf("failed to count plastic types: %w", err)
	}

	counts := map[string]int{"all": 0}
	for _, c := range statusCounts {
		counts[c.Status] = c.Count
		counts["all"] += c.Count
	}

	plastics := make([]PlasticType, len(repoPlastics))
	for i, p := range repoPlastics {
		plastics[i] = plasticFromRepo(p)
	}

	return &PlasticPage{Plastics: plastics, Counts: counts}, nil
}

func (s *PostgresStorage) ReviewPlastic(ctx context.Context, plasticID string, decision review.Decision) (*PlasticType, error) {
	current, err := s.plasticRepo.GetByID(ctx, plasticID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, fmt.Errorf("plastic type %s: %w", plasticID, review.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plastic type: %w", err)
	}

	next, err := review.Decide(review.Status(current.Status), decision)
	if err != nil {
		return nil, err
	}

	var approvedAt *time.Time
	var approvedBy *string
	if next == review.StatusApproved {
		now := s.timeNow().UTC()
		reviewer := identity.FromContext(ctx).Name()
		approvedAt = &now
		approvedBy = &reviewer
	}

	err = s.plasticRepo.UpdateStatus(ctx, plasticID, current.Status, string(next), approvedAt, approvedBy)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return nil, fmt.Errorf("plastic type %s: %w", plasticID, review.ErrConflict)
	case errors.Is(err, repository.ErrObjectNotFound):
		return nil, fmt.Errorf("plastic type %s: %w", plasticID, review.ErrNotFound)
	case err != nil:
		metrics.OperationErrorsTotal.WithLabelValues("review_plastic").Inc()
		return nil, fmt.Errorf("failed to update plastic type: %w", err)
	}

	metrics.PlasticReviewsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info("Plastic type reviewed",
		zap.String("plastic_id", plasticID),
		zap.String("status", string(next)),
	)

	updated := plasticFromRepo(current)
	updated.Status = string(next)
	updated.ApprovedAt = approvedAt
	updated.ApprovedBy = approvedBy
	return &updated, nil
}

func (s *PostgresStorage) DeletePlastic(ctx context.Context, plasticID string) error {
	if err := s.plasticRepo.Delete(ctx, plasticID); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return fmt.Errorf("plastic type %s: %w", plasticID, review.ErrNotFound)
		}
		metrics.OperationErrorsTotal.WithLabelValues("delete_plastic").Inc()
		return fmt.Errorf("failed to delete plastic type: %w", err)
	}
	s.logger.Info("Plastic type deleted", zap.String("plastic_id", plasticID))
	return nil
}

func (s *PostgresStorage) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.statsRepo.DashboardCounts(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("dashboard").Inc()
		return nil, fmt.Errorf("failed to get dashboard counts: %w", err)
	}

	stuck, err := s.orderRepo.GetStuck(ctx, s.timeNow().Add(-stuckAfter), stuckAlertLimit)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("dashboard").Inc()
		return nil, fmt.Errorf("failed to get stuck orders: %w", err)
	}

	alerts := make([]Alert, 0, len(stuck))
	for _, o := range stuck {
		alerts = append(alerts, Alert{
			ID:          o.ID,
			Type:        "stuck_order",
			Title:       fmt.Sprintf("Order %s stuck in processing", o.OrderNumber),
			Description: fmt.Sprintf("Status: %s - hasn't been updated in 24+ hours", o.Status),
			Link:        "/orders/" + o.ID,
			Timestamp:   o.CreatedAt,
		})
	}

	return &Dashboard{
		PendingOrders:        counts.PendingOrders,
		RevenueCents:         counts.RevenueCents,
		TotalUsers:           counts.TotalUsers,
		TotalDiscs:           counts.TotalDiscs,
		SuccessfulRecoveries: counts.SuccessfulRecoveries,
		RecoveryRate:         recoveryRate(counts.SuccessfulRecoveries, counts.TotalDiscs),
		Alerts:               alerts,
	}, nil
}

// recoveryRate is the percentage of registered discs recovered, to one decimal.
func recoveryRate(recovered, discs int) float64 {
	if discs == 0 || recovered == 0 {
		return 0
	}
	return math.Round(float64(recovered)/float64(discs)*1000) / 10
}
