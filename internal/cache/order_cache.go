package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/fulfillment"
	"gitlab.com/discrescue/admin/internal/metrics"
	"gitlab.com/discrescue/admin/internal/repository"
)

type OrderRepository interface {
	GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error)
}

// OrderCache holds orders that can still move through fulfillment.
// Terminal and off-chain orders are never cached.
type OrderCache struct {
	mu     sync.RWMutex
	cache  map[string]*repository.Order
	repo   OrderRepository
	logger *zap.Logger
}

func NewOrderCache(repo OrderRepository, logger *zap.Logger) *OrderCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderCache{
		cache:  make(map[string]*repository.Order),
		repo:   repo,
		logger: logger,
	}
}

func (c *OrderCache) LoadInitialData(ctx context.Context) error {
	c.logger.Info("Loading initial data into order cache")
	orders, err := c.repo.GetAllActiveOrders(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, order := range orders {
		if !cacheable(order.Status) {
			continue
		}
		orderCopy := *order
		c.cache[order.ID] = &orderCopy
	}
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
	c.logger.Info("Order cache loaded", zap.Int("orders", len(c.cache)))
	return nil
}

func (c *OrderCache) Get(orderID string) (*repository.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	order, found := c.cache[orderID]
	if !found {
		return nil, false
	}
	orderCopy := *order
	return &orderCopy, true
}

func (c *OrderCache) Set(order *repository.Order) {
	if !cacheable(order.Status) {
		c.Delete(order.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	orderCopy := *order
	c.cache[order.ID] = &orderCopy
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
	c.logger.Debug("Cache: set order", zap.String("order_id", order.ID), zap.String("status", order.Status))
}

func (c *OrderCache) Delete(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[orderID]; found {
		delete(c.cache, orderID)
		metrics.OrderCacheItems.Set(float64(len(c.cache)))
		c.logger.Debug("Cache: deleted order", zap.String("order_id", orderID))
	}
}

func (c *OrderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func cacheable(status string) bool {
	s := fulfillment.Status(status)
	return s.Valid() && !s.Terminal()
}
