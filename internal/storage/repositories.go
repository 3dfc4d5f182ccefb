//go:generate mockgen -source ./repositories.go -destination=./mocks/repositories.go -package=mock_storage
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/repository"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]*repository.Order, error)
	Count(ctx context.Context, filter repository.OrderFilter) (int, error)
	ApplyUpdateTx(ctx context.Context, tx db.Tx, id, expectedStatus string, update repository.OrderUpdate) error
	GetStuck(ctx context.Context, updatedBefore time.Time, limit int) ([]*repository.Order, error)
	GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error)
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByOrderID(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error)
}

type PlasticRepository interface {
	List(ctx context.Context, filter repository.PlasticFilter) ([]*repository.PlasticType, error)
	CountByStatus(ctx context.Context) ([]repository.StatusCount, error)
	GetByID(ctx context.Context, id string) (*repository.PlasticType, error)
	UpdateStatus(ctx context.Context, id, expectedStatus, status string, approvedAt *time.Time, approvedBy *string) error
	Delete(ctx context.Context, id string) error
}

type StatsRepository interface {
	DashboardCounts(ctx context.Context) (*repository.DashboardCounts, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, username, password, role string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
	GetProcessableTasksTx(ctx context.Context, tx db.Tx, limit, maxAttempts int, claimLease time.Duration) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, db db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
}
