package postgresql

import (
	"context"

	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/storage"
)

type HistoryRepo struct {
	db db.DB
}

func NewHistoryRepo(db db.DB) storage.HistoryRepository {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO order_history (
            order_id, status, changed_by, changed_at
        ) VALUES ($1, $2, $3, $4)
    `, entry.OrderID, entry.Status, entry.ChangedBy, entry.ChangedAt)
	return err
}

func (r *HistoryRepo) GetByOrderID(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error) {
	var entries []*repository.HistoryEntry
	err := r.db.Select(ctx, &entries, `
        SELECT id, order_id, status, changed_by, changed_at FROM order_history
        WHERE order_id = $1
        ORDER BY changed_at ASC
    `, orderID)
	return entries, err
}
