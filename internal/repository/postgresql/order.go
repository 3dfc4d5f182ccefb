package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"

	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/storage"
)

const orderColumns = `id, order_number, user_id, status, quantity, total_price_cents, tracking_number,
        shipping_address_id, printed_at, shipped_at, created_at, updated_at`

type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) storage.OrderRepository {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	var order repository.Order
	err := r.db.Get(ctx, &order, "SELECT "+orderColumns+" FROM sticker_orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func orderWhere(filter repository.OrderFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		conds = append(conds, fmt.Sprintf(`order_number ILIKE $%d ESCAPE '\'`, len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *OrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*repository.Order, error) {
	where, args := orderWhere(filter)
	query := "SELECT " + orderColumns + " FROM sticker_orders" + where + " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var orders []*repository.Order
	if err := r.db.Select(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) Count(ctx context.Context, filter repository.OrderFilter) (int, error) {
	where, args := orderWhere(filter)

	var count int
	if err := r.db.Get(ctx, &count, "SELECT COUNT(*) FROM sticker_orders"+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// ApplyUpdateTx writes update only if the row still has expectedStatus.
func (r *OrderRepo) ApplyUpdateTx(ctx context.Context, tx db.Tx, id, expectedStatus string, update repository.OrderUpdate) error {
	tag, err := tx.Exec(ctx, `
        UPDATE sticker_orders
        SET
            status = $1,
            printed_at = COALESCE($2, printed_at),
            shipped_at = COALESCE($3, shipped_at),
            tracking_number = COALESCE($4, tracking_number),
            updated_at = $5
        WHERE id = $6 AND status = $7
    `, update.Status, update.PrintedAt, update.ShippedAt, update.TrackingNumber, update.UpdatedAt, id, expectedStatus)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := tx.Get(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM sticker_orders WHERE id = $1)", id); err != nil {
		return fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if !exists {
		return repository.ErrObjectNotFound
	}
	return repository.ErrConflict
}

func (r *OrderRepo) GetStuck(ctx context.Context, updatedBefore time.Time, limit int) ([]*repository.Order, error) {
	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, `
        SELECT `+orderColumns+` FROM sticker_orders
        WHERE status = 'processing' AND updated_at < $1
        ORDER BY created_at ASC
        LIMIT $2
    `, updatedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get stuck orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) GetAllActiveOrders(ctx context.Context) ([]*repository.Order, error) {
	query := `
        SELECT ` + orderColumns + ` FROM sticker_orders
        WHERE status IN ('paid', 'processing', 'printed', 'shipped')
        ORDER BY created_at ASC
    `
	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all active orders: %w", err)
	}
	return orders, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a substring ILIKE pattern matching s literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
