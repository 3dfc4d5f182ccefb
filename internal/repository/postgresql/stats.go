package postgresql

import (
	"context"
	"fmt"

	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/storage"
)

type StatsRepo struct {
	db db.DB
}

func NewStatsRepo(db db.DB) storage.StatsRepository {
	return &StatsRepo{db: db}
}

func (r *StatsRepo) DashboardCounts(ctx context.Context) (*repository.DashboardCounts, error) {
	var counts repository.DashboardCounts
	err := r.db.Get(ctx, &counts, `
        SELECT
            (SELECT COUNT(*) FROM sticker_orders WHERE status IN ('paid', 'processing')) AS pending_orders,
            (SELECT COALESCE(SUM(total_price_cents), 0)::bigint FROM sticker_orders
                WHERE status IN ('paid', 'processing', 'printed', 'shipped', 'delivered')) AS revenue_cents,
            (SELECT COUNT(*) FROM profiles) AS total_users,
            (SELECT COUNT(*) FROM discs) AS total_discs,
            (SELECT COUNT(*) FROM recovery_events WHERE status = 'recovered') AS successful_recoveries
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
	}
	return &counts, nil
}
