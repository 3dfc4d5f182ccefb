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

const plasticColumns = `id, manufacturer, plastic_name, display_order, status, submitted_by, approved_at, approved_by, created_at`

type PlasticRepo struct {
	db db.DB
}

func NewPlasticRepo(db db.DB) storage.PlasticRepository {
	return &PlasticRepo{db: db}
}

func (r *PlasticRepo) List(ctx context.Context, filter repository.PlasticFilter) ([]*repository.PlasticType, error) {
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Manufacturer != "" {
		args = append(args, filter.Manufacturer)
		conds = append(conds, fmt.Sprintf("manufacturer = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		conds = append(conds, fmt.Sprintf(`plastic_name ILIKE $%d ESCAPE '\'`, len(args)))
	}

	query := "SELECT " + plasticColumns + " FROM plastic_types"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY manufacturer ASC, display_order ASC NULLS LAST, plastic_name ASC"

	var plastics []*repository.PlasticType
	if err := r.db.Select(ctx, &plastics, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list plastic types: %w", err)
	}
	return plastics, nil
}

func (r *PlasticRepo) CountByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	var counts []repository.StatusCount
	err := r.db.Select(ctx, &counts, "SELECT status, COUNT(*) AS count FROM plastic_types GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count plastic types: %w", err)
	}
	return counts, nil
}

func (r *PlasticRepo) GetByID(ctx context.Context, id string) (*repository.PlasticType, error) {
	var plastic repository.PlasticType
	err := r.db.Get(ctx, &plastic, "SELECT "+plasticColumns+" FROM plastic_types WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &plastic, nil
}

// UpdateStatus moves a plastic type out of expectedStatus. approvedAt and
// approvedBy are only written when non-nil.
func (r *PlasticRepo) UpdateStatus(ctx context.Context, id, expectedStatus, status string, approvedAt *time.Time, approvedBy *string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE plastic_types
        SET
            status = $1,
            approved_at = COALESCE($2, approved_at),
            approved_by = COALESCE($3, approved_by)
        WHERE id = $4 AND status = $5
    `, status, approvedAt, approvedBy, id, expectedStatus)
	if err != nil {
		return fmt.Errorf("failed to update plastic type %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return repository.ErrConflict
}

func (r *PlasticRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM plastic_types WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete plastic type %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}
