package postgresql_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.com/discrescue/admin/internal/db/mocks"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/repository/postgresql"
)

func TestOrderRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			DoAndReturn(func(_ context.Context, dest interface{}, query string, _ ...interface{}) error {
				assert.Contains(t, query, "FROM sticker_orders WHERE id = $1")
				order := dest.(*repository.Order)
				order.ID = "order-123"
				order.OrderNumber = "DR-0001"
				order.Status = "paid"
				return nil
			})

		order, err := repo.GetByID(ctx, "order-123")
		require.NoError(t, err)
		assert.Equal(t, "DR-0001", order.OrderNumber)
		assert.Equal(t, "paid", order.Status)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(pgx.ErrNoRows)

		order, err := repo.GetByID(ctx, "missing")
		assert.Nil(t, order)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(expectedErr)

		_, err := repo.GetByID(ctx, "order-123")
		assert.Equal(t, expectedErr, err)
	})
}

func TestOrderRepo_List(t *testing.T) {
	ctx := context.Background()

	t.Run("filters and paginates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq("processing"), gomock.Eq("%DR-12%"), gomock.Eq(20), gomock.Eq(40)).
			DoAndReturn(func(_ context.Context, dest interface{}, query string, _ ...interface{}) error {
				assert.Contains(t, query, `WHERE status = $1 AND order_number ILIKE $2 ESCAPE '\'`)
				assert.Contains(t, query, "LIMIT $3 OFFSET $4")
				*dest.(*[]*repository.Order) = []*repository.Order{{ID: "a"}, {ID: "b"}}
				return nil
			})

		orders, err := repo.List(ctx, repository.OrderFilter{Status: "processing", Search: "DR-12", Limit: 20, Offset: 40})
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("search wildcards match literally", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(`%50\%\_a\\b%`)).
			DoAndReturn(func(_ context.Context, _ interface{}, query string, _ ...interface{}) error {
				assert.Contains(t, query, `order_number ILIKE $1 ESCAPE '\'`)
				return nil
			})

		_, err := repo.List(ctx, repository.OrderFilter{Search: `50%_a\b`})
		assert.NoError(t, err)
	})

	t.Run("all status is unfiltered", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ interface{}, query string, _ ...interface{}) error {
				assert.False(t, strings.Contains(query, "WHERE"))
				assert.False(t, strings.Contains(query, "LIMIT"))
				return nil
			})

		_, err := repo.List(ctx, repository.OrderFilter{Status: "all"})
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).Return(expectedErr)

		_, err := repo.List(ctx, repository.OrderFilter{})
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestOrderRepo_Count(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewOrderRepo(mockDB)

	mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("shipped")).
		DoAndReturn(func(_ context.Context, dest interface{}, query string, _ ...interface{}) error {
			assert.Contains(t, query, "SELECT COUNT(*) FROM sticker_orders WHERE status = $1")
			*dest.(*int) = 42
			return nil
		})

	count, err := repo.Count(ctx, repository.OrderFilter{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestOrderRepo_ApplyUpdateTx(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	update := repository.OrderUpdate{
		Status:    "processing",
		UpdatedAt: now,
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mock_database.NewMockDB(ctrl))

		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(),
			gomock.Eq("processing"), gomock.Nil(), gomock.Nil(), gomock.Nil(),
			gomock.Eq(now), gomock.Eq("order-123"), gomock.Eq("paid"),
		).Return(pgconn.CommandTag("UPDATE 1"), nil)

		assert.NoError(t, repo.ApplyUpdateTx(ctx, mockTx, "order-123", "paid", update))
	})

	t.Run("conflict when status moved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mock_database.NewMockDB(ctrl))

		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(pgconn.CommandTag("UPDATE 0"), nil)
		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*bool) = true
				return nil
			})

		err := repo.ApplyUpdateTx(ctx, mockTx, "order-123", "paid", update)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mock_database.NewMockDB(ctrl))

		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(pgconn.CommandTag("UPDATE 0"), nil)
		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		err := repo.ApplyUpdateTx(ctx, mockTx, "order-123", "paid", update)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mock_database.NewMockDB(ctrl))

		expectedErr := errors.New("connection reset")
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, expectedErr)

		err := repo.ApplyUpdateTx(ctx, mockTx, "order-123", "paid", update)
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestOrderRepo_GetStuck(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewOrderRepo(mockDB)

	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(cutoff), gomock.Eq(5)).
		DoAndReturn(func(_ context.Context, dest interface{}, query string, _ ...interface{}) error {
			assert.Contains(t, query, "status = 'processing' AND updated_at < $1")
			*dest.(*[]*repository.Order) = []*repository.Order{{ID: "stuck"}}
			return nil
		})

	orders, err := repo.GetStuck(ctx, cutoff, 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "stuck", orders[0].ID)
}

func TestOrderRepo_GetAllActiveOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*[]*repository.Order) = []*repository.Order{{ID: "a", Status: "paid"}}
				return nil
			})

		orders, err := repo.GetAllActiveOrders(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("boom"))

		_, err := repo.GetAllActiveOrders(ctx)
		assert.Error(t, err)
	})
}
