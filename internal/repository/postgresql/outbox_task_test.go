package postgresql_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.com/discrescue/admin/internal/db/mocks"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/repository/postgresql"
)

func TestOutboxTaskRepo_CreateTx(t *testing.T) {
	ctx := context.Background()
	payload := json.RawMessage(`{"order_id":"order-1"}`)

	t.Run("assigns id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOutboxTaskRepo()

		task := &repository.OutboxTask{Payload: payload, Topic: "order_events"}
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Eq(repository.TaskStatusCreated), gomock.Eq(payload), gomock.Eq("order_events"),
			gomock.Any(), gomock.Any(),
		).Return(pgconn.CommandTag("INSERT 0 1"), nil)

		require.NoError(t, repo.CreateTx(ctx, mockTx, task))
		assert.NotEqual(t, uuid.Nil, task.ID)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOutboxTaskRepo()

		expectedErr := errors.New("database error")
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, expectedErr)

		err := repo.CreateTx(ctx, mockTx, &repository.OutboxTask{Payload: payload})
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestOutboxTaskRepo_GetProcessableTasksTx(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewOutboxTaskRepo()

	mockTx.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(),
		gomock.Eq(repository.TaskStatusCreated),
		gomock.Eq(repository.TaskStatusFailed), gomock.Eq(5),
		gomock.Eq(repository.TaskStatusProcessing), gomock.Eq(300.0),
		gomock.Eq(10)).
		DoAndReturn(func(_ context.Context, dest interface{}, query string, _ ...interface{}) error {
			assert.Contains(t, query, "FOR UPDATE SKIP LOCKED")
			assert.Contains(t, query, "status = $4 AND updated_at < NOW() - make_interval(secs => $5)")
			*dest.(*[]*repository.OutboxTask) = []*repository.OutboxTask{{ID: uuid.New()}}
			return nil
		})

	tasks, err := repo.GetProcessableTasksTx(ctx, mockTx, 10, 5, 5*time.Minute)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestOutboxTaskRepo_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	completed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("done", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOutboxTaskRepo()

		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Eq(id), gomock.Eq(repository.TaskStatusDone),
			gomock.Eq(1), gomock.Nil(), gomock.Eq(&completed)).Return(pgconn.CommandTag("UPDATE 1"), nil)

		assert.NoError(t, repo.UpdateTaskStatus(ctx, mockDB, id, repository.TaskStatusDone, 1, nil, &completed))
	})

	t.Run("missing task", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOutboxTaskRepo()

		lastErr := "broker unavailable"
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Eq(id), gomock.Eq(repository.TaskStatusFailed),
			gomock.Eq(2), gomock.Eq(&lastErr), gomock.Nil()).Return(pgconn.CommandTag("UPDATE 0"), nil)

		err := repo.UpdateTaskStatusTx(ctx, mockTx, id, repository.TaskStatusFailed, 2, &lastErr, nil)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}
