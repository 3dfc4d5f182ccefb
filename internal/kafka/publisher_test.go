package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.com/discrescue/admin/internal/db/mocks"
	mock_kafka "gitlab.com/discrescue/admin/internal/kafka/mocks"
	"gitlab.com/discrescue/admin/internal/repository"
	mock_storage "gitlab.com/discrescue/admin/internal/storage/mocks"
)

var fixedTime = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

type publisherDeps struct {
	db       *mock_database.MockDB
	tx       *mock_database.MockTx
	repo     *mock_storage.MockOutboxTaskRepository
	producer *mock_kafka.MockProducer
}

func newTestPublisher(t *testing.T) (*Publisher, publisherDeps) {
	ctrl := gomock.NewController(t)
	deps := publisherDeps{
		db:       mock_database.NewMockDB(ctrl),
		tx:       mock_database.NewMockTx(ctrl),
		repo:     mock_storage.NewMockOutboxTaskRepository(ctrl),
		producer: mock_kafka.NewMockProducer(ctrl),
	}
	p := NewPublisher(deps.db, deps.repo, deps.producer, PublisherConfig{
		PollInterval: time.Second,
		BatchSize:    10,
		MaxAttempts:  3,
		ClaimLease:   time.Minute,
	}, nil)
	p.timeNow = func() time.Time { return fixedTime }
	return p, deps
}

func TestPublisher_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	task := &repository.OutboxTask{
		ID:      uuid.New(),
		Topic:   "order_events",
		Payload: []byte(`{"order_id":"order-1","new_status":"shipped"}`),
	}

	t.Run("publishes and marks done", func(t *testing.T) {
		p, deps := newTestPublisher(t)

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).Return([]*repository.OutboxTask{task}, nil)
		deps.repo.EXPECT().UpdateTaskStatusTx(ctx, deps.tx, task.ID, repository.TaskStatusProcessing, 0, nil, nil).Return(nil)
		deps.tx.EXPECT().Commit(ctx).Return(nil)
		deps.producer.EXPECT().SendMessage(ctx, "order_events", []byte("order-1"), []byte(task.Payload)).Return(nil)
		deps.repo.EXPECT().UpdateTaskStatus(ctx, deps.db, task.ID, repository.TaskStatusDone, 0, nil, &fixedTime).Return(nil)

		require.NoError(t, p.processBatch(ctx))
	})

	t.Run("send failure marks failed with attempt", func(t *testing.T) {
		p, deps := newTestPublisher(t)
		sendErr := errors.New("broker unavailable")

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).Return([]*repository.OutboxTask{task}, nil)
		deps.repo.EXPECT().UpdateTaskStatusTx(ctx, deps.tx, task.ID, repository.TaskStatusProcessing, 0, nil, nil).Return(nil)
		deps.tx.EXPECT().Commit(ctx).Return(nil)
		deps.producer.EXPECT().SendMessage(ctx, "order_events", gomock.Any(), gomock.Any()).Return(sendErr)
		deps.repo.EXPECT().UpdateTaskStatus(ctx, deps.db, task.ID, repository.TaskStatusFailed, 1, gomock.Any(), nil).DoAndReturn(
			func(_ context.Context, _ any, _ uuid.UUID, _ repository.TaskStatus, _ int, lastError *string, _ *time.Time) error {
				require.NotNil(t, lastError)
				assert.Equal(t, "broker unavailable", *lastError)
				return nil
			})

		require.NoError(t, p.processBatch(ctx))
	})

	t.Run("empty batch commits", func(t *testing.T) {
		p, deps := newTestPublisher(t)

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).Return(nil, nil)
		deps.tx.EXPECT().Commit(ctx).Return(nil)

		require.NoError(t, p.processBatch(ctx))
	})

	t.Run("fetch error rolls back", func(t *testing.T) {
		p, deps := newTestPublisher(t)

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).Return(nil, errors.New("db error"))
		deps.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		err := p.processBatch(ctx)
		assert.ErrorContains(t, err, "failed to get processable tasks")
	})
}

func TestPublisher_ProcessBatchStopsMidBatch(t *testing.T) {
	first := &repository.OutboxTask{ID: uuid.New(), Topic: "order_events", Payload: []byte(`{"order_id":"order-1"}`)}
	second := &repository.OutboxTask{ID: uuid.New(), Topic: "order_events", Payload: []byte(`{"order_id":"order-2"}`), Attempts: 1}

	t.Run("cancelled context releases claimed tasks", func(t *testing.T) {
		p, deps := newTestPublisher(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).
			Return([]*repository.OutboxTask{first, second}, nil)
		deps.repo.EXPECT().UpdateTaskStatusTx(ctx, deps.tx, gomock.Any(), repository.TaskStatusProcessing, gomock.Any(), nil, nil).
			Return(nil).Times(2)
		deps.tx.EXPECT().Commit(ctx).DoAndReturn(func(context.Context) error {
			cancel()
			return nil
		})
		deps.repo.EXPECT().UpdateTaskStatus(gomock.Any(), deps.db, first.ID, repository.TaskStatusCreated, 0, nil, nil).Return(nil)
		deps.repo.EXPECT().UpdateTaskStatus(gomock.Any(), deps.db, second.ID, repository.TaskStatusCreated, 1, nil, nil).Return(nil)

		err := p.processBatch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("shutdown releases claimed tasks", func(t *testing.T) {
		p, deps := newTestPublisher(t)
		ctx := context.Background()

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).
			Return([]*repository.OutboxTask{first}, nil)
		deps.repo.EXPECT().UpdateTaskStatusTx(ctx, deps.tx, first.ID, repository.TaskStatusProcessing, 0, nil, nil).Return(nil)
		deps.tx.EXPECT().Commit(ctx).DoAndReturn(func(context.Context) error {
			close(p.shutdownSignal)
			return nil
		})
		deps.repo.EXPECT().UpdateTaskStatus(gomock.Any(), deps.db, first.ID, repository.TaskStatusCreated, 0, nil, nil).Return(nil)

		err := p.processBatch(ctx)
		assert.ErrorContains(t, err, "shutdown during batch processing")
	})

	t.Run("commit failure rolls back once", func(t *testing.T) {
		p, deps := newTestPublisher(t)
		ctx := context.Background()

		deps.db.EXPECT().BeginTx(ctx).Return(deps.tx, nil)
		deps.repo.EXPECT().GetProcessableTasksTx(ctx, deps.tx, 10, 3, time.Minute).
			Return([]*repository.OutboxTask{first}, nil)
		deps.repo.EXPECT().UpdateTaskStatusTx(ctx, deps.tx, first.ID, repository.TaskStatusProcessing, 0, nil, nil).Return(nil)
		deps.tx.EXPECT().Commit(ctx).Return(errors.New("serialization failure"))
		deps.tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(1)

		err := p.processBatch(ctx)
		assert.ErrorContains(t, err, "marking tasks as PROCESSING")
	})
}

func TestNewPublisher_DefaultClaimLease(t *testing.T) {
	p := NewPublisher(nil, nil, nil, PublisherConfig{PollInterval: time.Second, BatchSize: 1, MaxAttempts: 1}, nil)
	assert.Equal(t, defaultClaimLease, p.config.ClaimLease)
}

func TestMessageKey(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, []byte("order-9"), messageKey(&repository.OutboxTask{ID: id, Payload: []byte(`{"order_id":"order-9"}`)}))
	assert.Equal(t, []byte(id.String()), messageKey(&repository.OutboxTask{ID: id, Payload: []byte(`not json`)}))
}

func TestPublisher_ShutdownClosesProducer(t *testing.T) {
	p, deps := newTestPublisher(t)
	deps.producer.EXPECT().Close().Return(nil).Times(1)

	p.Shutdown()
	p.Shutdown()
}
