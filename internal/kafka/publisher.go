package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/metrics"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/storage"
)

const (
	defaultClaimLease = 5 * time.Minute
	releaseTimeout    = 5 * time.Second
)

type PublisherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// ClaimLease is how long a PROCESSING claim is honoured before another
	// poll may take the task again.
	ClaimLease time.Duration
}

// Publisher relays order events from the outbox table to the broker.
type Publisher struct {
	db             db.DB
	repo           storage.OutboxTaskRepository
	producer       Producer
	config         PublisherConfig
	logger         *zap.Logger
	timeNow        func() time.Time
	wg             sync.WaitGroup
	shutdownSignal chan struct{}
	stopOnce       sync.Once
}

func NewPublisher(db db.DB, repo storage.OutboxTaskRepository, producer Producer, config PublisherConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ClaimLease <= 0 {
		config.ClaimLease = defaultClaimLease
	}
	return &Publisher{
		db:             db,
		repo:           repo,
		producer:       producer,
		config:         config,
		logger:         logger.With(zap.String("component", "outbox_publisher")),
		timeNow:        time.Now,
		shutdownSignal: make(chan struct{}),
	}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("Starting outbox publisher",
		zap.Duration("poll_interval", p.config.PollInterval),
		zap.Int("batch_size", p.config.BatchSize),
	)
	p.wg.Add(1)
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				metrics.OperationErrorsTotal.WithLabelValues("outbox_batch").Inc()
				p.logger.Error("Failed to process outbox batch", zap.Error(err))
			}
		case <-p.shutdownSignal:
			p.logger.Info("Outbox publisher received shutdown signal, stopping")
			return
		case <-ctx.Done():
			p.logger.Info("Outbox publisher context cancelled, stopping")
			return
		}
	}
}

func (p *Publisher) Shutdown() {
	p.stopOnce.Do(func() {
		p.logger.Info("Initiating outbox publisher shutdown")
		close(p.shutdownSignal)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			p.logger.Info("Outbox publisher shutdown complete")
		case <-shutdownCtx.Done():
			p.logger.Warn("Outbox publisher shutdown timed out")
		}

		if err := p.producer.Close(); err != nil {
			p.logger.Error("Failed to close producer", zap.Error(err))
		}
	})
}

func (p *Publisher) processBatch(ctx context.Context) error {
	tasks, err := p.claimBatch(ctx)
	if err != nil {
		return err
	}

	for i, task := range tasks {
		select {
		case <-p.shutdownSignal:
			p.logger.Info("Shutdown during batch processing", zap.Stringer("task_id", task.ID))
			p.releaseTasks(tasks[i:])
			return errors.New("publisher shutdown during batch processing")
		case <-ctx.Done():
			p.logger.Info("Context cancelled during batch processing", zap.Stringer("task_id", task.ID))
			p.releaseTasks(tasks[i:])
			return ctx.Err()
		default:
		}

		if err := p.processSingleTask(ctx, task); err != nil {
			p.logger.Error("Failed to process task", zap.Stringer("task_id", task.ID), zap.Error(err))
		}
	}

	return nil
}

// claimBatch marks up to BatchSize tasks PROCESSING in one transaction.
func (p *Publisher) claimBatch(ctx context.Context) (tasks []*repository.OutboxTask, err error) {
	tx, err := p.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for fetching tasks: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.Background())
		}
	}()

	tasks, err = p.repo.GetProcessableTasksTx(ctx, tx, p.config.BatchSize, p.config.MaxAttempts, p.config.ClaimLease)
	if err != nil {
		return nil, fmt.Errorf("failed to get processable tasks: %w", err)
	}

	if len(tasks) == 0 {
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit empty batch: %w", err)
		}
		return nil, nil
	}

	p.logger.Debug("Fetched outbox tasks", zap.Int("count", len(tasks)))

	for _, task := range tasks {
		err = p.repo.UpdateTaskStatusTx(ctx, tx, task.ID, repository.TaskStatusProcessing, task.Attempts, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to mark task %s as PROCESSING: %w", task.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction after marking tasks as PROCESSING: %w", err)
	}
	return tasks, nil
}

// releaseTasks hands unsent claims back as CREATED. Anything it cannot
// release is picked up again once its claim lease runs out.
func (p *Publisher) releaseTasks(tasks []*repository.OutboxTask) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	for _, task := range tasks {
		err := p.repo.UpdateTaskStatus(ctx, p.db, task.ID, repository.TaskStatusCreated, task.Attempts, nil, nil)
		if err != nil {
			p.logger.Warn("Failed to release outbox task", zap.Stringer("task_id", task.ID), zap.Error(err))
		}
	}
	p.logger.Info("Released unsent outbox tasks", zap.Int("count", len(tasks)))
}

// messageKey keys events by order so one order's events stay in one partition.
func messageKey(task *repository.OutboxTask) []byte {
	var event struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(task.Payload, &event); err == nil && event.OrderID != "" {
		return []byte(event.OrderID)
	}
	return []byte(task.ID.String())
}

func (p *Publisher) processSingleTask(ctx context.Context, task *repository.OutboxTask) error {
	logger := p.logger.With(zap.Stringer("task_id", task.ID), zap.Int("attempt", task.Attempts+1))

	err := p.producer.SendMessage(ctx, task.Topic, messageKey(task), task.Payload)
	if err != nil {
		newAttempts := task.Attempts + 1
		errMsg := err.Error()

		if newAttempts >= p.config.MaxAttempts {
			logger.Error("Task reached max attempts, marking as FAILED permanently", zap.Int("max_attempts", p.config.MaxAttempts))
		}

		updateErr := p.repo.UpdateTaskStatus(ctx, p.db, task.ID, repository.TaskStatusFailed, newAttempts, &errMsg, nil)
		if updateErr != nil {
			logger.Error("Failed to update task status after send failure", zap.Error(updateErr), zap.NamedError("send_error", err))
			return fmt.Errorf("failed to update task status after send failure: %w", updateErr)
		}
		return err
	}

	now := p.timeNow().UTC()
	updateErr := p.repo.UpdateTaskStatus(ctx, p.db, task.ID, repository.TaskStatusDone, task.Attempts, nil, &now)
	if updateErr != nil {
		logger.Error("Failed to update task status to DONE after successful send", zap.Error(updateErr))
		return fmt.Errorf("failed to update task status after successful send: %w", updateErr)
	}

	metrics.OutboxPublishedTotal.Inc()
	logger.Debug("Task published")
	return nil
}
