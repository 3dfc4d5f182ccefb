package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCreated    TaskStatus = "CREATED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusDone       TaskStatus = "DONE"
)

type OutboxTask struct {
	ID          uuid.UUID       `db:"id"`
	Status      TaskStatus      `db:"status"`
	Payload     json.RawMessage `db:"payload"`
	Topic       string          `db:"topic"`
	Attempts    int             `db:"attempts"`
	LastError   *string         `db:"last_error"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
	CompletedAt *time.Time      `db:"completed_at"`
}

// OrderEventPayload is published to Kafka whenever an order changes status.
type OrderEventPayload struct {
	EventID        string     `json:"event_id"`
	Type           string     `json:"type"`
	OrderID        string     `json:"order_id"`
	OldStatus      string     `json:"old_status"`
	NewStatus      string     `json:"new_status"`
	TrackingNumber *string    `json:"tracking_number,omitempty"`
	ChangedBy      string     `json:"changed_by,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
	PrintedAt      *time.Time `json:"printed_at,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
}
