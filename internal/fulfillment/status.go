package fulfillment

import "time"

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusProcessing     Status = "processing"
	StatusPrinted        Status = "printed"
	StatusShipped        Status = "shipped"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// flow is the fulfillment chain an order walks once payment has cleared.
var flow = []Status{StatusPaid, StatusProcessing, StatusPrinted, StatusShipped, StatusDelivered}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusProcessing, StatusPrinted,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Progress returns the position of s along the fulfillment chain, or -1 when
// the order is not on it (pending payment, cancelled, unknown).
func Progress(s Status) int {
	for i, st := range flow {
		if st == s {
			return i
		}
	}
	return -1
}

type Order struct {
	ID             string
	Status         Status
	TrackingNumber *string
	PrintedAt      *time.Time
	ShippedAt      *time.Time
}

type Action string

const (
	ActionStartProcessing Action = "start_processing"
	ActionMarkPrinted     Action = "mark_printed"
	ActionMarkShipped     Action = "mark_shipped"
	ActionMarkDelivered   Action = "mark_delivered"
)

type Request struct {
	Action         Action
	TrackingNumber string
}

// Update holds the fields a transition writes. Nil pointers are left untouched.
type Update struct {
	Status         Status
	PrintedAt      *time.Time
	ShippedAt      *time.Time
	TrackingNumber *string
}

func (u Update) Fields() map[string]any {
	if u.Status == "" {
		return nil
	}
	fields := map[string]any{"status": string(u.Status)}
	if u.PrintedAt != nil {
		fields["printed_at"] = *u.PrintedAt
	}
	if u.ShippedAt != nil {
		fields["shipped_at"] = *u.ShippedAt
	}
	if u.TrackingNumber != nil {
		fields["tracking_number"] = *u.TrackingNumber
	}
	return fields
}

type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInvalidTransition  Reason = "invalid_transition"
	ReasonPersistenceFailure Reason = "persistence_failure"
	ReasonConflict           Reason = "conflict"
	ReasonNotFound           Reason = "not_found"
)

type Result struct {
	Success bool
	Update  Update
	Reason  Reason
	Err     error
}

func rejected(reason Reason, err error) Result {
	return Result{Reason: reason, Err: err}
}
