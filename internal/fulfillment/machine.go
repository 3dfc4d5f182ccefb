//go:generate mockgen -source ./machine.go -destination=./mocks/machine.go -package=mock_fulfillment
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("order status changed concurrently")
	ErrNotFound          = errors.New("order not found")
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Persistence owns the authoritative order row. ApplyOrderUpdate must only
// write when the stored status still equals expected, and report ErrConflict
// otherwise.
type Persistence interface {
	ReadOrder(ctx context.Context, id string) (Order, error)
	ApplyOrderUpdate(ctx context.Context, id string, expected Status, update Update) error
}

type transition struct {
	from Status
	to   Status
}

var transitions = map[Action]transition{
	ActionStartProcessing: {from: StatusPaid, to: StatusProcessing},
	ActionMarkPrinted:     {from: StatusProcessing, to: StatusPrinted},
	ActionMarkShipped:     {from: StatusPrinted, to: StatusShipped},
	ActionMarkDelivered:   {from: StatusShipped, to: StatusDelivered},
}

// AvailableActions lists the actions that are legal from s.
func AvailableActions(s Status) []Action {
	var actions []Action
	for _, a := range []Action{ActionStartProcessing, ActionMarkPrinted, ActionMarkShipped, ActionMarkDelivered} {
		if transitions[a].from == s {
			actions = append(actions, a)
		}
	}
	return actions
}

type Machine struct {
	clock Clock
}

func NewMachine(clock Clock) *Machine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Machine{clock: clock}
}

// RequestTransition validates req against the order snapshot and computes the
// resulting field updates. It has no side effects.
func (m *Machine) RequestTransition(order Order, req Request) Result {
	t, ok := transitions[req.Action]
	if !ok || order.Status != t.from {
		return rejected(ReasonInvalidTransition,
			fmt.Errorf("%w: %s from %q", ErrInvalidTransition, req.Action, order.Status))
	}

	update := Update{Status: t.to}
	switch req.Action {
	case ActionMarkPrinted:
		now := m.clock.Now()
		update.PrintedAt = &now
	case ActionMarkShipped:
		now := m.clock.Now()
		update.ShippedAt = &now
		if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
			update.TrackingNumber = &tracking
		}
	}

	return Result{Success: true, Update: update}
}

// Apply validates req and hands the update to p, conditioned on the snapshot's
// status. The caller must not assume the new status took effect unless the
// result is successful.
func (m *Machine) Apply(ctx context.Context, p Persistence, order Order, req Request) Result {
	res := m.RequestTransition(order, req)
	if !res.Success {
		return res
	}

	if err := p.ApplyOrderUpdate(ctx, order.ID, order.Status, res.Update); err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			return rejected(ReasonConflict, err)
		case errors.Is(err, ErrNotFound):
			return rejected(ReasonNotFound, err)
		default:
			return rejected(ReasonPersistenceFailure, err)
		}
	}

	return res
}

// Advance reads the current snapshot of order id and applies req to it.
func (m *Machine) Advance(ctx context.Context, p Persistence, id string, req Request) (Order, Result) {
	order, err := p.ReadOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, rejected(ReasonNotFound, err)
		}
		return Order{}, rejected(ReasonPersistenceFailure, err)
	}
	return order, m.Apply(ctx, p, order, req)
}
