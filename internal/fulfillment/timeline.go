package fulfillment

import "time"

type TimelineStep struct {
	Status    Status     `json:"status"`
	Label     string     `json:"label"`
	At        *time.Time `json:"at,omitempty"`
	Completed bool       `json:"completed"`
}

var stepLabels = map[Status]string{
	StatusPaid:       "Payment Received",
	StatusProcessing: "Processing Started",
	StatusPrinted:    "Printed",
	StatusShipped:    "Shipped",
	StatusDelivered:  "Delivered",
}

// Timeline describes the fulfillment chain for order. Orders that are off the
// chain (awaiting payment or cancelled) have no timeline.
func Timeline(order Order, createdAt time.Time) []TimelineStep {
	current := Progress(order.Status)
	if current < 0 {
		return nil
	}

	steps := make([]TimelineStep, 0, len(flow))
	for i, st := range flow {
		step := TimelineStep{
			Status:    st,
			Label:     stepLabels[st],
			Completed: i <= current,
		}
		switch st {
		case StatusPaid:
			step.At = &createdAt
		case StatusProcessing:
			// processing start is not recorded separately
			if step.Completed {
				step.At = &createdAt
			}
		case StatusPrinted:
			step.At = order.PrintedAt
		case StatusShipped:
			step.At = order.ShippedAt
		}
		steps = append(steps, step)
	}
	return steps
}
