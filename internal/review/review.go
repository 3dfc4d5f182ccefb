package review

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusOfficial Status = "official"
	StatusRejected Status = "rejected"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var (
	ErrInvalidReview = errors.New("invalid review")
	ErrConflict      = errors.New("plastic type already reviewed")
	ErrNotFound      = errors.New("plastic type not found")
)

// Decide returns the status a submitted plastic type moves to. Only pending
// submissions can be reviewed.
func Decide(current Status, decision Decision) (Status, error) {
	if current != StatusPending {
		return "", fmt.Errorf("%w: plastic type is %q", ErrInvalidReview, current)
	}
	switch decision {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidReview, decision)
	}
}
