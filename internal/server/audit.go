package server

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type AuditLogEntry struct {
	Timestamp  time.Time
	Handler    string
	Method     string
	Path       string
	StatusCode int
	Duration   time.Duration
	Principal  string
	Role       string
	Decision   string
	OrderID    string
	PlasticID  string
	OldStatus  string
	NewStatus  string
	Request    string
}

func (e AuditLogEntry) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddTime("timestamp", e.Timestamp)
	enc.AddString("handler", e.Handler)
	enc.AddString("method", e.Method)
	enc.AddString("path", e.Path)
	enc.AddInt("status_code", e.StatusCode)
	enc.AddDuration("duration", e.Duration)
	enc.AddString("decision", e.Decision)
	if e.Principal != "" {
		enc.AddString("principal", e.Principal)
		enc.AddString("role", e.Role)
	}
	if e.OrderID != "" {
		enc.AddString("order_id", e.OrderID)
	}
	if e.PlasticID != "" {
		enc.AddString("plastic_id", e.PlasticID)
	}
	if e.NewStatus != "" {
		enc.AddString("old_status", e.OldStatus)
		enc.AddString("new_status", e.NewStatus)
	}
	if e.Request != "" {
		enc.AddString("request", e.Request)
	}
	return nil
}
