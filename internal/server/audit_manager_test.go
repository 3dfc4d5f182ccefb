package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditManager_FlushesOnShutdown(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewAuditManager(2, 2, time.Hour, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	for i := 0; i < 5; i++ {
		m.LogEntry(ctx, AuditLogEntry{Path: fmt.Sprintf("/orders/o%d", i), StatusCode: 200})
	}
	m.Shutdown(context.Background())

	assert.Len(t, logs.FilterMessage("Audit entry").All(), 5)
	assert.Zero(t, m.Pending())
}

func TestAuditManager_LogAfterShutdown(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewAuditManager(1, 5, time.Second, zap.New(core))
	m.Start(context.Background())
	m.Shutdown(context.Background())

	m.LogEntry(context.Background(), AuditLogEntry{Path: "/late"})

	direct := logs.FilterMessage("Audit entry").FilterField(zap.String("source", "DIRECT")).All()
	assert.Len(t, direct, 1)
	assert.Zero(t, m.Pending())
}
