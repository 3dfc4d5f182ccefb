package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
)

const maxAuditedBody = 4 << 10

type auditKey struct{}

// auditEntry returns the entry the audit middleware is building for the
// request, so inner layers can annotate it. It is nil outside that middleware.
func auditEntry(ctx context.Context) *AuditLogEntry {
	entry, _ := ctx.Value(auditKey{}).(*AuditLogEntry)
	return entry
}

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.timeNow()
		entry := &AuditLogEntry{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   "unknown",
		}

		skipRequestBody := strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data")
		if !skipRequestBody && r.Body != nil && r.Method != http.MethodGet {
			requestBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			if len(requestBody) > maxAuditedBody {
				requestBody = requestBody[:maxAuditedBody]
			}
			entry.Request = string(requestBody)
		}

		wrw := newResponseWriterWrapper(w)
		next.ServeHTTP(wrw, r.WithContext(context.WithValue(r.Context(), auditKey{}, entry)))

		entry.StatusCode = wrw.GetStatusCode()
		entry.Duration = s.timeNow().Sub(start)

		s.AuditManager.LogEntry(r.Context(), *entry)
	})
}
