package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/access"
	"gitlab.com/discrescue/admin/internal/identity"
	"gitlab.com/discrescue/admin/internal/metrics"
)

func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.resolver.Resolve(r)
		if err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("resolve_identity").Inc()
			s.logger.Error("Failed to resolve identity", zap.String("path", r.URL.Path), zap.Error(err))
			respondError(w, http.StatusServiceUnavailable, "Authentication is temporarily unavailable")
			return
		}

		if entry := auditEntry(r.Context()); entry != nil && principal.Caller.Authenticated {
			entry.Principal = principal.Name()
			entry.Role = string(principal.Caller.Role)
		}

		next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), principal)))
	})
}

func (s *Server) accessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context()).Caller
		decision := s.policy.Evaluate(caller, r.URL.Path)

		metrics.AccessDecisionsTotal.WithLabelValues(decision.String()).Inc()
		if entry := auditEntry(r.Context()); entry != nil {
			entry.Decision = decision.String()
		}

		if decision != access.Allow {
			http.Redirect(w, r, decision.Target(), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routeMiddleware runs inside the router, where the matched route and its
// variables are known.
func (s *Server) routeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if entry := auditEntry(r.Context()); entry != nil {
			if route := mux.CurrentRoute(r); route != nil {
				entry.Handler = route.GetName()
			}
			vars := mux.Vars(r)
			switch {
			case vars["id"] == "":
			case entry.Handler == "handleReviewPlastic" || entry.Handler == "handleDeletePlastic":
				entry.PlasticID = vars["id"]
			default:
				entry.OrderID = vars["id"]
			}
		}
		next.ServeHTTP(w, r)
	})
}
