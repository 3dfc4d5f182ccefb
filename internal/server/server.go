//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/access"
	"gitlab.com/discrescue/admin/internal/fulfillment"
	"gitlab.com/discrescue/admin/internal/identity"
	"gitlab.com/discrescue/admin/internal/review"
	"gitlab.com/discrescue/admin/internal/storage"
)

type Storage interface {
	GetOrder(ctx context.Context, orderID string) (*storage.Order, error)
	ListOrders(ctx context.Context, filter storage.OrderFilter) (*storage.OrderPage, error)
	GetOrderHistory(ctx context.Context, orderID string) ([]storage.HistoryEntry, error)
	ReadOrder(ctx context.Context, orderID string) (fulfillment.Order, error)
	ApplyOrderUpdate(ctx context.Context, orderID string, expected fulfillment.Status, update fulfillment.Update) error
	ListPlastics(ctx context.Context, filter storage.PlasticFilter) (*storage.PlasticPage, error)
	ReviewPlastic(ctx context.Context, plasticID string, decision review.Decision) (*storage.PlasticType, error)
	DeletePlastic(ctx context.Context, plasticID string) error
	Dashboard(ctx context.Context) (*storage.Dashboard, error)
}

type Options struct {
	Policy                access.Policy
	RequireTrackingNumber bool

	AuditWorkers   int
	AuditBatchSize int
	AuditTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.AuditWorkers <= 0 {
		o.AuditWorkers = 2
	}
	if o.AuditBatchSize <= 0 {
		o.AuditBatchSize = 5
	}
	if o.AuditTimeout <= 0 {
		o.AuditTimeout = 500 * time.Millisecond
	}
	return o
}

type Server struct {
	storage         Storage
	resolver        identity.Resolver
	machine         *fulfillment.Machine
	policy          access.Policy
	requireTracking bool
	logger          *zap.Logger
	timeNow         func() time.Time
	server          *http.Server
	AuditManager    *AuditManager
}

func New(storage Storage, resolver identity.Resolver, machine *fulfillment.Machine, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Server{
		storage:         storage,
		resolver:        resolver,
		machine:         machine,
		policy:          opts.Policy,
		requireTracking: opts.RequireTrackingNumber,
		logger:          logger,
		timeNow:         time.Now,
		AuditManager:    NewAuditManager(opts.AuditWorkers, opts.AuditBatchSize, opts.AuditTimeout, logger),
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.AuditManager.Start(ctx)

	s.logger.Info("HTTP server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	s.AuditManager.Shutdown(ctx)
	s.logger.Info("HTTP server shutdown completed")

	return nil
}

// Handler builds the routed handler. Every request passes audit, identity
// resolution and the access policy, in that order, before reaching a route.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.routeMiddleware)

	router.HandleFunc(access.LoginPath, s.handleLogin).Methods(http.MethodGet).Name("handleLogin")
	router.HandleFunc(access.UnauthorizedPath, s.handleUnauthorized).Methods(http.MethodGet).Name("handleUnauthorized")
	router.HandleFunc(access.HomePath, s.handleDashboard).Methods(http.MethodGet).Name("handleDashboard")

	router.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet).Name("handleListOrders")
	router.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet).Name("handleGetOrder")
	router.HandleFunc("/orders/{id}/history", s.handleOrderHistory).Methods(http.MethodGet).Name("handleOrderHistory")
	router.HandleFunc("/orders/{id}/transitions", s.handleTransition).Methods(http.MethodPost).Name("handleTransition")

	router.HandleFunc("/plastics", s.handleListPlastics).Methods(http.MethodGet).Name("handleListPlastics")
	router.HandleFunc("/plastics/{id}/review", s.handleReviewPlastic).Methods(http.MethodPost).Name("handleReviewPlastic")
	router.HandleFunc("/plastics/{id}", s.handleDeletePlastic).Methods(http.MethodDelete).Name("handleDeletePlastic")

	return s.auditLogMiddleware(s.identityMiddleware(s.accessMiddleware(router)))
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
