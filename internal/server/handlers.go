package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/access"
	"gitlab.com/discrescue/admin/internal/fulfillment"
	"gitlab.com/discrescue/admin/internal/identity"
	"gitlab.com/discrescue/admin/internal/metrics"
	"gitlab.com/discrescue/admin/internal/review"
	"gitlab.com/discrescue/admin/internal/storage"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Sign in with an admin or printer account",
	})
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusForbidden, "Your account does not have access to the admin dashboard")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if identity.FromContext(r.Context()).Caller.Role == access.RolePrinter {
		http.Redirect(w, r, access.OrdersPath, http.StatusSeeOther)
		return
	}

	dashboard, err := s.storage.Dashboard(r.Context())
	if err != nil {
		s.logger.Error("Failed to load dashboard", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.OrderFilter{
		Status: query.Get("status"),
		Search: strings.TrimSpace(query.Get("search")),
		Page:   1,
	}

	if filter.Status != "" && filter.Status != "all" && !fulfillment.Status(filter.Status).Valid() {
		respondError(w, http.StatusBadRequest, "Invalid value for 'status' parameter")
		return
	}

	if pageStr := query.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			respondError(w, http.StatusBadRequest, "Invalid value for 'page' parameter")
			return
		}
		filter.Page = page
	}

	page, err := s.storage.ListOrders(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

type orderDetails struct {
	Order            *storage.Order             `json:"order"`
	AvailableActions []fulfillment.Action       `json:"available_actions"`
	Timeline         []fulfillment.TimelineStep `json:"timeline"`
	Progress         int                        `json:"progress"`
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.storage.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, fulfillment.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("Failed to get order", zap.String("order_id", orderID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	snapshot := order.Snapshot()
	actions := fulfillment.AvailableActions(snapshot.Status)
	if actions == nil {
		actions = []fulfillment.Action{}
	}
	respondJSON(w, http.StatusOK, orderDetails{
		Order:            order,
		AvailableActions: actions,
		Timeline:         fulfillment.Timeline(snapshot, order.CreatedAt),
		Progress:         fulfillment.Progress(snapshot.Status),
	})
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	history, err := s.storage.GetOrderHistory(r.Context(), orderID)
	if err != nil {
		s.logger.Error("Failed to get order history", zap.String("order_id", orderID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get order history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}

type transitionRequest struct {
	Action         string `json:"action"`
	TrackingNumber string `json:"tracking_number"`
}

type transitionResponse struct {
	Success       bool               `json:"success"`
	Status        fulfillment.Status `json:"status,omitempty"`
	UpdatedFields map[string]any     `json:"updated_fields,omitempty"`
	Reason        fulfillment.Reason `json:"reason,omitempty"`
	Error         string             `json:"error,omitempty"`
}

func transitionStatusCode(reason fulfillment.Reason) int {
	switch reason {
	case fulfillment.ReasonNone:
		return http.StatusOK
	case fulfillment.ReasonInvalidTransition:
		return http.StatusBadRequest
	case fulfillment.ReasonNotFound:
		return http.StatusNotFound
	case fulfillment.ReasonConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action := fulfillment.Action(req.Action)
	if s.requireTracking && action == fulfillment.ActionMarkShipped && strings.TrimSpace(req.TrackingNumber) == "" {
		respondError(w, http.StatusBadRequest, "Tracking number is required to mark an order as shipped")
		return
	}

	logger := s.logger.With(
		zap.String("order_id", orderID),
		zap.String("action", req.Action),
		zap.String("principal", identity.FromContext(r.Context()).Name()),
	)

	order, result := s.machine.Advance(r.Context(), s.storage, orderID, fulfillment.Request{
		Action:         action,
		TrackingNumber: req.TrackingNumber,
	})

	resp := transitionResponse{
		Success:       result.Success,
		UpdatedFields: result.Update.Fields(),
		Reason:        result.Reason,
	}
	if result.Success {
		resp.Status = result.Update.Status
		if entry := auditEntry(r.Context()); entry != nil {
			entry.OldStatus = string(order.Status)
			entry.NewStatus = string(result.Update.Status)
		}
	} else {
		metrics.TransitionRejectionsTotal.WithLabelValues(string(result.Reason)).Inc()
		if result.Err != nil {
			resp.Error = result.Err.Error()
		}
		if result.Reason == fulfillment.ReasonPersistenceFailure {
			logger.Error("Transition failed", zap.Error(result.Err))
			resp.Error = "Failed to update order"
		} else {
			logger.Info("Transition rejected", zap.String("reason", string(result.Reason)))
		}
	}

	respondJSON(w, transitionStatusCode(result.Reason), resp)
}

func (s *Server) handleListPlastics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := storage.PlasticFilter{
		Status:       query.Get("status"),
		Manufacturer: query.Get("manufacturer"),
		Search:       strings.TrimSpace(query.Get("search")),
	}

	page, err := s.storage.ListPlastics(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list plastic types", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list plastic types")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleReviewPlastic(w http.ResponseWriter, r *http.Request) {
	plasticID := mux.Vars(r)["id"]

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plastic, err := s.storage.ReviewPlastic(r.Context(), plasticID, review.Decision(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidReview):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, review.ErrNotFound):
			respondError(w, http.StatusNotFound, "Plastic type not found")
		case errors.Is(err, review.ErrConflict):
			respondError(w, http.StatusConflict, "Plastic type was reviewed by someone else")
		default:
			s.logger.Error("Failed to review plastic type", zap.String("plastic_id", plasticID), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to review plastic type")
		}
		return
	}

	respondJSON(w, http.StatusOK, plastic)
}

func (s *Server) handleDeletePlastic(w http.ResponseWriter, r *http.Request) {
	plasticID := mux.Vars(r)["id"]

	if err := s.storage.DeletePlastic(r.Context(), plasticID); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Plastic type not found")
			return
		}
		s.logger.Error("Failed to delete plastic type", zap.String("plastic_id", plasticID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete plastic type")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Plastic type deleted",
		"id":      plasticID,
	})
}
