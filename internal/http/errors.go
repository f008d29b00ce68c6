package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/session"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var errMissingSession = errors.New("missing cart session")

// statusForError maps domain errors to an HTTP status and error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, cart.ErrUnknownProduct):
		return http.StatusNotFound, "unknown_product"
	case errors.Is(err, cart.ErrNotInCart):
		return http.StatusConflict, "not_in_cart"
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusConflict, "empty_cart"
	case errors.Is(err, session.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, errMissingSession):
		return http.StatusUnauthorized, "missing_session"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("request_id", getRequestID(r.Context())),
		)
		respondError(w, status, code, "internal server error")
		return
	}
	respondError(w, status, code, err.Error())
}

func (h *Handler) handlePageError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("page request failed",
			zap.Error(err),
			zap.String("request_id", getRequestID(r.Context())),
		)
		http.Error(w, "server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
