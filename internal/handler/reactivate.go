package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lifevault/lifevault/internal/inactivity"
)

// ReactivationHandler serves the one-click "I'm alive" link embedded in
// warning emails. No session is required; the token is the credential.
type ReactivationHandler struct {
	verifier *inactivity.Verifier
	logger   *slog.Logger
}

// NewReactivationHandler creates a new ReactivationHandler.
func NewReactivationHandler(verifier *inactivity.Verifier, logger *slog.Logger) *ReactivationHandler {
	return &ReactivationHandler{
		verifier: verifier,
		logger:   logger,
	}
}

// Verify handles GET /api/activity/verify/{token}.
//
// The failure response is identical for unknown, expired, and already-used
// tokens.
func (h *ReactivationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Verification token is required")
		return
	}

	if !h.verifier.Redeem(r.Context(), token) {
		writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "This verification link is invalid or has expired")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "confirmed",
		"message": "Thank you for confirming your activity. Your inactivity timer has been reset.",
	})
}
