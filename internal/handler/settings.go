package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lifevault/lifevault/internal/auth"
	"github.com/lifevault/lifevault/internal/handler/dto"
	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/model"
	"github.com/lifevault/lifevault/internal/repository"
)

// SettingsHandler handles profile and inactivity period updates.
type SettingsHandler struct {
	repo     *repository.Repository
	activity ActivityRecorder
	clock    inactivity.Clock
	logger   *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(repo *repository.Repository, activity ActivityRecorder, clock inactivity.Clock, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		repo:     repo,
		activity: activity,
		clock:    clock,
		logger:   logger,
	}
}

// UpdateProfile handles PUT /api/settings/profile.
func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	if req.FirstName == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "First name is required")
		return
	}

	if err := h.repo.UpdateProfile(r.Context(), userID, req.FirstName, strings.TrimSpace(req.LastName), strings.TrimSpace(req.PhoneNumber)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.logger.Error("profile_update_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.recordActivity(r, userID, "Profile updated")

	h.logger.Info("profile_updated", "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// UpdateInactivityPeriod handles PUT /api/settings/inactivity-period.
//
// Changing the threshold takes effect on the next evaluation run; it does
// not reset the silence clock.
func (h *SettingsHandler) UpdateInactivityPeriod(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.UpdateInactivityPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !model.ValidInactivityPeriod(req.InactivityPeriodDays) {
		writeError(w, http.StatusBadRequest, "INVALID_PERIOD",
			fmt.Sprintf("Inactivity period must be between %d and %d days", model.MinInactivityPeriodDays, model.MaxInactivityPeriodDays))
		return
	}

	if err := h.repo.UpdateInactivityPeriod(r.Context(), userID, req.InactivityPeriodDays); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.logger.Error("period_update_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.recordActivity(r, userID, fmt.Sprintf("Inactivity period set to %d days", req.InactivityPeriodDays))

	h.logger.Info("inactivity_period_updated",
		"user_id", userID,
		"days", req.InactivityPeriodDays,
	)

	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) recordActivity(r *http.Request, userID, description string) {
	if err := h.activity.Record(r.Context(), userID, model.ActivitySettingsUpdated, description); err != nil {
		h.logger.Warn("activity_record_failed", "user_id", userID, "error", err)
	}
}
