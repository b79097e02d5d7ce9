package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifevault/lifevault/internal/auth"
	"github.com/lifevault/lifevault/internal/handler/dto"
	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/middleware"
	"github.com/lifevault/lifevault/internal/model"
	"github.com/lifevault/lifevault/internal/repository"
)

const minPasswordLength = 8

// AuthHandler handles account creation and session management.
type AuthHandler struct {
	repo      *repository.Repository
	activity  ActivityRecorder
	clock     inactivity.Clock
	jwtSecret []byte
	jwtTTL    time.Duration
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(repo *repository.Repository, activity ActivityRecorder, clock inactivity.Clock, jwtSecret []byte, jwtTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		repo:      repo,
		activity:  activity,
		clock:     clock,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "A valid email address is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 8 characters")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "First name is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password_hash_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	now := h.clock.Now()
	user := &model.User{
		ID:                      uuid.New().String(),
		Email:                   req.Email,
		PasswordHash:            hash,
		FirstName:               strings.TrimSpace(req.FirstName),
		LastName:                strings.TrimSpace(req.LastName),
		PhoneNumber:             strings.TrimSpace(req.PhoneNumber),
		LastActivityAt:          now,
		LastNotificationCheckAt: now,
		IsActive:                true,
		InactivityPeriodDays:    model.DefaultInactivityPeriodDays,
		CreatedAt:               now,
	}

	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
			return
		}
		h.logger.Error("signup_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	token, err := auth.IssueSessionToken(user.ID, user.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		h.logger.Error("session_issue_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("user_signed_up", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.SessionResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

// Login handles POST /api/auth/login.
//
// A successful login resets the silence clock: it is the primary liveness
// signal the inactivity evaluator watches for.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.logger.Error("login_lookup_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "This account is disabled")
		return
	}

	now := h.clock.Now()
	if err := h.repo.TouchActivity(r.Context(), user.ID, now); err != nil {
		h.logger.Error("touch_activity_failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	user.LastActivityAt = now
	user.VaultRevealedAt = nil

	if err := h.activity.RecordWithIP(r.Context(), user.ID, model.ActivityLogin, "User logged in", middleware.ClientIP(r)); err != nil {
		h.logger.Warn("activity_record_failed", "user_id", user.ID, "error", err)
	}

	token, err := auth.IssueSessionToken(user.ID, user.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		h.logger.Error("session_issue_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

// ChangePassword handles POST /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 8 characters")
		return
	}

	user, err := h.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("user_lookup_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	ok, err := auth.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("password_hash_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	if err := h.repo.UpdatePassword(r.Context(), userID, hash); err != nil {
		h.logger.Error("password_update_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("password_changed", "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	user, err := h.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.logger.Error("user_lookup_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
