package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lifevault/lifevault/internal/auth"
	"github.com/lifevault/lifevault/internal/email"
	"github.com/lifevault/lifevault/internal/handler/dto"
	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/model"
	"github.com/lifevault/lifevault/internal/repository"
)

// ContactHandler handles trusted contact management and email verification.
type ContactHandler struct {
	repo     *repository.Repository
	email    email.Sender
	activity ActivityRecorder
	clock    inactivity.Clock
	logger   *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(repo *repository.Repository, sender email.Sender, activity ActivityRecorder, clock inactivity.Clock, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		repo:     repo,
		email:    sender,
		activity: activity,
		clock:    clock,
		logger:   logger,
	}
}

// Create handles POST /api/contacts. The new contact receives a
// verification email; until they confirm, they are excluded from any
// disclosure.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "Contact name is required")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "A valid contact email is required")
		return
	}

	token, err := newVerificationToken()
	if err != nil {
		h.logger.Error("verification_token_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	contact := &model.TrustedContact{
		ID:                uuid.New().String(),
		UserID:            userID,
		Name:              req.Name,
		Email:             req.Email,
		PhoneNumber:       strings.TrimSpace(req.PhoneNumber),
		Relationship:      strings.TrimSpace(req.Relationship),
		VerificationToken: token,
		CreatedAt:         h.clock.Now(),
	}

	if err := h.repo.CreateContact(r.Context(), contact); err != nil {
		h.logger.Error("contact_create_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	user, err := h.repo.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("user_lookup_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	// The contact row exists either way; a failed send just means the
	// owner re-adds or the contact asks for a resend.
	if err := h.email.SendContactVerification(r.Context(), contact, user); err != nil {
		h.logger.Error("verification_email_failed",
			"contact_id", contact.ID,
			"error", err,
		)
	}

	h.recordActivity(r, userID, model.ActivityContactAdded, fmt.Sprintf("Trusted contact %q added", contact.Name))

	h.logger.Info("contact_created", "user_id", userID, "contact_id", contact.ID)

	writeJSON(w, http.StatusCreated, dto.ToContactResponse(contact))
}

// List handles GET /api/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	contacts, err := h.repo.FindByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("contact_list_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	responses := make([]dto.ContactResponse, len(contacts))
	for i, contact := range contacts {
		responses[i] = *dto.ToContactResponse(contact)
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": responses})
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	contactID := chi.URLParam(r, "id")

	if err := h.repo.DeleteContact(r.Context(), userID, contactID); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
			return
		}
		h.logger.Error("contact_delete_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.recordActivity(r, userID, model.ActivityContactRemoved, "Trusted contact removed")

	h.logger.Info("contact_deleted", "user_id", userID, "contact_id", contactID)

	w.WriteHeader(http.StatusNoContent)
}

// Verify handles GET /verify-contact/{token}. This is the link sent to the
// contact's email; no session is required.
func (h *ContactHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Verification token is required")
		return
	}

	contact, err := h.repo.VerifyContact(r.Context(), token, h.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "This verification link is invalid")
			return
		}
		h.logger.Error("contact_verify_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.recordActivity(r, contact.UserID, model.ActivityContactVerified, fmt.Sprintf("Trusted contact %q verified their email", contact.Name))

	h.logger.Info("contact_verified", "contact_id", contact.ID)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "verified",
		"message": "Thank you, your email address has been verified.",
	})
}

func (h *ContactHandler) recordActivity(r *http.Request, userID string, kind model.ActivityKind, description string) {
	if err := h.activity.Record(r.Context(), userID, kind, description); err != nil {
		h.logger.Warn("activity_record_failed", "user_id", userID, "error", err)
	}
}

// newVerificationToken returns a 64-char hex token for contact emails.
func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
