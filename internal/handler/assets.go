package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lifevault/lifevault/internal/auth"
	"github.com/lifevault/lifevault/internal/handler/dto"
	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/model"
	"github.com/lifevault/lifevault/internal/repository"
	"github.com/lifevault/lifevault/internal/vault"
)

// AssetHandler handles CRUD for vault assets. Asset values are sealed with
// the vault cipher before they reach the database and unsealed only for
// the owner (or, after disclosure, for verified contacts).
type AssetHandler struct {
	repo     *repository.Repository
	cipher   *vault.Cipher
	activity ActivityRecorder
	clock    inactivity.Clock
	logger   *slog.Logger
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(repo *repository.Repository, cipher *vault.Cipher, activity ActivityRecorder, clock inactivity.Clock, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		repo:     repo,
		cipher:   cipher,
		activity: activity,
		clock:    clock,
		logger:   logger,
	}
}

// Create handles POST /api/assets.
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "Asset name is required")
		return
	}
	if req.Value == "" {
		writeError(w, http.StatusBadRequest, "MISSING_VALUE", "Asset value is required")
		return
	}
	if req.Category == "" {
		req.Category = model.AssetCategoryOther
	}

	sealed, err := h.cipher.Encrypt(req.Value)
	if err != nil {
		h.logger.Error("asset_encrypt_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	now := h.clock.Now()
	asset := &model.Asset{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           req.Name,
		Category:       req.Category,
		EncryptedValue: sealed,
		Notes:          req.Notes,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.repo.CreateAsset(r.Context(), asset); err != nil {
		h.logger.Error("asset_create_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.recordActivity(r, userID, model.ActivityAssetAdded, fmt.Sprintf("Asset %q added", asset.Name))

	h.logger.Info("asset_created", "user_id", userID, "asset_id", asset.ID)

	writeJSON(w, http.StatusCreated, dto.ToAssetResponse(asset, req.Value))
}

// List handles GET /api/assets. Values are omitted from the listing; use
// Get to read a single decrypted value.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	assets, err := h.repo.ListAssetsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("asset_list_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	responses := make([]dto.AssetResponse, len(assets))
	for i, asset := range assets {
		responses[i] = *dto.ToAssetResponse(asset, "")
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": responses})
}

// Get handles GET /api/assets/{id}, returning the decrypted value.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	assetID := chi.URLParam(r, "id")

	asset, err := h.repo.GetAssetByID(r.Context(), userID, assetID)
	if err != nil {
		h.handleRepoError(w, err, userID)
		return
	}

	value, err := h.cipher.Decrypt(asset.EncryptedValue)
	if err != nil {
		h.logger.Error("asset_decrypt_failed", "asset_id", asset.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAssetResponse(asset, value))
}

// Update handles PATCH /api/assets/{id}.
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	assetID := chi.URLParam(r, "id")

	var req dto.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	asset, err := h.repo.GetAssetByID(r.Context(), userID, assetID)
	if err != nil {
		h.handleRepoError(w, err, userID)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "MISSING_NAME", "Asset name cannot be empty")
			return
		}
		asset.Name = name
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Notes != nil {
		asset.Notes = *req.Notes
	}
	if req.Tags != nil {
		asset.Tags = *req.Tags
	}
	if req.Value != nil {
		if *req.Value == "" {
			writeError(w, http.StatusBadRequest, "MISSING_VALUE", "Asset value cannot be empty")
			return
		}
		sealed, err := h.cipher.Encrypt(*req.Value)
		if err != nil {
			h.logger.Error("asset_encrypt_failed", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			return
		}
		asset.EncryptedValue = sealed
	}

	if err := h.repo.UpdateAsset(r.Context(), asset, h.clock.Now()); err != nil {
		h.handleRepoError(w, err, userID)
		return
	}

	h.recordActivity(r, userID, model.ActivityAssetUpdated, fmt.Sprintf("Asset %q updated", asset.Name))

	h.logger.Info("asset_updated", "user_id", userID, "asset_id", asset.ID)

	writeJSON(w, http.StatusOK, dto.ToAssetResponse(asset, ""))
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	assetID := chi.URLParam(r, "id")

	asset, err := h.repo.GetAssetByID(r.Context(), userID, assetID)
	if err != nil {
		h.handleRepoError(w, err, userID)
		return
	}

	if err := h.repo.DeleteAsset(r.Context(), userID, assetID); err != nil {
		h.handleRepoError(w, err, userID)
		return
	}

	h.recordActivity(r, userID, model.ActivityAssetDeleted, fmt.Sprintf("Asset %q deleted", asset.Name))

	h.logger.Info("asset_deleted", "user_id", userID, "asset_id", assetID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetHandler) recordActivity(r *http.Request, userID string, kind model.ActivityKind, description string) {
	if err := h.activity.Record(r.Context(), userID, kind, description); err != nil {
		h.logger.Warn("activity_record_failed", "user_id", userID, "error", err)
	}
}

func (h *AssetHandler) handleRepoError(w http.ResponseWriter, err error, userID string) {
	if errors.Is(err, repository.ErrAssetNotFound) {
		writeError(w, http.StatusNotFound, "ASSET_NOT_FOUND", "Asset not found")
		return
	}
	h.logger.Error("asset_repo_error", "user_id", userID, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
