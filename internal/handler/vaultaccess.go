package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lifevault/lifevault/internal/handler/dto"
	"github.com/lifevault/lifevault/internal/repository"
	"github.com/lifevault/lifevault/internal/vault"
)

// VaultAccessHandler serves disclosed vault contents to verified contacts.
// The signed reference from the disclosure email is the only credential.
type VaultAccessHandler struct {
	repo   *repository.Repository
	signer *vault.Signer
	cipher *vault.Cipher
	logger *slog.Logger
}

// NewVaultAccessHandler creates a new VaultAccessHandler.
func NewVaultAccessHandler(repo *repository.Repository, signer *vault.Signer, cipher *vault.Cipher, logger *slog.Logger) *VaultAccessHandler {
	return &VaultAccessHandler{
		repo:   repo,
		signer: signer,
		cipher: cipher,
		logger: logger,
	}
}

// Access handles GET /vault-access/{ref}.
//
// Every refusal looks the same: a forged reference, an unknown contact,
// and a contact whose disclosure has not happened all get the same 404.
func (h *VaultAccessHandler) Access(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	contactID, err := h.signer.VerifyReference(ref)
	if err != nil {
		h.notAvailable(w)
		return
	}

	contact, err := h.repo.GetContactByID(r.Context(), contactID)
	if err != nil {
		if !errors.Is(err, repository.ErrContactNotFound) {
			h.logger.Error("vault_access_lookup_failed", "error", err)
		}
		h.notAvailable(w)
		return
	}

	// Only a verified contact that the disclosure engine has actually
	// notified may read the vault.
	if !contact.IsVerified || !contact.IsNotified {
		h.notAvailable(w)
		return
	}

	owner, err := h.repo.GetUserByID(r.Context(), contact.UserID)
	if err != nil {
		h.logger.Error("vault_access_owner_failed", "contact_id", contact.ID, "error", err)
		h.notAvailable(w)
		return
	}

	assets, err := h.repo.ListAssetsByUser(r.Context(), owner.ID)
	if err != nil {
		h.logger.Error("vault_access_assets_failed", "user_id", owner.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	responses := make([]dto.AssetResponse, 0, len(assets))
	for _, asset := range assets {
		value, err := h.cipher.Decrypt(asset.EncryptedValue)
		if err != nil {
			h.logger.Error("vault_access_decrypt_failed", "asset_id", asset.ID, "error", err)
			continue
		}
		responses = append(responses, *dto.ToAssetResponse(asset, value))
	}

	h.logger.Info("vault_accessed",
		"contact_id", contact.ID,
		"user_id", owner.ID,
		"assets", len(responses),
	)

	writeJSON(w, http.StatusOK, dto.VaultAccessResponse{
		OwnerName:  owner.FullName(),
		OwnerEmail: owner.Email,
		RevealedAt: owner.VaultRevealedAt,
		Assets:     responses,
	})
}

func (h *VaultAccessHandler) notAvailable(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "VAULT_NOT_AVAILABLE", "No vault is available at this address")
}
