package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lifevault/lifevault/internal/auth"
	"github.com/lifevault/lifevault/internal/handler/dto"
	"github.com/lifevault/lifevault/internal/repository"
)

// ActivityLogHandler serves the per-user audit trail.
type ActivityLogHandler struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewActivityLogHandler creates a new ActivityLogHandler.
func NewActivityLogHandler(repo *repository.Repository, logger *slog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		repo:   repo,
		logger: logger,
	}
}

// List handles GET /api/activity. Entries are returned newest first.
// Writes go through the stream pipeline, so very recent actions may lag
// by a few seconds.
func (h *ActivityLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	query := r.URL.Query()

	limit := 50
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	offset := 0
	if o := query.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	entries, err := h.repo.ListActivityLogs(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("activity_list_failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	responses := make([]dto.ActivityLogResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.ToActivityLogResponse(entry)
	}

	writeJSON(w, http.StatusOK, dto.ActivityLogListResponse{
		Data:   responses,
		Limit:  limit,
		Offset: offset,
	})
}
