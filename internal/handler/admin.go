package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lifevault/lifevault/internal/inactivity"
	"github.com/lifevault/lifevault/internal/metrics"
)

// AdminHandler exposes operational endpoints guarded by the admin secret.
type AdminHandler struct {
	evaluator *inactivity.Evaluator
	snapshots metrics.Snapshotter
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. snapshots may be nil when
// the noop recorder is in use.
func NewAdminHandler(evaluator *inactivity.Evaluator, snapshots metrics.Snapshotter, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		evaluator: evaluator,
		snapshots: snapshots,
		logger:    logger,
	}
}

// TriggerEvaluation handles POST /internal/evaluate, running a full
// evaluation pass immediately instead of waiting for the scheduler.
func (h *AdminHandler) TriggerEvaluation(w http.ResponseWriter, r *http.Request) {
	summary, err := h.evaluator.Run(r.Context())
	if err != nil {
		if errors.Is(err, inactivity.ErrRunInProgress) {
			writeError(w, http.StatusConflict, "RUN_IN_PROGRESS", "An evaluation run is already in progress")
			return
		}
		h.logger.Error("manual_evaluation_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("manual_evaluation_completed",
		"users_evaluated", summary.UsersEvaluated,
		"warnings_sent", summary.WarningsSent,
		"disclosures", summary.Disclosures,
		"failures", summary.Failures,
	)

	writeJSON(w, http.StatusOK, summary)
}

// Metrics handles GET /internal/metrics.
func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeError(w, http.StatusNotFound, "METRICS_DISABLED", "Metrics collection is not enabled")
		return
	}
	writeJSON(w, http.StatusOK, h.snapshots.Snapshot())
}
