package api

import (
	"context"
	"net/http"

	"github.com/okian/eventpulse/internal/importer"
	"github.com/okian/eventpulse/pkg/logger"
)

// ImportDependencies runs the ticketing import.
type ImportDependencies interface {
	Import(ctx context.Context) (importer.Stats, error)
}

// ImportHandler handles POST /admin/import.
type ImportHandler struct {
	deps ImportDependencies
	log  logger.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(deps ImportDependencies, log logger.Logger) *ImportHandler {
	return &ImportHandler{deps: deps, log: log}
}

// HandleImport runs one import synchronously and returns its stats.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	if !requireMethod(w, r, op, http.MethodPost) {
		return
	}
	st, err := h.deps.Import(r.Context())
	if err != nil {
		h.log.Warn(r.Context(), "import request failed", logger.Error(err))
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
