package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/internal/generation"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

// GenerationHandler handles generation run API endpoints
type GenerationHandler struct {
	orchestrator *generation.Orchestrator
	logger       *logger.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(orch *generation.Orchestrator, log *logger.Logger) *GenerationHandler {
	return &GenerationHandler{
		orchestrator: orch,
		logger:       log,
	}
}

// Trigger starts a generation run in the background
// POST /api/generation/run?force=true&debug=true
func (h *GenerationHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	source := contracts.TriggerManual
	if r.URL.Query().Get("debug") == "true" {
		source = contracts.TriggerDebug
	}

	if h.orchestrator.Status().IsRunning {
		respondError(w, http.StatusConflict, "Generation already in progress")
		return
	}

	// Detached from the request lifetime; the run outlives the response.
	go func() {
		if err := h.orchestrator.Run(context.Background(), force, source); err != nil {
			var inProgress *contracts.GenerationInProgressError
			if errors.As(err, &inProgress) {
				return
			}
			h.logger.WithError(err).Error("Generation run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"status": "started",
			"force":  force,
			"source": source,
		},
	})
}

// Status returns the current run state
// GET /api/generation/status
func (h *GenerationHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.orchestrator.Status(),
	})
}
