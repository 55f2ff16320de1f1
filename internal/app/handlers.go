package app

import (
	"context"
	"errors"

	"ribscan/internal/gui"
	"ribscan/internal/logger"
	"ribscan/internal/settings"
	"ribscan/internal/workflow"
)

const StatusSaved = "Configuration saved!"

type Handlers struct {
	ctx          context.Context
	orchestrator *workflow.Orchestrator
	store        *settings.Store
	guiManager   *gui.Manager
	logger       logger.Logger
}

func NewHandlers(ctx context.Context, o *workflow.Orchestrator, store *settings.Store, gm *gui.Manager, log logger.Logger) *Handlers {
	return &Handlers{
		ctx:          ctx,
		orchestrator: o,
		store:        store,
		guiManager:   gm,
		logger:       log,
	}
}

func (h *Handlers) HandleStart() {
	job, err := h.orchestrator.Start(h.ctx)
	if errors.Is(err, workflow.ErrCycleInFlight) {
		h.guiManager.ShowInformation("Scan in Progress", "Wait for the current scan to finish.")
		return
	}
	if err != nil {
		h.guiManager.ShowError("Scan Error", err)
		return
	}

	h.logger.Debug("Handlers", "cycle started", map[string]interface{}{
		"job_id": job.ID,
	})
}

func (h *Handlers) HandleCancel() {
	h.orchestrator.Cancel()
}

// HandleSave persists s and makes it the snapshot for the next cycle.
func (h *Handlers) HandleSave(s settings.Settings) {
	if err := h.store.Save(s); err != nil {
		h.guiManager.ShowError("Settings Error", err)
		return
	}

	h.orchestrator.SetSettings(s)
	h.guiManager.MarkSettingsSaved()
	h.guiManager.SetStatus(StatusSaved)
}
