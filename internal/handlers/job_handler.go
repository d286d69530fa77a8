package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/jobs"
	"github.com/gofiber/fiber/v2"
)

// JobHandler exposes the batch passes to the external scheduler.
type JobHandler struct {
	reconciler *jobs.ExpiryReconciler
	sweeper    *jobs.PendingSweeper
}

func NewJobHandler(reconciler *jobs.ExpiryReconciler, sweeper *jobs.PendingSweeper) *JobHandler {
	return &JobHandler{reconciler: reconciler, sweeper: sweeper}
}

func (h *JobHandler) ExpiryReconcile(c *fiber.Ctx) error {
	report, err := h.reconciler.Run(c.UserContext())
	if err != nil {
		slog.Error("expiry reconcile failed", "action", "expiry_reconcile", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Reconcile failed")
	}
	return c.JSON(report)
}

func (h *JobHandler) PendingSweep(c *fiber.Ctx) error {
	report, err := h.sweeper.Run(c.UserContext())
	if err != nil {
		slog.Error("pending sweep failed", "action", "pending_sweep", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Sweep failed")
	}
	return c.JSON(report)
}
