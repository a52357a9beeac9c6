package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grsix/outreach/pkg/ai"
	apierrors "github.com/grsix/outreach/pkg/api/errors"
	"github.com/grsix/outreach/pkg/clock"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/models"
	"github.com/grsix/outreach/pkg/phone"
	"github.com/grsix/outreach/pkg/store"
)

// ScheduleHandler handles standalone scheduled-call requests.
type ScheduleHandler struct {
	store     *store.Store
	generator *ai.Generator
	logger    logger.Logger
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(st *store.Store, generator *ai.Generator, log logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{store: st, generator: generator, logger: log}
}

// Register mounts the schedule routes on the given group.
func (h *ScheduleHandler) Register(g *echo.Group) {
	g.POST("", h.ScheduleCall)
	g.GET("", h.ListCalls)
}

// ScheduleCall generates a call script and queues a single pending call.
func (h *ScheduleHandler) ScheduleCall(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.ScheduleCallRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	scheduledAt, err := clock.Parse(req.ScheduledTime)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid scheduled time. Use an ISO date-time.")
	}

	number, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid phone number")
	}

	script, err := h.generator.GenerateCallScript(ctx, req.CompanyName, req.KnowledgeBase)
	if err != nil {
		h.logger.Error("❌ Error scheduling call", "error", err)
		return apierrors.InternalError(c, err)
	}

	call := store.ScheduledCall{
		CustomerName:  req.CustomerName,
		PhoneNumber:   number,
		ScheduledTime: clock.Format(scheduledAt),
		Script:        script,
		Status:        store.CallStatusPending,
	}
	if req.AgentID > 0 {
		call.AgentID = &req.AgentID
	}

	id, err := h.store.InsertScheduledCall(ctx, call)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	h.logger.Info("📅 Call scheduled", "id", id, "customer", req.CustomerName, "time", call.ScheduledTime)
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Call scheduled!", ID: id})
}

// ListCalls returns every scheduled call, newest first.
func (h *ScheduleHandler) ListCalls(c echo.Context) error {
	calls, err := h.store.ListScheduledCalls(c.Request().Context())
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, calls)
}
