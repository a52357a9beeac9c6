package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/grsix/outreach/pkg/api/errors"
	"github.com/grsix/outreach/pkg/email"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/models"
	"github.com/grsix/outreach/pkg/store"
)

// EmailHandler handles cold email generation, delivery and the email lead
// list.
type EmailHandler struct {
	svc    *email.Service
	logger logger.Logger
}

// NewEmailHandler creates a new email handler.
func NewEmailHandler(svc *email.Service, log logger.Logger) *EmailHandler {
	return &EmailHandler{svc: svc, logger: log}
}

// Register mounts the email routes on the given group.
func (h *EmailHandler) Register(g *echo.Group) {
	g.POST("/generate-email", h.GenerateEmail)
	g.POST("/send-email", h.SendEmail)
	g.GET("/leads/email", h.ListLeads)
	g.POST("/leads/email", h.SaveLead)
	g.DELETE("/leads/email/:id", h.DeleteLead)
}

// GenerateEmail drafts a cold email from a prospect website without sending
// it.
func (h *EmailHandler) GenerateEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	var req models.GenerateEmailRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	body, err := h.svc.GenerateColdEmail(ctx, req.URL)
	if err != nil {
		h.logger.Error("❌ Cold email generation failed", "url", req.URL, "error", err)
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"email": body})
}

// SendEmail generates a cold email, delivers it and records the lead.
func (h *EmailHandler) SendEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	var req models.SendEmailRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	lead, err := h.svc.SendColdEmail(ctx, req.URL, req.To)
	if err != nil {
		h.logger.Error("❌ Cold email send failed", "to", req.To, "error", err)
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"message": "Email sent", "lead": lead})
}

// ListLeads returns every recorded email lead, newest first.
func (h *EmailHandler) ListLeads(c echo.Context) error {
	leads, err := h.svc.ListLeads(c.Request().Context())
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, leads)
}

// SaveLead records an externally composed email lead.
func (h *EmailHandler) SaveLead(c echo.Context) error {
	var req models.SaveEmailLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	id, err := h.svc.SaveLead(c.Request().Context(), store.EmailLead{
		Email:          req.Email,
		Subject:        req.Subject,
		Preview:        req.Preview,
		Content:        req.Content,
		Category:       req.Category,
		FollowUpStatus: req.FollowUpStatus,
	})
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Lead saved", ID: id})
}

// DeleteLead removes an email lead by id.
func (h *EmailHandler) DeleteLead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid lead id")
	}

	if err := h.svc.DeleteLead(c.Request().Context(), id); err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Lead deleted"})
}
