package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apierrors "github.com/grsix/outreach/pkg/api/errors"
	"github.com/grsix/outreach/pkg/campaigns"
	"github.com/grsix/outreach/pkg/clock"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/models"
	"github.com/grsix/outreach/pkg/store"
)

// CampaignHandler handles campaign launch, lead imports and the analytics
// dashboard queries.
type CampaignHandler struct {
	svc    *campaigns.Service
	logger logger.Logger
}

// NewCampaignHandler creates a new campaign handler.
func NewCampaignHandler(svc *campaigns.Service, log logger.Logger) *CampaignHandler {
	return &CampaignHandler{svc: svc, logger: log}
}

// Register mounts the campaign routes on the given group.
func (h *CampaignHandler) Register(g *echo.Group) {
	g.GET("", h.ListCampaigns)
	g.GET("/stats", h.Stats)
	g.GET("/stats/trend", h.Trend)
	g.GET("/leaderboard", h.Leaderboard)
	g.GET("/calls/recent", h.RecentCalls)
	g.POST("/start-campaign", h.StartCampaign)
	g.POST("/import-leads", h.ImportLeads)
	g.GET("/:id", h.GetCampaign)
}

// StartCampaign creates a campaign and queues its leads for sequential
// dialing.
func (h *CampaignHandler) StartCampaign(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.StartCampaignRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	scheduledAt, err := clock.Parse(req.ScheduledAt)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid scheduled time. Use an ISO date-time.")
	}

	leads := make([]campaigns.Lead, len(req.Leads))
	for i, l := range req.Leads {
		leads[i] = campaigns.Lead{Name: l.Name, Phone: l.Phone}
	}

	result, err := h.svc.Start(ctx, req.AgentID, leads, scheduledAt)
	if err != nil {
		switch {
		case errors.Is(err, campaigns.ErrMissingFields):
			return apierrors.BadRequestError(c, "Agent, leads and scheduled time are required")
		case errors.Is(err, campaigns.ErrNoValidLeads):
			return apierrors.BadRequestError(c, "No lead has a dialable phone number")
		case errors.Is(err, store.ErrNotFound):
			return apierrors.NotFoundError(c, "agent")
		default:
			return apierrors.DatabaseError(c, err)
		}
	}

	h.logger.Info("🚀 Campaign started", "campaign_id", result.CampaignID,
		"scheduled", result.Scheduled, "skipped", result.Skipped)
	return c.JSON(http.StatusOK, result)
}

// ImportLeads parses an uploaded XLSX workbook into lead rows. The client
// reviews them before launching a campaign.
func (h *CampaignHandler) ImportLeads(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apierrors.BadRequestError(c, "A lead sheet file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	defer f.Close()

	leads, err := campaigns.ParseLeadsXLSX(f)
	if err != nil {
		if errors.Is(err, campaigns.ErrNoPhoneColumn) {
			return apierrors.BadRequestError(c, "No phone column found in the sheet")
		}
		return apierrors.BadRequestError(c, "Could not parse the lead sheet")
	}

	return c.JSON(http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}

// ListCampaigns returns every campaign, newest schedule first.
func (h *CampaignHandler) ListCampaigns(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetCampaign returns one campaign by id.
func (h *CampaignHandler) GetCampaign(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid campaign id")
	}

	campaign, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "campaign")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// Stats returns aggregated per-status call counts for the dashboard.
func (h *CampaignHandler) Stats(c echo.Context) error {
	filter, err := statsFilterFromQuery(c)
	if err != nil {
		return apierrors.BadRequestError(c, err.Error())
	}

	counts, err := h.svc.Stats(c.Request().Context(), filter)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Trend returns resolved call volume bucketed by hour or day.
func (h *CampaignHandler) Trend(c echo.Context) error {
	filter, err := statsFilterFromQuery(c)
	if err != nil {
		return apierrors.BadRequestError(c, err.Error())
	}

	interval := c.QueryParam("interval")
	if interval == "" {
		interval = "day"
	}

	points, err := h.svc.Trend(c.Request().Context(), filter, interval)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, points)
}

// Leaderboard ranks agents by call volume or completions.
func (h *CampaignHandler) Leaderboard(c echo.Context) error {
	filter, err := statsFilterFromQuery(c)
	if err != nil {
		return apierrors.BadRequestError(c, err.Error())
	}

	orderBy := c.QueryParam("type")
	if orderBy == "" {
		orderBy = "total"
	}
	period := c.QueryParam("period")

	rows, err := h.svc.Leaderboard(c.Request().Context(), filter, orderBy, period)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// RecentCalls lists the most recently resolved calls.
func (h *CampaignHandler) RecentCalls(c echo.Context) error {
	filter, err := statsFilterFromQuery(c)
	if err != nil {
		return apierrors.BadRequestError(c, err.Error())
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return apierrors.BadRequestError(c, "limit must be between 1 and 100")
		}
		limit = n
	}

	calls, err := h.svc.Recent(c.Request().Context(), filter, limit)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, calls)
}

// statsFilterFromQuery reads the shared campaignId/agentId/from/to filter
// query parameters.
func statsFilterFromQuery(c echo.Context) (store.StatsFilter, error) {
	var filter store.StatsFilter

	if raw := c.QueryParam("campaignId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New("campaignId must be numeric")
		}
		filter.CampaignID = &id
	}
	if raw := c.QueryParam("agentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New("agentId must be numeric")
		}
		filter.AgentID = &id
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := clock.Parse(raw)
		if err != nil {
			return filter, errors.New("from must be an ISO date-time")
		}
		filter.From = clock.Format(t)
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := clock.Parse(raw)
		if err != nil {
			return filter, errors.New("to must be an ISO date-time")
		}
		filter.To = clock.Format(t)
	}

	return filter, nil
}
