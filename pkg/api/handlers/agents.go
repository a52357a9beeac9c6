package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grsix/outreach/pkg/ai"
	apierrors "github.com/grsix/outreach/pkg/api/errors"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/models"
	"github.com/grsix/outreach/pkg/phone"
	"github.com/grsix/outreach/pkg/store"
)

// Dialer places an outbound call for an agent and returns the provider call
// id. Satisfied by *telephony.TwilioDialer.
type Dialer interface {
	PlaceCall(ctx context.Context, agentID int64, phoneNumber string) (string, error)
}

// AgentHandler handles call agent management and test calls.
type AgentHandler struct {
	store     *store.Store
	generator *ai.Generator
	dialer    Dialer
	logger    logger.Logger
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(st *store.Store, generator *ai.Generator, dialer Dialer, log logger.Logger) *AgentHandler {
	return &AgentHandler{store: st, generator: generator, dialer: dialer, logger: log}
}

// Register mounts the agent routes on the given group.
func (h *AgentHandler) Register(g *echo.Group) {
	g.POST("/generate-script", h.GenerateScript)
	g.POST("", h.SaveAgent)
	g.GET("/agents", h.ListAgents)
	g.DELETE("/:id", h.DeleteAgent)
	g.POST("/:id/call", h.TriggerCall)
}

// GenerateScript writes a call script from a stored knowledge base and a
// campaign purpose.
func (h *AgentHandler) GenerateScript(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.GenerateScriptRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	kb, err := h.store.GetKnowledgeBase(ctx, req.KnowledgeBaseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "knowledge base")
		}
		return apierrors.DatabaseError(c, err)
	}

	// The purpose rides along with the knowledge base so the script stays
	// anchored to what this agent is supposed to achieve.
	script, err := h.generator.GenerateCallScript(ctx, kb.Name, kb.Content+"\n\nCall purpose: "+req.Purpose)
	if err != nil {
		h.logger.Error("❌ Script generation failed", "error", err)
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"script": script})
}

// SaveAgent stores a reusable agent persona.
func (h *AgentHandler) SaveAgent(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SaveAgentRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if _, err := h.store.GetKnowledgeBase(ctx, req.KnowledgeBaseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "knowledge base")
		}
		return apierrors.DatabaseError(c, err)
	}

	id, err := h.store.SaveAgent(ctx, store.Agent{
		KnowledgeBaseID: req.KnowledgeBaseID,
		Name:            req.Name,
		CompanyName:     req.CompanyName,
		Purpose:         req.Purpose,
		Script:          req.Script,
		Type:            req.Type,
	})
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	h.logger.Info("✅ Agent saved", "id", id, "type", req.Type)
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Agent saved successfully", ID: id})
}

// ListAgents returns every stored agent.
func (h *AgentHandler) ListAgents(c echo.Context) error {
	agents, err := h.store.ListAgents(c.Request().Context())
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, agents)
}

// DeleteAgent removes an agent by id.
func (h *AgentHandler) DeleteAgent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid agent id")
	}

	if err := h.store.DeleteAgent(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "agent")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Agent deleted successfully"})
}

// TriggerCall places an immediate outbound call with the agent's script.
func (h *AgentHandler) TriggerCall(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid agent id")
	}

	var req models.TriggerCallRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	agent, err := h.store.GetAgent(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "agent")
		}
		return apierrors.DatabaseError(c, err)
	}

	to, err := phone.Normalize(req.To)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid phone number")
	}

	callSid, err := h.dialer.PlaceCall(ctx, agent.ID, to)
	if err != nil {
		h.logger.Error("❌ Failed to trigger call", "agent_id", agent.ID, "error", err)
		return apierrors.InternalError(c, err)
	}

	h.logger.Info("📞 Call triggered", "agent_id", agent.ID, "call_sid", callSid)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Call triggered for agent " + strconv.FormatInt(agent.ID, 10),
		"callSid": callSid,
	})
}
