package telephony

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/grsix/outreach/pkg/dialogue"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/store"
)

// WebhookHandler serves the Twilio voice webhooks that drive a live call:
// the opening pitch when the call connects, then one turn per speech result.
type WebhookHandler struct {
	store  *store.Store
	engine *dialogue.Engine
	logger logger.Logger
}

// NewWebhookHandler creates the voice webhook handler.
func NewWebhookHandler(st *store.Store, engine *dialogue.Engine, log logger.Logger) *WebhookHandler {
	if log == nil {
		log = logger.Default()
	}
	return &WebhookHandler{store: st, engine: engine, logger: log}
}

// Register mounts the webhook routes on the given group, conventionally
// /api/twilio.
func (h *WebhookHandler) Register(g *echo.Group) {
	g.POST("/:agentId", h.CallStart)
	g.POST("/step-2/:agentId", h.CallTurn)
	g.POST("/reset/:callSid", h.ResetSession)
}

// CallStart answers Twilio's first webhook fetch with the sales opening and
// a speech gather pointing at the turn endpoint.
func (h *WebhookHandler) CallStart(c echo.Context) error {
	agent, err := h.lookupAgent(c)
	if err != nil {
		return h.respondXML(c, http.StatusNotFound, sayAndHangup("Agent not found. Goodbye!"))
	}

	callSid := c.FormValue("CallSid")
	if callSid == "" {
		callSid = "unknown-session"
	}

	company := agent.CompanyName
	if company == "" {
		company = "our company"
	}

	greeting := "Hi! This is a quick call to share something valuable."
	intro := fmt.Sprintf("I'm calling from %s, and we specialize in helping people like you.", company)
	hook := "Can I take just 30 seconds to tell you what makes our offerings stand out?"

	h.engine.Begin(callSid, referenceScript(agent), greeting+" "+intro+" "+hook)
	h.logger.Info("call connected", "call_sid", callSid, "agent_id", agent.ID)

	gather := Gather{
		Input:   "speech",
		Action:  fmt.Sprintf("/api/twilio/step-2/%d?sessionId=%s", agent.ID, callSid),
		Method:  http.MethodPost,
		Timeout: speechTimeout,
		Verbs: []any{
			Say{Voice: sayVoice, Language: sayLanguage, Text: greeting},
			Pause{Length: chunkPause},
			Say{Text: intro},
			Pause{Length: chunkPause},
			Say{Text: hook},
		},
	}

	return h.respondXML(c, http.StatusOK, &Response{Verbs: []any{gather}})
}

// CallTurn handles one gathered speech result: it runs a dialogue turn and
// either re-gathers or signs off and hangs up.
func (h *WebhookHandler) CallTurn(c echo.Context) error {
	agent, err := h.lookupAgent(c)
	if err != nil {
		return h.respondXML(c, http.StatusNotFound, sayAndHangup("Agent not found. Goodbye!"))
	}

	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		sessionID = "unknown-session"
	}

	speech := c.FormValue("SpeechResult")
	if speech == "" {
		// Nothing was heard within the gather timeout. Dead air on a phone
		// call is ended, not looped.
		h.engine.Reset(sessionID)
		return h.respondXML(c, http.StatusOK,
			sayAndHangup("Sorry, I didn't catch that. Let's try again later. Goodbye!"))
	}

	reply, done := h.engine.Turn(c.Request().Context(), sessionID, referenceScript(agent), speech)

	resp := &Response{Verbs: spokenChunks(reply)}
	if done {
		resp.Verbs = append(resp.Verbs,
			Say{Text: "Thanks again for your time. I hope we get to connect soon. Goodbye!"},
			Hangup{},
		)
	} else {
		resp.Verbs = append(resp.Verbs, Gather{
			Input:   "speech",
			Action:  fmt.Sprintf("/api/twilio/step-2/%d?sessionId=%s", agent.ID, sessionID),
			Method:  http.MethodPost,
			Timeout: speechTimeout,
		})
	}

	return h.respondXML(c, http.StatusOK, resp)
}

// ResetSession drops the conversation state for a call SID.
func (h *WebhookHandler) ResetSession(c echo.Context) error {
	h.engine.Reset(c.Param("callSid"))
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *WebhookHandler) lookupAgent(c echo.Context) (*store.Agent, error) {
	agentID, err := strconv.ParseInt(c.Param("agentId"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid agent id")
	}
	return h.store.GetAgent(c.Request().Context(), agentID)
}

func (h *WebhookHandler) respondXML(c echo.Context, status int, resp *Response) error {
	doc, err := Render(resp)
	if err != nil {
		h.logger.Error("failed to render voice response", "error", err)
		doc, _ = Render(sayAndHangup("Internal server error. Goodbye!"))
		status = http.StatusInternalServerError
	}
	return c.Blob(status, "text/xml", []byte(doc))
}

// referenceScript picks the factual grounding for the conversation, falling
// back to the agent's stated purpose when no script was generated.
func referenceScript(agent *store.Agent) string {
	if agent.Script != "" {
		return agent.Script
	}
	return agent.Purpose
}
