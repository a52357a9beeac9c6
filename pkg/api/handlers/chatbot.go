package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grsix/outreach/pkg/ai"
	"github.com/grsix/outreach/pkg/ai/llm"
	apierrors "github.com/grsix/outreach/pkg/api/errors"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/models"
)

// faqEntry maps trigger phrases to a canned dashboard walkthrough. FAQ hits
// skip the LLM entirely.
type faqEntry struct {
	keywords []string
	answer   string
}

// The [[DONE_BUTTON]] marker tells the dashboard widget to render its
// "Done" action under the reply.
var faqs = []faqEntry{
	{
		keywords: []string{"create campaign", "new campaign"},
		answer: `**Create a Campaign – Quick Guide**

- Click <b>Campaigns</b> on the sidebar.
- Click <b>Create Campaign</b> (blue button).
- Name your campaign, select agent, upload a CSV list, and set your schedule.
- Click <b>Start Campaign</b> to launch.

Track progress in the <b>Campaign Board</b>.

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"campaign board", "status board", "check status"},
		answer: `**Campaign Board Overview**

- Access via sidebar: <b>Campaign Board</b>.
- View campaigns with schedules and status (Ongoing/Completed).
- Click a campaign for detailed call logs and progress.

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"analytics", "analytics dashboard", "stats", "view data", "calls completed"},
		answer: `**Using Analytics Dashboard**

- Click <b>Analytics Dashboard</b> in the sidebar.
- View pie charts, stats, and call metrics.
- Filter by <b>Campaign</b> or <b>Agent</b>.
- Explore the <b>Leaderboard</b> and <b>Recent Calls</b>.

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"create agent", "add agent", "voice ai", "agent dashboard"},
		answer: `**Creating an Agent (Voice AI)**

- Go to <b>Create Agent</b> from sidebar.
- Enter details and assign a knowledge base.
- Click <b>Create</b> to add agent.
- Manage all agents under <b>Agent Dashboard</b>.

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"upload list", "upload leads", "csv", "excel", "import list"},
		answer: `**Uploading a CSV/XLSX Lead List**

- In <b>Create Campaign</b>, use "Upload Lead List".
- Select a .csv or .xlsx file.
- Confirm schedule and launch.

Supported formats: .csv, .xlsx

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"edit campaign", "change schedule", "reschedule"},
		answer: `**Editing or Rescheduling Campaigns**

- Go to <b>Campaign Board</b>.
- Click the campaign to modify.
- Update schedule/details if allowed, then save.

_Note: Some edits may be locked after launch._

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"dashboard", "overview"},
		answer: `**Dashboard Overview**

- Top-level view of campaigns, calls, and agents.
- Use sidebar to navigate to Voice, Campaigns, Analytics, and more.

[[DONE_BUTTON]]`,
	},
	{
		keywords: []string{"settings"},
		answer: `**Settings Panel**

- Access <b>Settings</b> from the sidebar.
- Configure integrations, email, voice options, and preferences.

[[DONE_BUTTON]]`,
	},
}

const chatbotSystemPrompt = `You are the in-app support assistant for the GRSIX AI SaaS dashboard.

Always reply with:
- Clear steps and bullet points.
- Bold section titles.
- Short, actionable help.
- Always end with: [[DONE_BUTTON]]

Do NOT mention features not in: Dashboard, Create Campaign, Campaign Board, Analytics Dashboard, Create Agent, Agent Dashboard, Settings.`

const chatbotFallbackAnswer = "I'm sorry, I couldn't find the answer. Please try again."

// ChatbotHandler answers in-app support questions, FAQ first with an LLM
// fallback.
type ChatbotHandler struct {
	llm    ai.Completer
	logger logger.Logger
}

// NewChatbotHandler creates a new chatbot handler.
func NewChatbotHandler(completer ai.Completer, log logger.Logger) *ChatbotHandler {
	return &ChatbotHandler{llm: completer, logger: log}
}

// Register mounts the chatbot route on the given group.
func (h *ChatbotHandler) Register(g *echo.Group) {
	g.POST("", h.Ask)
}

// Ask answers a support question.
func (h *ChatbotHandler) Ask(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	var req models.ChatbotRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Missing or invalid question.")
	}

	question := strings.TrimSpace(req.Question)
	if question == "" || len(question) > 500 {
		return apierrors.BadRequestError(c, "Missing or invalid question.")
	}

	if answer := findFAQAnswer(question); answer != "" {
		return c.JSON(http.StatusOK, models.ChatbotResponse{Answer: answer})
	}

	reply, err := h.llm.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: chatbotSystemPrompt},
		{Role: "user", Content: question},
	})
	if err != nil {
		h.logger.Error("❌ Chatbot error", "error", err)
		return apierrors.InternalError(c, err)
	}

	answer := strings.TrimSpace(reply)
	if answer == "" {
		answer = chatbotFallbackAnswer
	}
	if !strings.Contains(answer, "[[DONE_BUTTON]]") {
		answer += "\n\n[[DONE_BUTTON]]"
	}

	return c.JSON(http.StatusOK, models.ChatbotResponse{Answer: answer})
}

func findFAQAnswer(question string) string {
	lower := strings.ToLower(question)
	for _, faq := range faqs {
		for _, keyword := range faq.keywords {
			if strings.Contains(lower, keyword) {
				return faq.answer
			}
		}
	}
	return ""
}
