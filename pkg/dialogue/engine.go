package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/grsix/outreach/pkg/ai/llm"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/metrics"
)

// Completer is the completion-service surface the engine needs. Satisfied by
// *llm.Client.
type Completer interface {
	Chat(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// Fixed replies. The engine never surfaces raw errors to a live phone call.
const (
	// RepeatPrompt is spoken when the speech layer delivered empty input.
	RepeatPrompt = "Sorry, I didn't catch that. Could you repeat?"
	// FallbackReply is spoken when the completion service fails mid-call.
	FallbackReply = "Sorry, something went wrong. Could you repeat that?"
	// ClosingReply is spoken when the lead asks to end the call.
	ClosingReply = "Got it! Thanks for your time. Have a great day!"
)

// Engine drives one conversational turn at a time: it maintains the bounded
// per-call history, asks the completion service for the next reply, and
// decides whether the call should continue.
type Engine struct {
	sessions SessionStore
	llm      Completer
	intents  IntentClassifier
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// NewEngine creates a dialogue turn engine.
func NewEngine(sessions SessionStore, completer Completer, intents IntentClassifier, log logger.Logger, m *metrics.Metrics) *Engine {
	if intents == nil {
		intents = NewLexiconClassifier()
	}
	if log == nil {
		log = logger.Default()
	}
	return &Engine{
		sessions: sessions,
		llm:      completer,
		intents:  intents,
		logger:   log,
		metrics:  m,
	}
}

// Turn processes one user utterance for the given session and returns the
// reply to speak plus done=true when the call should hang up afterwards.
//
// Turn never returns an error: completion failures become FallbackReply so a
// transient API error cannot silently kill a live call.
func (e *Engine) Turn(ctx context.Context, sessionID, referenceScript, userInput string) (string, bool) {
	e.metrics.DialogueTurn()

	// Empty speech is a no-op on history; just ask the lead to repeat.
	if strings.TrimSpace(userInput) == "" {
		return RepeatPrompt, false
	}

	if !e.sessions.Exists(sessionID) {
		e.sessions.Create(sessionID, Message{
			Role:    RoleSystem,
			Content: systemPrompt(referenceScript),
		})
	}

	e.sessions.Append(sessionID, Message{Role: RoleUser, Content: userInput})

	history := e.sessions.History(sessionID)
	messages := make([]llm.ChatMessage, len(history))
	for i, msg := range history {
		messages[i] = llm.ChatMessage{Role: msg.Role, Content: msg.Content}
	}

	reply, err := e.llm.Chat(ctx, messages)
	if err != nil {
		// The session is retained and the user turn stays in history; the
		// assistant turn is not recorded for a reply that was never spoken.
		e.metrics.LLMFailure()
		e.logger.Error("completion service failed", "session_id", sessionID, "error", err)
		return FallbackReply, false
	}

	reply = strings.TrimSpace(reply)
	e.sessions.Append(sessionID, Message{Role: RoleAssistant, Content: reply})

	if e.intents.ShouldTerminate(userInput) {
		e.logger.Info("lead ended call", "session_id", sessionID)
		e.endSession(sessionID)
		return ClosingReply, true
	}

	if e.intents.IsGoodbye(reply) {
		e.logger.Info("assistant signed off", "session_id", sessionID)
		e.endSession(sessionID)
		return reply, true
	}

	return reply, false
}

// Begin seeds a fresh session for a call that just connected, recording the
// spoken greeting as the first assistant turn. Any stale session under the
// same id is dropped first.
func (e *Engine) Begin(sessionID, referenceScript, greeting string) {
	e.sessions.Delete(sessionID)
	e.sessions.Create(sessionID, Message{
		Role:    RoleSystem,
		Content: systemPrompt(referenceScript),
	})
	e.sessions.Append(sessionID, Message{Role: RoleAssistant, Content: greeting})
}

// Reset drops a session so the next turn for the same id starts fresh.
func (e *Engine) Reset(sessionID string) {
	e.endSession(sessionID)
}

func (e *Engine) endSession(sessionID string) {
	e.sessions.Delete(sessionID)
	if counter, ok := e.sessions.(interface{ Count() int }); ok {
		e.metrics.SetActiveSessions(counter.Count())
	}
}

func systemPrompt(referenceScript string) string {
	return fmt.Sprintf(`You are a smart, fast-talking, persuasive AI sales assistant.

IMPORTANT:
- Your job is to convert the lead, not just explain.
- NEVER read or quote from the reference script. Just use it to answer questions when needed.
- Speak like a confident human: fast, warm, casual, helpful, and professional.
- After every sentence or question, pause and wait for the user's reply.
- Respond in short chunks like:
  "Hey! I'm calling from [company]..." then wait. "We help people like you with..." then wait.
- If the user sounds uninterested (says "not now", "bye", "stop", etc.), politely end the call.
- Always stay goal-focused: Try to book a demo, get interest, or qualify the lead.
- Reply in plain spoken prose only, no markup, no lists.

FACTS ONLY (do not repeat directly):
"""%s"""`, referenceScript)
}
