package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/grsix/outreach/pkg/ai/llm"
)

// Completer is the completion-service surface the generator needs. Satisfied
// by *llm.Client.
type Completer interface {
	Chat(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// Generator produces cold emails, call scripts and knowledge base revisions
// from prompted completions.
type Generator struct {
	llm Completer
}

// NewGenerator creates a generator on top of a completion client.
func NewGenerator(completer Completer) *Generator {
	return &Generator{llm: completer}
}

const minWebsiteTextLen = 100

// GenerateColdEmail writes a short personalized cold email from extracted
// website text.
func (g *Generator) GenerateColdEmail(ctx context.Context, websiteText string) (string, error) {
	if len(strings.TrimSpace(websiteText)) < minWebsiteTextLen {
		return "", fmt.Errorf("website content too short or failed to extract")
	}

	prompt := fmt.Sprintf(`You're a professional cold outreach expert working for GRSIX AI — an AI-powered follow-up and CRM automation system.

Your job is to write short, natural, highly personalized cold emails based on the target company's website content (below). Each email should:

1. Start with a greeting like "Hi [Company Name] Team," or "Hi [Name],"
2. Acknowledge the website/company positively but concisely — no generic praise
3. Re-state a pain they likely face (missed follow-ups, lead leakage, staff overload, slow response times, etc.)
4. Show how GRSIX AI solves that — with voice + email automation, lead tracking, CRM sync
5. Be written like a human — no robotic tone, no "I empathize with your pain" language
6. Stay under 140 words
7. End with a clear CTA (e.g., "Would you be open to a 15-minute call next week?")

Only return the final email body — no titles, no extra commentary.

Website content:
"""%s"""`, websiteText)

	reply, err := g.llm.Chat(ctx, []llm.ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("failed to generate cold email: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// GenerateCallScript writes a persuasive call script grounded in a company
// knowledge base.
func (g *Generator) GenerateCallScript(ctx context.Context, companyName, knowledgeBase string) (string, error) {
	prompt := fmt.Sprintf(`You're a persuasive, confident AI sales assistant calling on behalf of "%s".

Goal: Convince the lead to use the product/service, book a demo, or learn more — not just share info.

Use the following knowledge base only to understand what the company offers, but speak naturally, step by step.

Your call flow should be:
- Friendly intro and soft opener
- Ask if it's a good time
- Mention what the company does, but keep it tight and tailored
- Clearly explain how the solution benefits the lead
- Ask small questions to keep them engaged
- Handle objections naturally, like a human would
- Try to get interest, convert or move forward

Knowledge Base:
"""%s"""`, companyName, knowledgeBase)

	reply, err := g.llm.Chat(ctx, []llm.ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		return "", fmt.Errorf("failed to generate call script: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// ImproveKnowledgeBase rewrites a knowledge base applying human feedback.
func (g *Generator) ImproveKnowledgeBase(ctx context.Context, oldBase, instruction string) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful AI assistant. You're improving a company's knowledge base based on human feedback.

--- Original Knowledge Base ---
%s

--- Instruction ---
%s

Now rewrite the updated knowledge base clearly, keeping the original structure and integrating the feedback.`, oldBase, instruction)

	reply, err := g.llm.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: "You are a knowledge base editor AI."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to improve knowledge base: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
