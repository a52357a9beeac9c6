package models

// ErrorResponse is the generic error payload returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the generic success payload for write endpoints.
type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// ScheduleCallRequest schedules a single standalone call.
type ScheduleCallRequest struct {
	CustomerName  string `json:"customerName" validate:"required"`
	PhoneNumber   string `json:"phoneNumber" validate:"required"`
	ScheduledTime string `json:"scheduledTime" validate:"required"`
	CompanyName   string `json:"companyName" validate:"required"`
	KnowledgeBase string `json:"knowledgeBase" validate:"required"`
	AgentID       int64  `json:"agentId,omitempty"`
}

// LeadInput is one lead row in a campaign start request.
type LeadInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone" validate:"required"`
}

// StartCampaignRequest launches a batch of sequential calls.
type StartCampaignRequest struct {
	AgentID     int64       `json:"agentId" validate:"required"`
	Leads       []LeadInput `json:"leads" validate:"required,min=1,dive"`
	ScheduledAt string      `json:"scheduledAt" validate:"required"`
}

// GenerateScriptRequest asks for an AI call script.
type GenerateScriptRequest struct {
	KnowledgeBaseID int64  `json:"knowledgeBaseId" validate:"required"`
	Purpose         string `json:"purpose" validate:"required"`
}

// SaveAgentRequest creates a reusable call agent.
type SaveAgentRequest struct {
	KnowledgeBaseID int64  `json:"knowledgeBaseId" validate:"required"`
	Name            string `json:"name"`
	CompanyName     string `json:"companyName"`
	Purpose         string `json:"purpose" validate:"required"`
	Script          string `json:"script" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=real-time scheduled"`
}

// TriggerCallRequest places an immediate test call for an agent.
type TriggerCallRequest struct {
	To string `json:"to" validate:"required"`
}

// GenerateKnowledgeBaseRequest scrapes a website into a knowledge base.
type GenerateKnowledgeBaseRequest struct {
	CompanyName string `json:"companyName" validate:"required"`
	Website     string `json:"website" validate:"required,url"`
}

// SaveKnowledgeBaseRequest stores AI-generated or pasted content directly.
type SaveKnowledgeBaseRequest struct {
	CompanyName string `json:"companyName" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// UpdateKnowledgeBaseRequest replaces a knowledge base's content.
type UpdateKnowledgeBaseRequest struct {
	Content string `json:"content" validate:"required"`
}

// ImproveKnowledgeBaseRequest rewrites a knowledge base with an instruction.
type ImproveKnowledgeBaseRequest struct {
	Instruction string `json:"instruction" validate:"required"`
}

// GenerateEmailRequest writes a cold email from a prospect website.
type GenerateEmailRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// SendEmailRequest generates and delivers a cold email.
type SendEmailRequest struct {
	URL string `json:"url" validate:"required,url"`
	To  string `json:"to" validate:"required,email"`
}

// SaveEmailLeadRequest records an externally composed email lead.
type SaveEmailLeadRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Subject        string `json:"subject"`
	Preview        string `json:"preview"`
	Content        string `json:"content"`
	Category       string `json:"category"`
	FollowUpStatus string `json:"follow_up_status"`
}

// ChatbotRequest is an in-app support question.
type ChatbotRequest struct {
	Question string `json:"question" validate:"required,max=500"`
}

// ChatbotResponse is the support assistant's answer.
type ChatbotResponse struct {
	Answer string `json:"answer"`
}
