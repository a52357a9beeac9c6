package store

import "errors"

// Scheduled call statuses. Transitions are monotonic:
// waiting -> pending -> (completed | failed). Terminal calls are never
// re-dispatched.
const (
	CallStatusPending   = "pending"
	CallStatusWaiting   = "waiting"
	CallStatusCompleted = "completed"
	CallStatusFailed    = "failed"
)

// Campaign statuses. Campaign status is derived from its calls and
// recomputed after every call resolution, never trusted independently.
const (
	CampaignStatusPending    = "pending"
	CampaignStatusInProgress = "in-progress"
	CampaignStatusCompleted  = "completed"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ScheduledCall is one outbound call task.
type ScheduledCall struct {
	ID            int64  `json:"id"`
	CustomerName  string `json:"customer_name"`
	PhoneNumber   string `json:"phone_number"`
	ScheduledTime string `json:"scheduled_time,omitempty"` // canonical minute ISO string, empty for waiting leads
	Script        string `json:"script,omitempty"`
	Status        string `json:"status"`
	AgentID       *int64 `json:"agent_id,omitempty"`
	CampaignID    *int64 `json:"campaign_id,omitempty"`
	CalledAt      string `json:"called_at,omitempty"`
	Duration      int64  `json:"duration,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
}

// Campaign is a named batch of scheduled calls bound to one agent.
type Campaign struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AgentID       int64  `json:"agent_id"`
	Status        string `json:"status"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// Agent is a reusable call persona bound to a knowledge base.
type Agent struct {
	ID              int64  `json:"id"`
	KnowledgeBaseID int64  `json:"knowledge_base_id"`
	Name            string `json:"name,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	Purpose         string `json:"purpose,omitempty"`
	Script          string `json:"script"`
	Type            string `json:"type,omitempty"` // real-time or scheduled
	CreatedAt       string `json:"created_at,omitempty"`
}

// KnowledgeBase holds scraped or uploaded company reference content.
type KnowledgeBase struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	SourceType string `json:"source_type"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// EmailLead is one generated cold-email record.
type EmailLead struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Preview        string `json:"preview"`
	Content        string `json:"content"`
	Category       string `json:"category"`
	FollowUpStatus string `json:"follow_up_status"`
	Time           string `json:"time"`
}

// StatsFilter narrows call aggregations by campaign, agent or called_at range.
type StatsFilter struct {
	CampaignID *int64
	AgentID    *int64
	From       string
	To         string
}

// StatusCounts is the aggregated per-status call snapshot pushed to the
// analytics dashboard.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Waiting   int `json:"waiting"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// TrendPoint is one time bucket of call volume.
type TrendPoint struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// LeaderboardRow aggregates per-agent call performance.
type LeaderboardRow struct {
	AgentID        *int64 `json:"agent_id"`
	TotalCalls     int    `json:"total_calls"`
	CompletedCalls int    `json:"completed_calls"`
	TotalDuration  int64  `json:"total_duration"`
}
