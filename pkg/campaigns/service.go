package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grsix/outreach/pkg/cache"
	"github.com/grsix/outreach/pkg/clock"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/phone"
	"github.com/grsix/outreach/pkg/store"
)

var (
	// ErrMissingFields is returned when a campaign request lacks an agent,
	// leads or a start time.
	ErrMissingFields = errors.New("campaigns: agent, leads and scheduled time are required")
	// ErrNoValidLeads is returned when no lead has a dialable phone number.
	ErrNoValidLeads = errors.New("campaigns: no lead has a dialable phone number")
)

// How long a stats snapshot may be served from cache. The dashboard polls
// faster than this, the pipeline moves slower.
const statsCacheTTL = 10 * time.Second

// Lead is one row of an uploaded lead list.
type Lead struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// StartResult reports what a campaign start actually enqueued.
type StartResult struct {
	CampaignID int64 `json:"campaign_id"`
	Scheduled  int   `json:"scheduled"`
	Skipped    int   `json:"skipped"`
}

// Service owns campaign creation and the read-side analytics endpoints.
type Service struct {
	store  *store.Store
	cache  *cache.Client
	logger logger.Logger
}

// New creates a campaign service. cache may be nil; stats are then computed
// on every request.
func New(st *store.Store, c *cache.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{store: st, cache: c, logger: log}
}

// Start creates a campaign and enqueues its leads: the first valid lead is
// scheduled at scheduledAt, every later one waits its turn. Leads whose phone
// number cannot be normalized are dropped and counted, not fatal.
func (s *Service) Start(ctx context.Context, agentID int64, leads []Lead, scheduledAt time.Time) (*StartResult, error) {
	if agentID == 0 || len(leads) == 0 || scheduledAt.IsZero() {
		return nil, ErrMissingFields
	}

	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	type queuedLead struct {
		name   string
		number string
	}
	var queued []queuedLead
	skipped := 0
	for _, lead := range leads {
		number, err := phone.Normalize(lead.Phone)
		if err != nil {
			skipped++
			s.logger.Warn("dropping lead with undialable number", "name", lead.Name, "raw", lead.Phone, "error", err)
			continue
		}
		name := strings.TrimSpace(lead.Name)
		if name == "" {
			name = "Lead"
		}
		queued = append(queued, queuedLead{name: name, number: number})
	}
	if len(queued) == 0 {
		return nil, ErrNoValidLeads
	}

	startAt := clock.Format(scheduledAt)

	campaignID, err := s.store.InsertCampaign(ctx, store.Campaign{
		Name:          fmt.Sprintf("Campaign_%s", startAt),
		AgentID:       agent.ID,
		Status:        store.CampaignStatusPending,
		ScheduledTime: startAt,
	})
	if err != nil {
		return nil, err
	}

	for i, lead := range queued {
		script := agent.Script
		if strings.Contains(script, "{name}") {
			script = strings.Replace(script, "{name}", lead.name, 1)
		}

		call := store.ScheduledCall{
			CustomerName: lead.name,
			PhoneNumber:  lead.number,
			Script:       script,
			Status:       store.CallStatusWaiting,
			AgentID:      &agent.ID,
			CampaignID:   &campaignID,
		}
		// Only the head of the queue carries a schedule; the sweep promotes
		// the rest one at a time.
		if i == 0 {
			call.Status = store.CallStatusPending
			call.ScheduledTime = startAt
		}

		if _, err := s.store.InsertScheduledCall(ctx, call); err != nil {
			return nil, err
		}
	}

	s.logger.Info("campaign created", "campaign_id", campaignID, "scheduled", len(queued), "skipped", skipped)
	return &StartResult{CampaignID: campaignID, Scheduled: len(queued), Skipped: skipped}, nil
}

// Get loads one campaign.
func (s *Service) Get(ctx context.Context, id int64) (*store.Campaign, error) {
	return s.store.GetCampaign(ctx, id)
}

// List returns all campaigns, newest schedule first.
func (s *Service) List(ctx context.Context) ([]store.Campaign, error) {
	return s.store.ListCampaigns(ctx)
}

// Stats aggregates per-status call counts, served from cache for a few
// seconds at a time.
func (s *Service) Stats(ctx context.Context, filter store.StatsFilter) (store.StatusCounts, error) {
	key := statsCacheKey(filter)

	if s.cache != nil {
		var cached store.StatusCounts
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("stats cache read failed", "error", err)
		} else if found {
			return cached, nil
		}
	}

	counts, err := s.store.StatusCounts(ctx, filter)
	if err != nil {
		return store.StatusCounts{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, counts, statsCacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", "error", err)
		}
	}
	return counts, nil
}

// Trend buckets resolved calls by hour or day.
func (s *Service) Trend(ctx context.Context, filter store.StatsFilter, interval string) ([]store.TrendPoint, error) {
	return s.store.CallTrend(ctx, filter, interval)
}

// Leaderboard ranks agents. period may be "today" or "last7days" as a
// shortcut for an explicit From bound.
func (s *Service) Leaderboard(ctx context.Context, filter store.StatsFilter, orderBy, period string) ([]store.LeaderboardRow, error) {
	now := time.Now().In(clock.ISTZone)
	switch period {
	case "today":
		filter.From = clock.Format(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, clock.ISTZone))
	case "last7days":
		filter.From = clock.Format(now.AddDate(0, 0, -7))
	}
	return s.store.Leaderboard(ctx, filter, orderBy)
}

// Recent lists the most recently resolved calls.
func (s *Service) Recent(ctx context.Context, filter store.StatsFilter, limit int) ([]store.ScheduledCall, error) {
	return s.store.RecentCalls(ctx, filter, limit)
}

func statsCacheKey(filter store.StatsFilter) string {
	campaign, agent := int64(0), int64(0)
	if filter.CampaignID != nil {
		campaign = *filter.CampaignID
	}
	if filter.AgentID != nil {
		agent = *filter.AgentID
	}
	return fmt.Sprintf("stats:c%d:a%d:%s:%s", campaign, agent, filter.From, filter.To)
}
