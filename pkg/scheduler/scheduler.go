package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/grsix/outreach/pkg/clock"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/metrics"
	"github.com/grsix/outreach/pkg/store"
)

// Dialer places outbound calls through the telephony provider. A nil error
// means the call request was accepted, not that the call connected.
type Dialer interface {
	PlaceCall(ctx context.Context, agentID int64, phoneNumber string) (string, error)
}

// Notifier pushes best-effort stats snapshots to live dashboard listeners.
// Implementations must not block.
type Notifier interface {
	Publish(event string, payload any)
}

// Scheduler walks due calls once per tick and keeps each campaign's leads
// flowing strictly one at a time.
type Scheduler struct {
	store    *store.Store
	dialer   Dialer
	notifier Notifier
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// New creates a scheduler. notifier and metrics may be nil.
func New(st *store.Store, dialer Dialer, notifier Notifier, m *metrics.Metrics, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		store:    st,
		dialer:   dialer,
		notifier: notifier,
		metrics:  m,
		logger:   log,
	}
}

// RunSweep executes one due-call scan as of now. Calls are processed
// sequentially; this is what preserves the one-pending-per-campaign
// invariant without cross-call locking. A store failure aborts the remaining
// tick only; the next tick starts clean.
func (s *Scheduler) RunSweep(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSweep(time.Since(start).Seconds())
	}()

	nowFloor := clock.Format(now)

	due, err := s.store.GetDueCalls(ctx, nowFloor)
	if err != nil {
		return fmt.Errorf("failed to fetch due calls: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	s.logger.Info("sweep started", "due_calls", len(due), "now", nowFloor)

	for _, call := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.processDueCall(ctx, call, nowFloor)
	}

	return nil
}

// processDueCall dispatches one call and performs its bookkeeping. Errors on
// a single call never abort sibling calls in the same sweep.
func (s *Scheduler) processDueCall(ctx context.Context, call store.ScheduledCall, nowFloor string) {
	log := s.logger.With("call_id", call.ID, "phone", call.PhoneNumber)

	if call.AgentID == nil {
		log.Error("call has no agent, marking failed")
		if err := s.store.MarkCallFailed(ctx, call.ID, nowFloor, "no agent assigned"); err != nil {
			log.Error("failed to mark call failed", "error", err)
			return
		}
	} else if sid, err := s.dialer.PlaceCall(ctx, *call.AgentID, call.PhoneNumber); err != nil {
		// Rejected dispatch is terminal: the call is not reset to pending and
		// will not be retried on later sweeps.
		s.metrics.DispatchFailed()
		log.Error("call dispatch rejected", "error", err)
		if err := s.store.MarkCallFailed(ctx, call.ID, nowFloor, fmt.Sprintf("dispatch failed: %v", err)); err != nil {
			log.Error("failed to mark call failed", "error", err)
			return
		}
	} else {
		// Completed means the telephony layer accepted the request, not that
		// the conversation succeeded.
		s.metrics.CallDispatched()
		log.Info("call placed", "call_sid", sid)
		if err := s.store.MarkCallCompleted(ctx, call.ID, nowFloor, "call placed"); err != nil {
			log.Error("failed to mark call completed", "error", err)
			return
		}
	}

	if call.CampaignID != nil {
		if err := s.RecomputeCampaignStatus(ctx, *call.CampaignID); err != nil {
			log.Error("failed to recompute campaign status", "error", err)
		}
	}

	s.publishStats(ctx)

	if call.CampaignID != nil {
		promoted, err := s.promoteNextLead(ctx, *call.CampaignID, nowFloor)
		if err != nil {
			log.Error("failed to promote next lead", "error", err)
		} else if promoted {
			s.publishStats(ctx)
		}
	}
}

// RecomputeCampaignStatus derives a campaign's status from its calls:
// completed when nothing is pending or waiting, otherwise in-progress. The
// stored status is a view, never a source of truth.
func (s *Scheduler) RecomputeCampaignStatus(ctx context.Context, campaignID int64) error {
	open, err := s.store.CampaignOpenCount(ctx, campaignID)
	if err != nil {
		return err
	}

	status := store.CampaignStatusInProgress
	if open == 0 {
		status = store.CampaignStatusCompleted
		s.logger.Info("campaign completed", "campaign_id", campaignID)
	}
	return s.store.SetCampaignStatus(ctx, campaignID, status)
}

// promoteNextLead moves the campaign's earliest waiting lead to pending,
// stamped with the current minute floor. Promotion is skipped while another
// call of the same campaign is still pending, so at most one lead per
// campaign is ever dispatchable.
func (s *Scheduler) promoteNextLead(ctx context.Context, campaignID int64, nowFloor string) (bool, error) {
	pending, err := s.store.CampaignPendingCount(ctx, campaignID)
	if err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	next, err := s.store.NextWaitingCall(ctx, campaignID)
	if err != nil {
		return false, err
	}
	if next == nil {
		return false, nil
	}

	if err := s.store.PromoteToPending(ctx, next.ID, nowFloor); err != nil {
		return false, err
	}

	s.logger.Info("next lead scheduled", "call_id", next.ID, "customer", next.CustomerName, "campaign_id", campaignID)
	return true, nil
}

// publishStats emits a fire-and-forget snapshot of aggregated call counts.
// The pipeline works identically with zero subscribers.
func (s *Scheduler) publishStats(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	counts, err := s.store.StatusCounts(ctx, store.StatsFilter{})
	if err != nil {
		s.logger.Error("failed to aggregate campaign stats", "error", err)
		return
	}
	s.notifier.Publish("campaign-stats", counts)
}
