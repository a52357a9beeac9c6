package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grsix/outreach/pkg/clock"
	"github.com/grsix/outreach/pkg/store"
)

// mockDialer is a fake telephony provider for testing
type mockDialer struct {
	PlaceCallFunc func(ctx context.Context, agentID int64, phone string) (string, error)
	dialed        []string
}

func (m *mockDialer) PlaceCall(ctx context.Context, agentID int64, phone string) (string, error) {
	m.dialed = append(m.dialed, phone)
	if m.PlaceCallFunc != nil {
		return m.PlaceCallFunc(ctx, agentID, phone)
	}
	return "CA0000", nil
}

type captureNotifier struct {
	events   []string
	payloads []any
}

func (n *captureNotifier) Publish(event string, payload any) {
	n.events = append(n.events, event)
	n.payloads = append(n.payloads, payload)
}

type fixture struct {
	store    *store.Store
	dialer   *mockDialer
	notifier *captureNotifier
	sched    *Scheduler
	agentID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	kbID, err := st.SaveKnowledgeBase(ctx, store.KnowledgeBase{Name: "acme", Content: "Acme sells widgets."})
	require.NoError(t, err)
	agentID, err := st.SaveAgent(ctx, store.Agent{KnowledgeBaseID: kbID, CompanyName: "Acme", Script: "Hi {name}", Type: "scheduled"})
	require.NoError(t, err)

	dialer := &mockDialer{}
	notifier := &captureNotifier{}
	return &fixture{
		store:    st,
		dialer:   dialer,
		notifier: notifier,
		sched:    New(st, dialer, notifier, nil, nil),
		agentID:  agentID,
	}
}

// seedCampaignLeads creates a campaign whose first lead is pending at the
// given time and the rest are waiting without a schedule, mirroring how
// campaign creation enqueues leads.
func (f *fixture) seedCampaignLeads(t *testing.T, at time.Time, names ...string) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	campaignID, err := f.store.InsertCampaign(ctx, store.Campaign{
		Name:          "June batch",
		AgentID:       f.agentID,
		ScheduledTime: clock.Format(at),
	})
	require.NoError(t, err)

	var callIDs []int64
	for i, name := range names {
		call := store.ScheduledCall{
			CustomerName: name,
			PhoneNumber:  "+9198765432" + string(rune('0'+i)),
			Script:       "Hi " + name,
			Status:       store.CallStatusWaiting,
			AgentID:      &f.agentID,
			CampaignID:   &campaignID,
		}
		if i == 0 {
			call.Status = store.CallStatusPending
			call.ScheduledTime = clock.Format(at)
		}
		id, err := f.store.InsertScheduledCall(ctx, call)
		require.NoError(t, err)
		callIDs = append(callIDs, id)
	}
	return campaignID, callIDs
}

func TestRunSweepDispatchesAndPromotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	campaignID, ids := f.seedCampaignLeads(t, now, "Asha", "Ben", "Chitra")

	require.NoError(t, f.sched.RunSweep(ctx, now))

	l1, err := f.store.GetScheduledCall(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusCompleted, l1.Status)
	assert.Equal(t, clock.Format(now), l1.CalledAt)

	l2, err := f.store.GetScheduledCall(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusPending, l2.Status)
	assert.Equal(t, clock.Format(now), l2.ScheduledTime, "promoted lead is stamped with the sweep minute")

	l3, err := f.store.GetScheduledCall(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusWaiting, l3.Status)

	campaign, err := f.store.GetCampaign(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, store.CampaignStatusInProgress, campaign.Status)

	assert.Equal(t, []string{"+91987654320"}, f.dialer.dialed, "only the due lead is dialed")
	assert.GreaterOrEqual(t, len(f.notifier.events), 2, "stats published after resolution and after promotion")
	for _, event := range f.notifier.events {
		assert.Equal(t, "campaign-stats", event)
	}
}

func TestRunSweepDrainsCampaignOneLeadPerSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	campaignID, _ := f.seedCampaignLeads(t, now, "Asha", "Ben", "Chitra")

	for sweep := 1; sweep <= 3; sweep++ {
		require.NoError(t, f.sched.RunSweep(ctx, now))

		pending, err := f.store.CampaignPendingCount(ctx, campaignID)
		require.NoError(t, err)
		assert.LessOrEqual(t, pending, 1, "never more than one dispatchable lead per campaign")
	}

	assert.Equal(t, 3, len(f.dialer.dialed))

	campaign, err := f.store.GetCampaign(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, store.CampaignStatusCompleted, campaign.Status)

	counts, err := f.store.StatusCounts(ctx, store.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Completed)
	assert.Equal(t, 0, counts.Pending)
	assert.Equal(t, 0, counts.Waiting)
}

func TestRunSweepFailedDispatch(t *testing.T) {
	f := newFixture(t)
	f.dialer.PlaceCallFunc = func(ctx context.Context, agentID int64, phone string) (string, error) {
		if phone == "+91987654320" {
			return "", errors.New("twilio: number unreachable")
		}
		return "CA0001", nil
	}
	ctx := context.Background()
	now := time.Now()

	campaignID, ids := f.seedCampaignLeads(t, now, "Asha", "Ben")

	require.NoError(t, f.sched.RunSweep(ctx, now))

	l1, err := f.store.GetScheduledCall(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusFailed, l1.Status)
	assert.Contains(t, l1.Outcome, "dispatch failed")

	// A failed lead still resolves the campaign slot, so the next one moves up.
	l2, err := f.store.GetScheduledCall(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusPending, l2.Status)

	campaign, err := f.store.GetCampaign(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, store.CampaignStatusInProgress, campaign.Status)

	t.Run("Failed calls are never retried", func(t *testing.T) {
		require.NoError(t, f.sched.RunSweep(ctx, now))

		l1, err := f.store.GetScheduledCall(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, store.CallStatusFailed, l1.Status)

		var dialedFirstAgain int
		for _, phone := range f.dialer.dialed {
			if phone == "+91987654320" {
				dialedFirstAgain++
			}
		}
		assert.Equal(t, 1, dialedFirstAgain)
	})
}

func TestRunSweepStandaloneCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	id, err := f.store.InsertScheduledCall(ctx, store.ScheduledCall{
		CustomerName:  "Dev",
		PhoneNumber:   "+919812345678",
		ScheduledTime: clock.Format(now),
		Status:        store.CallStatusPending,
		AgentID:       &f.agentID,
	})
	require.NoError(t, err)

	require.NoError(t, f.sched.RunSweep(ctx, now))

	call, err := f.store.GetScheduledCall(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusCompleted, call.Status)
	assert.NotEmpty(t, f.notifier.events)
}

func TestRunSweepCallWithoutAgentFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	id, err := f.store.InsertScheduledCall(ctx, store.ScheduledCall{
		CustomerName:  "Dev",
		PhoneNumber:   "+919812345678",
		ScheduledTime: clock.Format(now),
		Status:        store.CallStatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, f.sched.RunSweep(ctx, now))

	call, err := f.store.GetScheduledCall(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusFailed, call.Status)
	assert.Empty(t, f.dialer.dialed)
}

func TestRunSweepSkipsPromotionWhilePendingRemains(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	campaignID, _ := f.seedCampaignLeads(t, now, "Asha", "Ben")

	// A second pending lead in the same campaign, scheduled for later.
	later := now.Add(10 * time.Minute)
	extraID, err := f.store.InsertScheduledCall(ctx, store.ScheduledCall{
		CustomerName:  "Extra",
		PhoneNumber:   "+919811111111",
		ScheduledTime: clock.Format(later),
		Status:        store.CallStatusPending,
		AgentID:       &f.agentID,
		CampaignID:    &campaignID,
	})
	require.NoError(t, err)

	require.NoError(t, f.sched.RunSweep(ctx, now))

	// Ben stays waiting because the extra lead is still pending.
	waiting, err := f.store.NextWaitingCall(ctx, campaignID)
	require.NoError(t, err)
	require.NotNil(t, waiting)
	assert.Equal(t, "Ben", waiting.CustomerName)

	extra, err := f.store.GetScheduledCall(ctx, extraID)
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusPending, extra.Status)
}

func TestRunSweepDispatchesInInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	for _, phone := range []string{"+919800000001", "+919800000002", "+919800000003"} {
		_, err := f.store.InsertScheduledCall(ctx, store.ScheduledCall{
			CustomerName:  "Lead",
			PhoneNumber:   phone,
			ScheduledTime: clock.Format(now.Add(-time.Minute)),
			Status:        store.CallStatusPending,
			AgentID:       &f.agentID,
		})
		require.NoError(t, err)
	}

	require.NoError(t, f.sched.RunSweep(ctx, now))

	assert.Equal(t, []string{"+919800000001", "+919800000002", "+919800000003"}, f.dialer.dialed)
}

func TestRunSweepFutureCallsLeftAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	id, err := f.store.InsertScheduledCall(ctx, store.ScheduledCall{
		CustomerName:  "Dev",
		PhoneNumber:   "+919812345678",
		ScheduledTime: clock.Format(now.Add(2 * time.Minute)),
		Status:        store.CallStatusPending,
		AgentID:       &f.agentID,
	})
	require.NoError(t, err)

	require.NoError(t, f.sched.RunSweep(ctx, now))

	call, err := f.store.GetScheduledCall(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.CallStatusPending, call.Status)
	assert.Empty(t, f.dialer.dialed)
	assert.Empty(t, f.notifier.events)
}

func TestRunSweepStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	err := f.sched.RunSweep(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Empty(t, f.dialer.dialed)
}
