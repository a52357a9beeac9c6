package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// InsertScheduledCall saves a new call task and returns its id. ScheduledTime
// must already be a canonical minute string (or empty for waiting leads).
func (s *Store) InsertScheduledCall(ctx context.Context, call ScheduledCall) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_calls (customer_name, phone_number, scheduled_time, script, status, agent_id, campaign_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		call.CustomerName, call.PhoneNumber, nullString(call.ScheduledTime), call.Script,
		call.Status, call.AgentID, call.CampaignID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scheduled call: %w", err)
	}
	return res.LastInsertId()
}

// GetScheduledCall loads a single call by id.
func (s *Store) GetScheduledCall(ctx context.Context, id int64) (*ScheduledCall, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, customer_name, phone_number, scheduled_time, script, status, agent_id, campaign_id, called_at, duration, outcome
		 FROM scheduled_calls WHERE id = ?`, id)
	call, err := scanCall(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled call: %w", err)
	}
	return call, nil
}

// GetDueCalls returns all pending calls whose scheduled time has passed
// relative to nowFloor (a canonical minute string).
func (s *Store) GetDueCalls(ctx context.Context, nowFloor string) ([]ScheduledCall, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_name, phone_number, scheduled_time, script, status, agent_id, campaign_id, called_at, duration, outcome
		 FROM scheduled_calls
		 WHERE status = ? AND scheduled_time IS NOT NULL AND scheduled_time <= ?
		 ORDER BY id ASC`,
		CallStatusPending, nowFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to query due calls: %w", err)
	}
	defer rows.Close()
	return collectCalls(rows)
}

// MarkCallCompleted marks a dispatched call completed. Completed reflects
// that the call request was accepted by the telephony layer, not that the
// conversation succeeded.
func (s *Store) MarkCallCompleted(ctx context.Context, id int64, calledAt, outcome string) error {
	return s.resolveCall(ctx, id, CallStatusCompleted, calledAt, outcome)
}

// MarkCallFailed marks a call whose dispatch was rejected. Failed calls are
// terminal and are not retried on later sweeps.
func (s *Store) MarkCallFailed(ctx context.Context, id int64, calledAt, outcome string) error {
	return s.resolveCall(ctx, id, CallStatusFailed, calledAt, outcome)
}

func (s *Store) resolveCall(ctx context.Context, id int64, status, calledAt, outcome string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_calls SET status = ?, called_at = ?, outcome = ?
		 WHERE id = ? AND status = ?`,
		status, calledAt, outcome, id, CallStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark call %s: %w", status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("call %d is not pending: %w", id, ErrNotFound)
	}
	return nil
}

// NextWaitingCall returns the earliest enqueued waiting lead of a campaign,
// or nil when none remain. Lowest id wins so promotion order is FIFO by
// insertion.
func (s *Store) NextWaitingCall(ctx context.Context, campaignID int64) (*ScheduledCall, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, customer_name, phone_number, scheduled_time, script, status, agent_id, campaign_id, called_at, duration, outcome
		 FROM scheduled_calls
		 WHERE status = ? AND campaign_id = ?
		 ORDER BY id ASC LIMIT 1`,
		CallStatusWaiting, campaignID)
	call, err := scanCall(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next waiting call: %w", err)
	}
	return call, nil
}

// PromoteToPending moves a waiting lead into the pending queue with a fresh
// dispatch time.
func (s *Store) PromoteToPending(ctx context.Context, id int64, newTime string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_calls SET status = ?, scheduled_time = ?
		 WHERE id = ? AND status = ?`,
		CallStatusPending, newTime, id, CallStatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to promote call %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("call %d is not waiting: %w", id, ErrNotFound)
	}
	return nil
}

// CampaignOpenCount counts a campaign's calls still in the pipeline
// (pending or waiting). Zero means the campaign is finished.
func (s *Store) CampaignOpenCount(ctx context.Context, campaignID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scheduled_calls WHERE campaign_id = ? AND status IN (?, ?)`,
		campaignID, CallStatusPending, CallStatusWaiting).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count open calls: %w", err)
	}
	return count, nil
}

// CampaignPendingCount counts a campaign's calls currently pending.
func (s *Store) CampaignPendingCount(ctx context.Context, campaignID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scheduled_calls WHERE campaign_id = ? AND status = ?`,
		campaignID, CallStatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending calls: %w", err)
	}
	return count, nil
}

// StatusCounts aggregates call counts per status under the given filter.
func (s *Store) StatusCounts(ctx context.Context, filter StatsFilter) (StatusCounts, error) {
	where, args := filterClause(filter)

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM scheduled_calls `+where+` GROUP BY status`, args...)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("failed to aggregate status counts: %w", err)
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		switch status {
		case CallStatusPending:
			counts.Pending = n
		case CallStatusWaiting:
			counts.Waiting = n
		case CallStatusCompleted:
			counts.Completed = n
		case CallStatusFailed:
			counts.Failed = n
		}
		counts.Total += n
	}
	return counts, rows.Err()
}

// CallTrend buckets resolved calls by hour or day of called_at.
func (s *Store) CallTrend(ctx context.Context, filter StatsFilter, interval string) ([]TrendPoint, error) {
	bucket := `strftime('%Y-%m-%d %H', called_at)`
	if interval == "daily" {
		bucket = `strftime('%Y-%m-%d', called_at)`
	}

	where, args := filterClause(filter)
	if where == "" {
		where = "WHERE called_at IS NOT NULL"
	} else {
		where += " AND called_at IS NOT NULL"
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bucket+` AS bucket, COUNT(*) FROM scheduled_calls `+where+`
		 GROUP BY bucket ORDER BY bucket ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query call trend: %w", err)
	}
	defer rows.Close()

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Bucket, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Leaderboard ranks agents by completed calls or total duration.
func (s *Store) Leaderboard(ctx context.Context, filter StatsFilter, orderBy string) ([]LeaderboardRow, error) {
	order := "completed_calls DESC"
	if orderBy == "duration" {
		order = "total_duration DESC"
	}

	where, args := filterClause(filter)

	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_id, COUNT(*) AS total_calls,
		        SUM(status = 'completed') AS completed_calls,
		        COALESCE(SUM(duration), 0) AS total_duration
		 FROM scheduled_calls `+where+`
		 GROUP BY agent_id ORDER BY `+order+` LIMIT 10`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		var agentID sql.NullInt64
		if err := rows.Scan(&agentID, &r.TotalCalls, &r.CompletedCalls, &r.TotalDuration); err != nil {
			return nil, err
		}
		if agentID.Valid {
			r.AgentID = &agentID.Int64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentCalls lists the most recently resolved calls under the filter.
func (s *Store) RecentCalls(ctx context.Context, filter StatsFilter, limit int) ([]ScheduledCall, error) {
	if limit <= 0 {
		limit = 20
	}

	where, args := filterClause(filter)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_name, phone_number, scheduled_time, script, status, agent_id, campaign_id, called_at, duration, outcome
		 FROM scheduled_calls `+where+`
		 ORDER BY called_at DESC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent calls: %w", err)
	}
	defer rows.Close()
	return collectCalls(rows)
}

// ListScheduledCalls returns every call, newest schedule first.
func (s *Store) ListScheduledCalls(ctx context.Context) ([]ScheduledCall, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_name, phone_number, scheduled_time, script, status, agent_id, campaign_id, called_at, duration, outcome
		 FROM scheduled_calls ORDER BY scheduled_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled calls: %w", err)
	}
	defer rows.Close()
	return collectCalls(rows)
}

func filterClause(filter StatsFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.CampaignID != nil {
		conds = append(conds, "campaign_id = ?")
		args = append(args, *filter.CampaignID)
	}
	if filter.AgentID != nil {
		conds = append(conds, "agent_id = ?")
		args = append(args, *filter.AgentID)
	}
	if filter.From != "" {
		conds = append(conds, "called_at >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "called_at <= ?")
		args = append(args, filter.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (*ScheduledCall, error) {
	var call ScheduledCall
	var scheduledTime, script, calledAt, outcome sql.NullString
	var agentID, campaignID, duration sql.NullInt64

	err := row.Scan(&call.ID, &call.CustomerName, &call.PhoneNumber, &scheduledTime,
		&script, &call.Status, &agentID, &campaignID, &calledAt, &duration, &outcome)
	if err != nil {
		return nil, err
	}

	call.ScheduledTime = scheduledTime.String
	call.Script = script.String
	call.CalledAt = calledAt.String
	call.Outcome = outcome.String
	call.Duration = duration.Int64
	if agentID.Valid {
		call.AgentID = &agentID.Int64
	}
	if campaignID.Valid {
		call.CampaignID = &campaignID.Int64
	}
	return &call, nil
}

func collectCalls(rows *sql.Rows) ([]ScheduledCall, error) {
	var calls []ScheduledCall
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, *call)
	}
	return calls, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
