package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertCampaign creates a campaign and returns its id.
func (s *Store) InsertCampaign(ctx context.Context, c Campaign) (int64, error) {
	status := c.Status
	if status == "" {
		status = CampaignStatusPending
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (name, agent_id, status, scheduled_time) VALUES (?, ?, ?, ?)`,
		c.Name, c.AgentID, status, nullString(c.ScheduledTime))
	if err != nil {
		return 0, fmt.Errorf("failed to insert campaign: %w", err)
	}
	return res.LastInsertId()
}

// GetCampaign loads a campaign by id.
func (s *Store) GetCampaign(ctx context.Context, id int64) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, agent_id, status, scheduled_time, created_at FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns returns all campaigns, newest schedule first.
func (s *Store) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, agent_id, status, scheduled_time, created_at FROM campaigns ORDER BY scheduled_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// SetCampaignStatus persists a recomputed derived status.
func (s *Store) SetCampaignStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE campaigns SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set campaign status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCampaign(row rowScanner) (*Campaign, error) {
	var c Campaign
	var scheduledTime, createdAt sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.AgentID, &c.Status, &scheduledTime, &createdAt); err != nil {
		return nil, err
	}
	c.ScheduledTime = scheduledTime.String
	c.CreatedAt = createdAt.String
	return &c, nil
}
