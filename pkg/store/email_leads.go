package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveEmailLead stores a generated cold-email record and returns its id.
func (s *Store) SaveEmailLead(ctx context.Context, lead EmailLead) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO email_leads (email, subject, preview, content, category, follow_up_status, time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lead.Email, lead.Subject, lead.Preview, lead.Content, lead.Category, lead.FollowUpStatus, lead.Time)
	if err != nil {
		return 0, fmt.Errorf("failed to save email lead: %w", err)
	}
	return res.LastInsertId()
}

// ListEmailLeads returns all saved email leads, newest first.
func (s *Store) ListEmailLeads(ctx context.Context) ([]EmailLead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, subject, preview, content, category, follow_up_status, time
		 FROM email_leads ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list email leads: %w", err)
	}
	defer rows.Close()

	var leads []EmailLead
	for rows.Next() {
		var l EmailLead
		var email, subject, preview, content, category, status, t sql.NullString
		if err := rows.Scan(&l.ID, &email, &subject, &preview, &content, &category, &status, &t); err != nil {
			return nil, err
		}
		l.Email = email.String
		l.Subject = subject.String
		l.Preview = preview.String
		l.Content = content.String
		l.Category = category.String
		l.FollowUpStatus = status.String
		l.Time = t.String
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// DeleteEmailLead removes an email lead by id.
func (s *Store) DeleteEmailLead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email lead: %w", err)
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
