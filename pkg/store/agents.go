package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveAgent creates an agent and returns its id.
func (s *Store) SaveAgent(ctx context.Context, a Agent) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (knowledge_base_id, name, company_name, purpose, script, type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.KnowledgeBaseID, a.Name, a.CompanyName, a.Purpose, a.Script, a.Type)
	if err != nil {
		return 0, fmt.Errorf("failed to save agent: %w", err)
	}
	return res.LastInsertId()
}

// GetAgent loads an agent by id.
func (s *Store) GetAgent(ctx context.Context, id int64) (*Agent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, knowledge_base_id, name, company_name, purpose, script, type, created_at
		 FROM agents WHERE id = ?`, id)
	a, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return a, nil
}

// ListAgents returns all agents, newest first.
func (s *Store) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, knowledge_base_id, name, company_name, purpose, script, type, created_at
		 FROM agents ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// DeleteAgent removes an agent by id.
func (s *Store) DeleteAgent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
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

func scanAgent(row rowScanner) (*Agent, error) {
	var a Agent
	var name, companyName, purpose, agentType, createdAt sql.NullString
	if err := row.Scan(&a.ID, &a.KnowledgeBaseID, &name, &companyName, &purpose, &a.Script, &agentType, &createdAt); err != nil {
		return nil, err
	}
	a.Name = name.String
	a.CompanyName = companyName.String
	a.Purpose = purpose.String
	a.Type = agentType.String
	a.CreatedAt = createdAt.String
	return &a, nil
}
