package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveKnowledgeBase creates a knowledge base and returns its id.
func (s *Store) SaveKnowledgeBase(ctx context.Context, kb KnowledgeBase) (int64, error) {
	sourceType := kb.SourceType
	if sourceType == "" {
		sourceType = "manual"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_bases (name, source_type, content) VALUES (?, ?, ?)`,
		kb.Name, sourceType, kb.Content)
	if err != nil {
		return 0, fmt.Errorf("failed to save knowledge base: %w", err)
	}
	return res.LastInsertId()
}

// GetKnowledgeBase loads a knowledge base by id.
func (s *Store) GetKnowledgeBase(ctx context.Context, id int64) (*KnowledgeBase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source_type, content, created_at FROM knowledge_bases WHERE id = ?`, id)
	return scanKnowledgeBaseRow(row)
}

// GetKnowledgeBaseByName loads a knowledge base by its company name.
func (s *Store) GetKnowledgeBaseByName(ctx context.Context, name string) (*KnowledgeBase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source_type, content, created_at FROM knowledge_bases WHERE name = ?`, name)
	return scanKnowledgeBaseRow(row)
}

// ListKnowledgeBases returns all knowledge bases, newest first.
func (s *Store) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source_type, content, created_at FROM knowledge_bases ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
	}
	defer rows.Close()

	var kbs []KnowledgeBase
	for rows.Next() {
		var kb KnowledgeBase
		var createdAt sql.NullString
		if err := rows.Scan(&kb.ID, &kb.Name, &kb.SourceType, &kb.Content, &createdAt); err != nil {
			return nil, err
		}
		kb.CreatedAt = createdAt.String
		kbs = append(kbs, kb)
	}
	return kbs, rows.Err()
}

// UpdateKnowledgeBaseContent replaces a knowledge base's content by name.
func (s *Store) UpdateKnowledgeBaseContent(ctx context.Context, name, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE knowledge_bases SET content = ? WHERE name = ?`, content, name)
	if err != nil {
		return fmt.Errorf("failed to update knowledge base: %w", err)
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

func scanKnowledgeBaseRow(row rowScanner) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	var createdAt sql.NullString
	err := row.Scan(&kb.ID, &kb.Name, &kb.SourceType, &kb.Content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge base: %w", err)
	}
	kb.CreatedAt = createdAt.String
	return &kb, nil
}
