package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	kbID, err := s.SaveKnowledgeBase(ctx, KnowledgeBase{Name: "acme", Content: "Acme sells widgets."})
	require.NoError(t, err)

	id, err := s.SaveAgent(ctx, Agent{
		KnowledgeBaseID: kbID,
		CompanyName:     "Acme",
		Purpose:         "book demos",
		Script:          "Hi {name}, this is Acme calling.",
		Type:            "scheduled",
	})
	require.NoError(t, err)

	agent, err := s.GetAgent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", agent.CompanyName)
	assert.Equal(t, kbID, agent.KnowledgeBaseID)

	agents, err := s.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 1)

	require.NoError(t, s.DeleteAgent(ctx, id))

	_, err = s.GetAgent(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteAgent(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCampaignStatusUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	campaignID := seedCampaign(t, s, 0)

	require.NoError(t, s.SetCampaignStatus(ctx, campaignID, CampaignStatusInProgress))

	c, err := s.GetCampaign(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, CampaignStatusInProgress, c.Status)

	assert.ErrorIs(t, s.SetCampaignStatus(ctx, 9999, CampaignStatusCompleted), ErrNotFound)
}

func TestKnowledgeBaseByNameAndUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.SaveKnowledgeBase(ctx, KnowledgeBase{Name: "acme", SourceType: "website", Content: "v1"})
	require.NoError(t, err)

	kb, err := s.GetKnowledgeBaseByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "website", kb.SourceType)
	assert.Equal(t, "v1", kb.Content)

	require.NoError(t, s.UpdateKnowledgeBaseContent(ctx, "acme", "v2"))

	kb, err = s.GetKnowledgeBaseByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "v2", kb.Content)

	_, err = s.GetKnowledgeBaseByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmailLeads(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.SaveEmailLead(ctx, EmailLead{
		Email:   "lead@example.com",
		Subject: "Boost ACME with Smart AI Follow-Ups",
		Content: "Hi Acme Team, ...",
	})
	require.NoError(t, err)

	leads, err := s.ListEmailLeads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "lead@example.com", leads[0].Email)

	require.NoError(t, s.DeleteEmailLead(ctx, id))
	assert.ErrorIs(t, s.DeleteEmailLead(ctx, id), ErrNotFound)
}
