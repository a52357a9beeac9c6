package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/grsix/outreach/pkg/clock"
	"github.com/grsix/outreach/pkg/store"
	"github.com/grsix/outreach/pkg/testdata"
)

// Seeds the local database with fake agents, knowledge bases, a campaign and
// a handful of email leads so the dashboard has something to show.
func main() {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./outreach.db"
	}

	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	log.Println("🌱 Seeding database with sample outreach data...")

	for i := 0; i < 3; i++ {
		company := testdata.CompanyName()

		kbID, err := st.SaveKnowledgeBase(ctx, store.KnowledgeBase{
			Name:       company,
			SourceType: "manual",
			Content:    testdata.KnowledgeBaseContent(company),
		})
		if err != nil {
			log.Fatalf("Failed to seed knowledge base: %v", err)
		}

		agentID, err := st.SaveAgent(ctx, testdata.Agent(kbID, company))
		if err != nil {
			log.Fatalf("Failed to seed agent: %v", err)
		}
		log.Printf("✅ Seeded %s (knowledge base %d, agent %d)", company, kbID, agentID)

		// One campaign with queued leads for the first agent.
		if i == 0 {
			startAt := clock.Format(time.Now().Add(10 * time.Minute))
			campaignID, err := st.InsertCampaign(ctx, store.Campaign{
				Name:          "Campaign_" + startAt,
				AgentID:       agentID,
				Status:        store.CampaignStatusPending,
				ScheduledTime: startAt,
			})
			if err != nil {
				log.Fatalf("Failed to seed campaign: %v", err)
			}

			leads := testdata.Leads(testdata.GeneratorConfig{Leads: 5})
			for j, lead := range leads {
				lead.AgentID = &agentID
				lead.CampaignID = &campaignID
				if j == 0 {
					lead.Status = store.CallStatusPending
					lead.ScheduledTime = startAt
				}
				if _, err := st.InsertScheduledCall(ctx, lead); err != nil {
					log.Fatalf("Failed to seed lead: %v", err)
				}
			}
			log.Printf("✅ Seeded campaign %d with %d leads starting %s", campaignID, len(leads), startAt)
		}
	}

	for i := 0; i < 5; i++ {
		lead := testdata.EmailLead()
		lead.Time = time.Now().UTC().Format(time.RFC3339)
		if _, err := st.SaveEmailLead(ctx, lead); err != nil {
			log.Fatalf("Failed to seed email lead: %v", err)
		}
	}
	log.Println("✅ Seeded 5 email leads")

	log.Println("🎉 Seeding complete")
}
