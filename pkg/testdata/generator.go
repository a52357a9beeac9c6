package testdata

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/grsix/outreach/pkg/store"
)

// GeneratorConfig controls fake outreach data generation.
type GeneratorConfig struct {
	Leads       int
	CountryCode string // dialing prefix without the plus, default 91
}

// Industry-flavored parts for fake company names.
var companyNameParts = struct {
	Prefixes []string
	Suffixes []string
}{
	Prefixes: []string{"Apex", "Nimbus", "Vertex", "Orbit", "Summit", "Crest", "Quantum", "Stellar", "Prime", "Northwind"},
	Suffixes: []string{"Labs", "Solutions", "Systems", "Dynamics", "Works", "Technologies", "Ventures", "Group"},
}

var agentPurposes = []string{
	"book a product demo",
	"qualify inbound leads",
	"follow up on trial signups",
	"reactivate dormant accounts",
	"invite to the annual webinar",
}

// CompanyName builds a plausible fake company name.
func CompanyName() string {
	prefix := companyNameParts.Prefixes[rand.Intn(len(companyNameParts.Prefixes))]
	suffix := companyNameParts.Suffixes[rand.Intn(len(companyNameParts.Suffixes))]
	return prefix + " " + suffix
}

// PhoneNumber builds a dialable E.164 number under the given country prefix.
func PhoneNumber(countryCode string) string {
	if countryCode == "" {
		countryCode = "91"
	}
	digits := make([]byte, 10)
	// Leading digit 6-9 keeps the number valid for IN mobile ranges.
	digits[0] = byte('6' + rand.Intn(4))
	for i := 1; i < len(digits); i++ {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return "+" + countryCode + string(digits)
}

// KnowledgeBaseContent writes a few paragraphs of fake company copy.
func KnowledgeBaseContent(companyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s helps teams %s with %s.\n\n", companyName,
		gofakeit.BuzzWord(), gofakeit.ProductName())
	fmt.Fprintf(&b, "Key offerings: %s, %s and %s.\n\n",
		gofakeit.ProductName(), gofakeit.ProductName(), gofakeit.ProductName())
	fmt.Fprintf(&b, "%s %s", gofakeit.Sentence(12), gofakeit.Sentence(10))
	return b.String()
}

// Agent builds a fake call agent persona bound to a knowledge base.
func Agent(kbID int64, companyName string) store.Agent {
	purpose := agentPurposes[rand.Intn(len(agentPurposes))]
	return store.Agent{
		KnowledgeBaseID: kbID,
		Name:            gofakeit.FirstName(),
		CompanyName:     companyName,
		Purpose:         purpose,
		Script: fmt.Sprintf("Hi {name}, this is a quick call from %s. We help companies %s. "+
			"Would you have two minutes?", companyName, purpose),
		Type: "scheduled",
	}
}

// Leads builds fake campaign leads with dialable numbers.
func Leads(cfg GeneratorConfig) []store.ScheduledCall {
	leads := make([]store.ScheduledCall, cfg.Leads)
	for i := range leads {
		leads[i] = store.ScheduledCall{
			CustomerName: gofakeit.Name(),
			PhoneNumber:  PhoneNumber(cfg.CountryCode),
			Status:       store.CallStatusWaiting,
		}
	}
	return leads
}

// EmailLead builds a fake recorded cold-email lead.
func EmailLead() store.EmailLead {
	company := CompanyName()
	return store.EmailLead{
		Email:          gofakeit.Email(),
		Subject:        fmt.Sprintf("Boost %s with Smart AI Follow-Ups", strings.ToUpper(strings.Fields(company)[0])),
		Preview:        gofakeit.Sentence(8),
		Content:        gofakeit.Paragraph(2, 3, 12, "\n\n"),
		Category:       "MEDIUM",
		FollowUpStatus: "pending",
	}
}
