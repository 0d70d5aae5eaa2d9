package sitecheck

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	"github.com/h2hmarketing/site/pkg/logger"
)

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances"}
	companies  = []string{"", "Northwind", "Globex", "Initech", "Umbrella Studio", "Acme Bakery"}
	services   = []string{"", "Brand Strategy", "Content Marketing", "Social Media", "SEO & Advertising"}
	budgets    = []string{"", "$5k - $15k", "$15k - $50k", "$50k+"}
	briefs     = []string{
		"We are relaunching our product line and need a fresh brand identity.",
		"Looking for help with a quarterly content calendar and blog strategy.",
		"Our paid search spend is climbing without results; can you audit it?",
		"We want to grow our social presence ahead of a store opening.",
	}
)

// Question is a scripted chat prompt with the intent it should classify as.
type Question struct {
	Text   string
	Intent string
}

// Questions covers every canned intent the assistant knows.
var Questions = []Question{
	{Text: "What services do you offer?", Intent: "service"},
	{Text: "How much would a rebrand cost?", Intent: "pricing"},
	{Text: "How do I reach you by email?", Intent: "contact"},
	{Text: "Can I see your portfolio?", Intent: "portfolio"},
	{Text: "Hello there", Intent: "greeting"},
	{Text: "Thanks a lot", Intent: "thanks"},
	{Text: "?", Intent: "help"},
	{Text: "How long does a launch take?", Intent: "timeline"},
	{Text: "zebra", Intent: "fallback"},
}

// pick returns a uniform index in [0, n) using crypto/rand.
func pick(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func choose(xs []string) string { return xs[pick(len(xs))] }

// generateContacts builds cfg.Contacts valid submissions, each with its own
// idempotency key.
func generateContacts(ctx context.Context, log logger.Logger, cfg *Config, stats *Stats) ([]Contact, error) {
	log.Info(ctx, "generating contact submissions", logger.Int("count", cfg.Contacts))

	contacts := make([]Contact, 0, cfg.Contacts)
	for i := range cfg.Contacts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		contacts = append(contacts, generateContact(i))
	}

	stats.ContactsGenerated = len(contacts)
	return contacts, nil
}

// generateContact creates one submission that passes form validation.
func generateContact(index int) Contact {
	name := choose(firstNames)
	return Contact{
		Key:     uuid.NewString(),
		Name:    name,
		Email:   fmt.Sprintf("%s.%s@example.com", name, strconv.Itoa(index)),
		Company: choose(companies),
		Service: choose(services),
		Budget:  choose(budgets),
		Message: choose(briefs),
	}
}

// withReplays appends n resubmissions reusing keys from the head of contacts.
func withReplays(contacts []Contact, n int) []Contact {
	if len(contacts) == 0 {
		return contacts
	}
	out := append([]Contact(nil), contacts...)
	for i := range n {
		out = append(out, contacts[i%len(contacts)])
	}
	return out
}
