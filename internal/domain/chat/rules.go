// Package chat implements the rule-based chat assistant: an ordered list of
// keyword rules, a transcript, and a session that paces replies on the frame
// loop the way the widget does.
package chat

import "strings"

// DefaultBrand is interpolated into templates when no brand is configured.
const DefaultBrand = "H2H Marketing"

const brandPlaceholder = "{{brand}}"

// Intent tags a rule.
type Intent string

const (
	IntentService   Intent = "service"
	IntentPricing   Intent = "pricing"
	IntentContact   Intent = "contact"
	IntentPortfolio Intent = "portfolio"
	IntentGreeting  Intent = "greeting"
	IntentThanks    Intent = "thanks"
	IntentHelp      Intent = "help"
	IntentTimeline  Intent = "timeline"
	IntentFallback  Intent = "fallback"
	IntentWelcome   Intent = "welcome"
)

// Rule matches when any Term is a substring of the lowercased message, or
// the lowercased message equals one of Exact.
type Rule struct {
	Intent   Intent
	Terms    []string
	Exact    []string
	Response string
}

func (r Rule) matches(lower string) bool {
	for _, e := range r.Exact {
		if lower == e {
			return true
		}
	}
	for _, t := range r.Terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Reply is the responder output.
type Reply struct {
	Intent Intent `json:"intent"`
	Text   string `json:"response"`
}

const (
	welcomeTemplate = "Hi there! 👋 Welcome to {{brand}}. I'm here to help you learn more about our services, answer questions, or connect you with our team. What can I help you with today?"

	serviceTemplate = "We offer a comprehensive range of marketing services:\n\n• Brand Strategy & Identity\n• Content Marketing & Storytelling\n• Social Media Management\n• SEO & Digital Advertising\n• Analytics & Data Insights\n• Creative Design\n• Customer Experience Design\n\nWould you like to know more about any specific service?"

	pricingTemplate = "Our pricing is tailored to each client's unique needs and goals. We offer flexible packages and custom solutions.\n\nTypically, our projects range from:\n• Small projects: $5,000 - $15,000\n• Medium campaigns: $15,000 - $50,000\n• Enterprise solutions: $50,000+\n\nWould you like to schedule a consultation to discuss your specific needs?"

	contactTemplate = "I'd be happy to connect you with our team!\n\n📧 Email: hello@agency.com\n📞 Phone: +1 (234) 567-890\n📍 Location: Remote & Global\n\nYou can also fill out our contact form on the website, and we typically respond within 24 hours. Would you like me to help you with anything else?"

	portfolioTemplate = "We've worked with amazing brands across various industries! Check out our portfolio section on the website to see our featured projects including:\n\n• Lumina Tech - Revolutionary SaaS platform\n• Urban Pulse - Viral campaign with 5M+ engagement\n• Zen Wellness - Holistic brand identity\n\nAnd many more! Would you like to discuss how we can help with your project?"

	greetingTemplate = "Hello! 😊 Great to hear from you. I'm here to help you discover how {{brand}} can transform your brand. What would you like to know about?"

	thanksTemplate = "You're very welcome! 🙌 Is there anything else I can help you with today?"

	helpTemplate = "I can help you with:\n\n💼 Our Services & Solutions\n💰 Pricing & Packages\n📱 Contact Information\n🎨 Portfolio & Case Studies\n⏱️ Process & Timeline\n🤝 Getting Started\n\nJust ask me anything, or type keywords like \"services\", \"pricing\", \"contact\", etc."

	timelineTemplate = "Project timelines vary based on scope:\n\n• Brand Identity: 4-6 weeks\n• Website Design: 6-10 weeks\n• Marketing Campaign: 8-12 weeks\n• Ongoing Services: Monthly retainers\n\nWe work efficiently while ensuring quality. Want to discuss your timeline needs?"

	fallbackTemplate = "That's a great question! While I'm here to provide quick answers, our team can give you detailed insights.\n\nHere's what I can help with right now:\n• Information about our services\n• Pricing guidance\n• Portfolio examples\n• Contact details\n\nOr feel free to ask me something else, and I'll do my best to help! 💜"
)

// DefaultRules is the evaluation order. Earlier rules win, so a message
// mentioning both services and prices is a service question.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: IntentService, Terms: []string{"service", "what do you do"}, Response: serviceTemplate},
		{Intent: IntentPricing, Terms: []string{"price", "cost", "budget"}, Response: pricingTemplate},
		{Intent: IntentContact, Terms: []string{"contact", "email", "phone"}, Response: contactTemplate},
		{Intent: IntentPortfolio, Terms: []string{"portfolio", "work", "project"}, Response: portfolioTemplate},
		{Intent: IntentGreeting, Terms: []string{"hello", "hi", "hey"}, Response: greetingTemplate},
		{Intent: IntentThanks, Terms: []string{"thank", "thanks"}, Response: thanksTemplate},
		{Intent: IntentHelp, Terms: []string{"help"}, Exact: []string{"?"}, Response: helpTemplate},
		{Intent: IntentTimeline, Terms: []string{"time", "how long", "duration"}, Response: timelineTemplate},
	}
}

// Responder selects a canned reply. It is immutable after construction.
type Responder struct {
	brand    string
	rules    []Rule
	fallback string
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithRules replaces the rule list.
func WithRules(rules []Rule) ResponderOption {
	return func(r *Responder) {
		r.rules = append([]Rule(nil), rules...)
	}
}

// WithFallback replaces the fallback template.
func WithFallback(text string) ResponderOption {
	return func(r *Responder) {
		r.fallback = text
	}
}

// NewResponder creates a responder for brand. An empty brand uses DefaultBrand.
func NewResponder(brand string, opts ...ResponderOption) *Responder {
	if strings.TrimSpace(brand) == "" {
		brand = DefaultBrand
	}
	r := &Responder{brand: brand, rules: DefaultRules(), fallback: fallbackTemplate}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Brand returns the interpolated brand name.
func (r *Responder) Brand() string { return r.brand }

// Rules returns a copy of the evaluation order.
func (r *Responder) Rules() []Rule { return append([]Rule(nil), r.rules...) }

// Respond returns the first matching rule's reply, or the fallback.
func (r *Responder) Respond(msg string) Reply {
	lower := strings.ToLower(msg)
	for _, rule := range r.rules {
		if rule.matches(lower) {
			return Reply{Intent: rule.Intent, Text: r.render(rule.Response)}
		}
	}
	return Reply{Intent: IntentFallback, Text: r.render(r.fallback)}
}

// Welcome is the greeting sent when a session opens.
func (r *Responder) Welcome() Reply {
	return Reply{Intent: IntentWelcome, Text: r.render(welcomeTemplate)}
}

func (r *Responder) render(tmpl string) string {
	return strings.ReplaceAll(tmpl, brandPlaceholder, r.brand)
}
