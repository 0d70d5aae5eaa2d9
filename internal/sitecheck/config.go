package sitecheck

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Contacts   int           // Number of contact submissions to generate
	Replays    int           // Submissions resent with an already-used idempotency key
	Chats      int           // Number of chat sessions to open
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	ReplyWait  time.Duration // How long to wait for an assistant reply
	OutputFile string        // Optional YAML report path
	Verbose    bool          // Enable per-request logging
}

// Contact is one generated form submission.
type Contact struct {
	Key     string `json:"-" yaml:"key"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Budget  string `json:"budget,omitempty" yaml:"budget,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// ContactResponse is the body returned by POST /api/contact.
type ContactResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// ChatResult records one scripted conversation.
type ChatResult struct {
	SessionID string `yaml:"session_id"`
	Question  string `yaml:"question"`
	Intent    string `yaml:"intent"`
	Replied   bool   `yaml:"replied"`
}

// Stats holds run statistics.
type Stats struct {
	PagesChecked      int           `yaml:"pages_checked"`
	ContactsGenerated int           `yaml:"contacts_generated"`
	ContactsSubmitted int           `yaml:"contacts_submitted"`
	ContactsSent      int           `yaml:"contacts_sent"`
	ContactsDuplicate int           `yaml:"contacts_duplicate"`
	ContactsThrottled int           `yaml:"contacts_throttled"`
	ContactsFailed    int           `yaml:"contacts_failed"`
	ChatsOpened       int           `yaml:"chats_opened"`
	ChatReplies       int           `yaml:"chat_replies"`
	StartTime         time.Time     `yaml:"start_time"`
	EndTime           time.Time     `yaml:"end_time"`
	Duration          time.Duration `yaml:"duration"`
}
