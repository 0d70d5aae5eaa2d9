// Package config defines service configuration structures and loading hooks.
//
// Defaults come from New; Load layers an optional YAML file and SITE_*
// environment variables on top.
package config

// Store backends understood by the record store factory.
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
	BackendDisabled = "disabled"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BrandName is interpolated into chat templates.
	BrandName string `koanf:"brand_name"`

	// StoreBackend selects the record store: supabase, sqlite or disabled.
	StoreBackend string `koanf:"store_backend"`

	// SupabaseURL and SupabaseAnonKey address the hosted record store.
	// Missing values disable persistence-backed features.
	SupabaseURL     string `koanf:"supabase_url"`
	SupabaseAnonKey string `koanf:"supabase_anon_key"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// WriterCount and WriterQueueSize bound concurrent record store writes.
	WriterCount     int `koanf:"writer_count"`
	WriterQueueSize int `koanf:"writer_queue_size"`

	// DedupeSize bounds the contact idempotency-key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ChatMaxSessions caps open chat sessions; ChatSessionTTLSec expires idle ones.
	ChatMaxSessions   int `koanf:"chat_max_sessions"`
	ChatSessionTTLSec int `koanf:"chat_session_ttl_sec"`

	// ChatTypingMinMS and ChatTypingMaxMS bound the simulated typing delay.
	ChatTypingMinMS int `koanf:"chat_typing_min_ms"`
	ChatTypingMaxMS int `koanf:"chat_typing_max_ms"`

	// FrameIntervalMS is the frame loop tick interval.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	// StatusDismissMS is how long a submit outcome stays visible.
	StatusDismissMS int `koanf:"status_dismiss_ms"`

	// RequestTimeoutMS bounds a single record store call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		BrandName:         "H2H Marketing",
		StoreBackend:      BackendSupabase,
		SQLitePath:        "data/site.db",
		WriterCount:       4,
		WriterQueueSize:   256,
		DedupeSize:        10_000,
		ChatMaxSessions:   10_000,
		ChatSessionTTLSec: 1800,
		ChatTypingMinMS:   1000,
		ChatTypingMaxMS:   2000,
		FrameIntervalMS:   16,
		StatusDismissMS:   5000,
		RequestTimeoutMS:  8000,
	}
}
