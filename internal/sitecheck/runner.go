package sitecheck

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/h2hmarketing/site/pkg/logger"
	"gopkg.in/yaml.v3"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Report is the YAML document written to Config.OutputFile.
type Report struct {
	BaseURL  string       `yaml:"base_url"`
	Stats    Stats        `yaml:"stats"`
	Chats    []ChatResult `yaml:"chats"`
	Contacts []Contact    `yaml:"contacts"`
}

// Run executes the complete smoke test against cfg.BaseURL.
func Run(ctx context.Context, log logger.Logger, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if cfg.ReplyWait <= 0 {
		cfg.ReplyWait = DefaultReplyWait
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	log.Info(ctx, "starting site smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("contacts", cfg.Contacts),
		logger.Int("replays", cfg.Replays),
		logger.Int("chats", cfg.Chats),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, log, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Page shell on every route
	if err := checkPages(ctx, log, cfg, stats); err != nil {
		return stats, err
	}

	// Step 3: Generate and submit contacts, replaying some keys
	contacts, err := generateContacts(ctx, log, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("contact generation failed: %w", err)
	}
	submitContacts(ctx, log, cfg, withReplays(contacts, cfg.Replays), stats)

	// Step 4: Scripted chats
	chats, err := runChats(ctx, log, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("chat run failed: %w", err)
	}

	// Step 5: Verify
	if err := verifyResults(ctx, log, cfg, chats, stats); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if cfg.OutputFile != "" {
		report := Report{BaseURL: cfg.BaseURL, Stats: *stats, Chats: chats, Contacts: contacts}
		if err := saveReport(ctx, log, cfg.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, log logger.Logger, cfg *Config) error {
	log.Info(ctx, "checking service health")

	resp, err := newHTTPClient(cfg.Timeout).Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	// Any 200 is healthy; the body is Prometheus text.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// saveReport writes report as YAML, creating parent directories.
func saveReport(ctx context.Context, log logger.Logger, filename string, report Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Info(ctx, "report saved", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var sentRate, perSecond float64
	if stats.ContactsSubmitted > 0 {
		sentRate = float64(stats.ContactsSent) / float64(stats.ContactsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.ContactsSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("pagesChecked", stats.PagesChecked),
		logger.Int("contactsGenerated", stats.ContactsGenerated),
		logger.Int("contactsSubmitted", stats.ContactsSubmitted),
		logger.Int("contactsSent", stats.ContactsSent),
		logger.Int("contactsDuplicate", stats.ContactsDuplicate),
		logger.Int("contactsThrottled", stats.ContactsThrottled),
		logger.Int("chatsOpened", stats.ChatsOpened),
		logger.Int("chatReplies", stats.ChatReplies),
		logger.Duration("duration", stats.Duration),
		logger.Float64("sentRate", sentRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
