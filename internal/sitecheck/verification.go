package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/h2hmarketing/site/pkg/logger"
)

// Verification errors.
var (
	ErrPage         = errors.New("page check failed")
	ErrSubmissions  = errors.New("contact submissions inconsistent")
	ErrChat         = errors.New("chat check failed")
	ErrServerCounts = errors.New("server counters inconsistent")
)

// checkPages fetches every page route and expects the HTML shell.
func checkPages(ctx context.Context, log logger.Logger, cfg *Config, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)
	for _, page := range Pages {
		resp, err := client.Get(ctx, cfg.BaseURL+page)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrPage, page, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: %s: status %d", ErrPage, page, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			return fmt.Errorf("%w: %s: content type %q", ErrPage, page, ct)
		}
		stats.PagesChecked++
	}
	log.Info(ctx, "pages served", logger.Int("count", stats.PagesChecked))
	return nil
}

// verifyResults checks client-side counts against each other and against
// the server's /stats counters.
func verifyResults(ctx context.Context, log logger.Logger, cfg *Config, chats []ChatResult, stats *Stats) error {
	log.Info(ctx, "verifying results")

	if stats.ContactsFailed > 0 {
		return fmt.Errorf("%w: %d failed", ErrSubmissions, stats.ContactsFailed)
	}
	if got := stats.ContactsSent + stats.ContactsDuplicate + stats.ContactsThrottled; got != stats.ContactsSubmitted {
		return fmt.Errorf("%w: outcomes %d != submitted %d", ErrSubmissions, got, stats.ContactsSubmitted)
	}
	if stats.ContactsSent > stats.ContactsGenerated {
		return fmt.Errorf("%w: %d sent for %d unique keys", ErrSubmissions, stats.ContactsSent, stats.ContactsGenerated)
	}

	expected := make(map[string]string, len(Questions))
	for _, q := range Questions {
		expected[q.Text] = q.Intent
	}
	for _, c := range chats {
		if !c.Replied {
			return fmt.Errorf("%w: session %s never replied", ErrChat, c.SessionID)
		}
		if want := expected[c.Question]; c.Intent != want {
			return fmt.Errorf("%w: %q classified as %q, want %q", ErrChat, c.Question, c.Intent, want)
		}
	}

	var server map[string]any
	if err := newHTTPClient(cfg.Timeout).getJSON(ctx, cfg.BaseURL+"/stats", &server); err != nil {
		log.Warn(ctx, "server stats unavailable", logger.Error(err))
		return nil
	}
	// JSON numbers decode as float64.
	if written, ok := server["contactsWritten"].(float64); ok && int(written) < stats.ContactsSent {
		return fmt.Errorf("%w: server wrote %d, client saw %d sent", ErrServerCounts, int(written), stats.ContactsSent)
	}

	log.Info(ctx, "result verification completed")
	return nil
}
