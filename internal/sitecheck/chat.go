package sitecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/h2hmarketing/site/pkg/logger"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Intent  string `json:"intent"`
}

type chatSession struct {
	ID       string        `json:"id"`
	Typing   bool          `json:"typing"`
	Messages []chatMessage `json:"messages"`
}

// runChats opens cfg.Chats sessions concurrently and asks each one a
// scripted question, cycling through Questions.
func runChats(ctx context.Context, log logger.Logger, cfg *Config, stats *Stats) ([]ChatResult, error) {
	log.Info(ctx, "running chat sessions", logger.Int("count", cfg.Chats))

	client := newHTTPClient(cfg.Timeout)
	results := make([]ChatResult, cfg.Chats)
	errs := make([]error, cfg.Chats)

	sem := make(chan struct{}, max(cfg.Workers, 1))
	var wg sync.WaitGroup
	for i := range cfg.Chats {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = converse(ctx, client, cfg, Questions[i%len(Questions)])
		}()
	}
	wg.Wait()

	for i, r := range results {
		if errs[i] != nil {
			return results, fmt.Errorf("chat %d: %w", i, errs[i])
		}
		stats.ChatsOpened++
		if r.Replied {
			stats.ChatReplies++
		}
	}
	log.Info(ctx, "chat sessions completed",
		logger.Int("opened", stats.ChatsOpened),
		logger.Int("replies", stats.ChatReplies))
	return results, nil
}

// converse opens a session, waits for the welcome, asks q and waits for the
// assistant reply.
func converse(ctx context.Context, client *HTTPClient, cfg *Config, q Question) (ChatResult, error) {
	res := ChatResult{Question: q.Text}

	resp, err := client.Post(ctx, cfg.BaseURL+"/api/chat/sessions", nil, nil)
	if err != nil {
		return res, err
	}
	var s chatSession
	err = decodeStatus(resp, http.StatusCreated, &s)
	if err != nil {
		return res, err
	}
	res.SessionID = s.ID

	sessionURL := cfg.BaseURL + "/api/chat/sessions/" + s.ID
	if _, err := waitForMessages(ctx, client, sessionURL, 1, cfg.ReplyWait); err != nil {
		return res, fmt.Errorf("welcome: %w", err)
	}

	resp, err = client.Post(ctx, sessionURL+"/messages", map[string]string{"message": q.Text}, nil)
	if err != nil {
		return res, err
	}
	if err := decodeStatus(resp, http.StatusAccepted, nil); err != nil {
		return res, err
	}

	s, err = waitForMessages(ctx, client, sessionURL, 3, cfg.ReplyWait)
	if err != nil {
		// A missing reply is reported, not fatal.
		return res, nil
	}
	last := s.Messages[len(s.Messages)-1]
	res.Replied = last.Role == "assistant"
	res.Intent = last.Intent
	return res, nil
}

// waitForMessages polls url until the transcript holds n messages.
func waitForMessages(ctx context.Context, client *HTTPClient, url string, n int, wait time.Duration) (chatSession, error) {
	deadline := time.Now().Add(wait)
	var s chatSession
	for {
		if err := client.getJSON(ctx, url, &s); err != nil {
			return s, err
		}
		if len(s.Messages) >= n && !s.Typing {
			return s, nil
		}
		if time.Now().After(deadline) {
			return s, fmt.Errorf("timed out waiting for %d messages, have %d", n, len(s.Messages))
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// decodeStatus checks the status code and decodes the body into v when non-nil.
func decodeStatus(resp *http.Response, want int, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
