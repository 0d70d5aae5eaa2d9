package sitecheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/h2hmarketing/site/pkg/logger"
)

// HTTPClient wraps http.Client with a per-request timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body. A nil body sends nothing.
func (c *HTTPClient) Post(ctx context.Context, url string, body any, header map[string]string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}

// getJSON fetches url and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// submitContacts posts contacts concurrently through a worker pool.
func submitContacts(ctx context.Context, log logger.Logger, cfg *Config, contacts []Contact, stats *Stats) {
	log.Info(ctx, "submitting contacts", logger.Int("count", len(contacts)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/api/contact"

	var sent, duplicate, throttled, failed, submitted atomic.Int64

	work := make(chan Contact, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				if ctx.Err() != nil {
					return
				}
				outcome := submitSingleContact(ctx, client, url, c)
				submitted.Add(1)
				switch outcome {
				case outcomeSent:
					sent.Add(1)
				case outcomeDuplicate:
					duplicate.Add(1)
				case outcomeThrottled:
					throttled.Add(1)
				default:
					failed.Add(1)
				}
				if cfg.Verbose {
					log.Debug(ctx, "contact submitted", logger.String("key", c.Key), logger.String("outcome", outcome))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, c := range contacts {
			select {
			case <-ctx.Done():
				return
			case work <- c:
			}
		}
	}()
	wg.Wait()

	stats.ContactsSubmitted = int(submitted.Load())
	stats.ContactsSent = int(sent.Load())
	stats.ContactsDuplicate = int(duplicate.Load())
	stats.ContactsThrottled = int(throttled.Load())
	stats.ContactsFailed = int(failed.Load())

	log.Info(ctx, "contact submission completed",
		logger.Int("sent", stats.ContactsSent),
		logger.Int("duplicate", stats.ContactsDuplicate),
		logger.Int("throttled", stats.ContactsThrottled),
		logger.Int("failed", stats.ContactsFailed))
}

// submitSingleContact posts one contact and classifies the response.
// A 409 means the same key is still being written, which counts as a duplicate.
func submitSingleContact(ctx context.Context, client *HTTPClient, url string, c Contact) string {
	resp, err := client.Post(ctx, url, c, map[string]string{idempotencyHeader: c.Key})
	if err != nil {
		return outcomeFailed
	}
	defer resp.Body.Close()

	var body ContactResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusCreated:
		return outcomeSent
	case http.StatusOK:
		if body.Duplicate {
			return outcomeDuplicate
		}
		return outcomeFailed
	case http.StatusConflict:
		return outcomeDuplicate
	case http.StatusTooManyRequests:
		return outcomeThrottled
	default:
		return outcomeFailed
	}
}
