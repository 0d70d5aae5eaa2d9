// Package service assembles the site's runtime: the record store, the
// contact writer pool, the frame loop driving chat sessions, and the
// dependencies handed to the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/h2hmarketing/site/internal/adapters/http/api"
	"github.com/h2hmarketing/site/internal/adapters/mq/queue"
	"github.com/h2hmarketing/site/internal/adapters/mq/worker"
	"github.com/h2hmarketing/site/internal/adapters/repository"
	"github.com/h2hmarketing/site/internal/config"
	"github.com/h2hmarketing/site/internal/domain/chat"
	"github.com/h2hmarketing/site/internal/domain/dedupe"
	"github.com/h2hmarketing/site/internal/frame"
	"github.com/h2hmarketing/site/internal/scene"
	"github.com/h2hmarketing/site/pkg/logger"
	"github.com/h2hmarketing/site/pkg/metrics"
)

// ErrNotStarted is returned by accessors used before Start.
var ErrNotStarted = errors.New("service not started")

const stopTimeout = 10 * time.Second

// Service owns every long-lived component of the site.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	store     repository.Store
	deduper   dedupe.Deduper
	queue     queue.Queue
	pool      *worker.Pool
	loop      *frame.Loop
	clock     frame.Clock
	responder *chat.Responder
	sessions  *chat.Registry
	renderer  *scene.Renderer

	// State
	started  bool
	cancel   context.CancelFunc
	loopDone chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig replaces the default configuration. Options are applied in
// order, so size overrides must follow it.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			c := *cfg
			s.cfg = &c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore bypasses the backend factory. The service takes ownership of
// store and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithClock drives the frame loop from c instead of the wall clock.
func WithClock(c frame.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithWorkerCount sets the number of contact writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.cfg.WriterCount = count
		}
	}
}

// WithQueueSize sets the contact writer queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cfg.WriterQueueSize = size
		}
	}
}

// WithDedupeSize sets the idempotency-key cache size.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cfg.DedupeSize = size
		}
	}
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Start builds and starts the components. Calling it on a started
// service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	cfg := s.cfg

	s.logger.Info(ctx, "starting site service...", logger.String("brand", cfg.BrandName))

	if s.store == nil {
		store, err := repository.New(ctx, cfg, s.logger.Named("store"))
		if err != nil {
			return err
		}
		s.store = store
	}

	renderer, err := scene.NewRenderer()
	if err != nil {
		return err
	}
	s.renderer = renderer

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(cfg.WriterQueueSize))
	metrics.UpdateWriterQueueCapacity(s.queue.Cap())
	s.pool = worker.NewPool(s.queue, s.store,
		worker.WithWorkerCount(cfg.WriterCount),
		worker.WithLogger(s.logger),
	)

	loopOpts := []frame.Option{
		frame.WithInterval(ms(cfg.FrameIntervalMS)),
		frame.WithTickHook(func(st frame.Stats) {
			metrics.RecordFrameTick()
			metrics.UpdateFramePending(st.Pending)
		}),
	}
	if s.clock != nil {
		loopOpts = append(loopOpts, frame.WithClock(s.clock))
	}
	s.loop = frame.NewLoop(loopOpts...)

	s.responder = chat.NewResponder(cfg.BrandName)
	s.sessions = chat.NewRegistry(s.responder, s.loop,
		chat.WithMaxSessions(cfg.ChatMaxSessions),
		chat.WithIdleTTL(time.Duration(cfg.ChatSessionTTLSec)*time.Second),
		chat.WithSessionOptions(
			chat.WithDelay(chat.UniformDelay(ms(cfg.ChatTypingMinMS), ms(cfg.ChatTypingMaxMS))),
			chat.WithReplyHook(func(r chat.Reply) { metrics.RecordChatReply(string(r.Intent)) }),
		),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)
	s.loopDone = make(chan struct{})
	go func() {
		defer close(s.loopDone)
		// Run only returns on cancellation.
		_ = s.loop.Run(runCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "site service started",
		logger.String("store", s.store.Name()),
		logger.Int("writers", cfg.WriterCount),
		logger.Int("queueSize", cfg.WriterQueueSize),
		logger.Int("dedupeSize", cfg.DedupeSize),
		logger.Int("maxSessions", cfg.ChatMaxSessions),
	)
	return nil
}

// Stop closes chat sessions, drains the writer queue and releases the
// record store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping site service...")

	s.sessions.Close()

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(stopCtx); err != nil {
		s.logger.Warn(ctx, "contact writers did not drain", logger.Error(err))
	}

	s.cancel()
	<-s.loopDone

	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing record store", logger.Error(err))
	}
	s.store = nil

	s.started = false
	s.logger.Info(ctx, "site service stopped")
}

// Dependencies returns the HTTP API wiring for a started service.
func (s *Service) Dependencies() (api.Dependencies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return api.Dependencies{}, ErrNotStarted
	}
	return api.Dependencies{
		Responder: s.responder,
		Sessions:  s.sessions,
		Records:   s.store,
		Contacts:  s.pool,
		Deduper:   s.deduper,
		Scene:     s.renderer,
		Stats:     s,
		Logger:    s.logger,

		StatusDismiss: ms(s.cfg.StatusDismissMS),
	}, nil
}

// Loop exposes the frame loop, mainly so tests can step it.
func (s *Service) Loop() *frame.Loop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loop
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"writerCount": s.cfg.WriterCount,
		"queueSize":   s.cfg.WriterQueueSize,
		"dedupeSize":  s.cfg.DedupeSize,
	}
	if !s.started {
		return stats
	}

	ws := s.pool.Stats()
	ls := s.loop.Stats()
	sessions := s.sessions.Len()

	stats["store"] = s.store.Name()
	stats["queueLength"] = ws.QueueLen
	stats["contactsWritten"] = ws.Written
	stats["contactsFailed"] = ws.Failed
	stats["chatSessions"] = sessions
	stats["idempotencyKeys"] = s.deduper.Size()
	stats["framePending"] = ls.Pending
	stats["frameTicks"] = ls.Ticks

	metrics.UpdateWriterQueueSize(ws.QueueLen)
	metrics.UpdateChatSessions(sessions)
	metrics.UpdateFramePending(ls.Pending)

	return stats
}
