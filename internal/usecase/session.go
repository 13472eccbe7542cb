package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"meetingmind/internal/domain"
	"meetingmind/internal/infra/config"
)

// Session owns one client's transcript flow: the rolling context
// buffer, the min-interval rate limiter gating routing decisions, and
// the routing/dispatch pipeline for finalized segments. Segment
// handling is sequential within a session; dispatch is fire-and-forget
// relative to buffer growth.
type Session struct {
	ID string

	buffer     *ContextBuffer
	limiter    *rate.Limiter
	router     *Router
	dispatcher *Dispatcher
	broadcast  domain.Broadcaster
	bus        domain.EventBus
	logger     *slog.Logger

	minSegmentLen int
	drainTimeout  time.Duration

	bufMu  sync.Mutex // buffer is also read by control handlers
	wg     sync.WaitGroup
	closed sync.Once
}

// NewSession creates a session with a generated ULID.
func NewSession(cfg config.SessionConfig, routerCfg config.RouterConfig, router *Router, dispatcher *Dispatcher, broadcast domain.Broadcaster, bus domain.EventBus, logger *slog.Logger) *Session {
	id := generateULID(time.Now())
	s := &Session{
		ID:            id,
		buffer:        NewContextBuffer(cfg.BufferCapacity),
		limiter:       rate.NewLimiter(rate.Every(routerCfg.MinInterval), 1),
		router:        router,
		dispatcher:    dispatcher,
		broadcast:     broadcast,
		bus:           bus,
		logger:        logger.With("session", id),
		minSegmentLen: cfg.MinSegmentLen,
		drainTimeout:  cfg.DrainTimeout,
	}
	s.publish(context.Background(), domain.EventSessionCreated, nil)
	return s
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Consume reads segments until the stream closes or ctx is cancelled.
func (s *Session) Consume(ctx context.Context, segments <-chan domain.Segment) {
	for {
		select {
		case <-ctx.Done():
			return
		case seg, ok := <-segments:
			if !ok {
				return
			}
			s.HandleSegment(ctx, seg)
		}
	}
}

// HandleSegment processes one transcription result. Interim segments
// are ignored; final segments are appended to the buffer and, when the
// rate limiter allows, routed and dispatched.
func (s *Session) HandleSegment(ctx context.Context, seg domain.Segment) {
	if !seg.IsFinal {
		return
	}
	ctx = domain.ContextWithSessionID(ctx, s.ID)

	trimmed := strings.TrimSpace(seg.Text)
	if trimmed == "" {
		return
	}

	s.bufMu.Lock()
	s.buffer.Append(trimmed)
	s.bufMu.Unlock()
	s.publish(ctx, domain.EventSegmentFinal, map[string]string{"text": trimmed})

	if len(trimmed) < s.minSegmentLen {
		s.logger.Debug("segment too short, skipping routing", "len", len(trimmed))
		return
	}

	if !s.limiter.Allow() {
		s.logger.Debug("routing skipped: interval not met")
		return
	}

	decision := s.router.Route(ctx, trimmed)
	switch decision.Kind {
	case RouteAgent:
		s.publish(ctx, domain.EventAgentRouted, map[string]string{"agent": decision.Agent})
		s.bufMu.Lock()
		contextText := s.buffer.Joined()
		s.bufMu.Unlock()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatcher.Dispatch(ctx, decision.Agent, trimmed, contextText, s.broadcast)
		}()
	case RouteNone:
		s.logger.Info("no agent needed for this segment")
	case RouteUnavailable:
		s.logger.Warn("routing unavailable, skipping segment")
	}
}

// Close waits up to the drain timeout for in-flight dispatches, then
// returns. Idempotent.
func (s *Session) Close() {
	s.closed.Do(func() {
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(s.drainTimeout):
			s.logger.Warn("session closed with dispatch still in flight")
		}
		s.publish(context.Background(), domain.EventSessionClosed, nil)
	})
}

// ContextSnapshot returns the buffered segments, oldest first.
func (s *Session) ContextSnapshot() []string {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return s.buffer.Snapshot()
}

func (s *Session) publish(ctx context.Context, eventType domain.EventType, fields map[string]string) {
	if s.bus == nil {
		return
	}
	var payload json.RawMessage
	if fields != nil {
		payload, _ = json.Marshal(fields)
	}
	s.bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: s.ID,
		Payload:   payload,
	})
}
