package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"meetingmind/internal/domain"
)

// Dispatcher maps a routed agent name to its spec, supplies the right
// context shape, and isolates failures so one misbehaving agent never
// takes down the session loop.
type Dispatcher struct {
	registry *AgentRegistry
	runner   *Runner
	bus      domain.EventBus
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. bus may be nil.
func NewDispatcher(registry *AgentRegistry, runner *Runner, bus domain.EventBus, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		runner:   runner,
		bus:      bus,
		logger:   logger,
	}
}

// Dispatch runs the named agent with the current segment or the joined
// context buffer, depending on the spec. Unknown names log and no-op.
// Panics and errors inside the run are recovered here.
func (d *Dispatcher) Dispatch(ctx context.Context, name, segment, contextText string, broadcast domain.Broadcaster) {
	spec, ok := d.registry.Lookup(name)
	if !ok {
		d.logger.Warn("dispatch skipped: unknown agent", "agent", name)
		return
	}

	input := segment
	if spec.WantsContext {
		input = contextText
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("agent panicked", "agent", name, "panic", r)
		}
	}()

	outcome := d.runner.Run(ctx, spec, input, broadcast)
	switch outcome.Kind {
	case domain.OutcomeFail:
		d.publish(ctx, domain.EventAgentError, name)
	default:
		d.publish(ctx, domain.EventAgentDispatched, name)
	}
	d.logger.Info("agent dispatched",
		"agent", name,
		"outcome", outcome.Kind.String(),
	)
}

func (d *Dispatcher) publish(ctx context.Context, eventType domain.EventType, agent string) {
	if d.bus == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"agent": agent})
	d.bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: domain.SessionIDFromContext(ctx),
		Payload:   payload,
	})
}
