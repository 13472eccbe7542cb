package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"meetingmind/internal/domain"
	"meetingmind/internal/infra/config"
	"meetingmind/internal/infra/tracer"
)

// RouteKind classifies one routing decision.
type RouteKind int

const (
	// RouteAgent selects a named agent.
	RouteAgent RouteKind = iota
	// RouteNone is a deliberate no-op: nothing worth dispatching.
	RouteNone
	// RouteUnavailable means the classifier itself was unreachable.
	// Distinct from RouteNone so callers don't log it as a decision.
	RouteUnavailable
)

// RouteDecision is the output of one routing invocation.
type RouteDecision struct {
	Kind  RouteKind
	Agent string
}

func (k RouteKind) String() string {
	switch k {
	case RouteAgent:
		return "agent"
	case RouteNone:
		return "none"
	case RouteUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Router decides which agent, if any, should process a transcript
// segment. Priority: custom-agent trigger words, then built-in trigger
// phrases, then content-based routing over the routable set — either a
// weighted random draw (no model call) or a classification prompt.
// The router performs no rate limiting; the session loop owns that.
type Router struct {
	client   domain.LLMClient
	registry *AgentRegistry
	cfg      config.RouterConfig
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRouter creates a Router. rng may be nil, in which case the global
// math/rand source is used; tests inject a seeded one.
func NewRouter(client domain.LLMClient, registry *AgentRegistry, cfg config.RouterConfig, rng *rand.Rand, logger *slog.Logger) *Router {
	return &Router{
		client:   client,
		registry: registry,
		cfg:      cfg,
		rng:      rng,
		logger:   logger,
	}
}

// Route picks the agent for one segment.
func (r *Router) Route(ctx context.Context, segment string) RouteDecision {
	ctx, span := tracer.StartSpan(ctx, "router.route")
	defer span.End()

	// 1. Custom-agent trigger words win over everything.
	if spec, ok := r.registry.MatchCustomTrigger(segment); ok {
		r.logger.Info("routing decision: custom trigger", "agent", spec.Name)
		tracer.SetOK(span)
		return RouteDecision{Kind: RouteAgent, Agent: spec.Name}
	}

	// 2. Built-in trigger phrases, declaration order.
	if spec, ok := r.registry.MatchBuiltinTrigger(segment); ok {
		r.logger.Info("routing decision: explicit trigger", "agent", spec.Name)
		tracer.SetOK(span)
		return RouteDecision{Kind: RouteAgent, Agent: spec.Name}
	}

	routable := r.registry.Routable()
	if len(routable) == 0 {
		r.logger.Warn("routing skipped: no routable agents configured")
		tracer.SetOK(span)
		return RouteDecision{Kind: RouteNone}
	}

	// 3a. Weighted random short-circuit: corrects for classifier bias
	// and saves a model call.
	if r.randFloat() < r.cfg.RandomRouteProbability {
		spec := r.weightedPick(routable)
		r.logger.Info("routing decision: weighted random", "agent", spec.Name)
		tracer.SetOK(span)
		return RouteDecision{Kind: RouteAgent, Agent: spec.Name}
	}

	// 3b. Classification call.
	return r.classify(ctx, span, segment, routable)
}

func (r *Router) classify(ctx context.Context, span trace.Span, segment string, routable []domain.AgentSpec) RouteDecision {
	if r.client == nil {
		r.logger.Error("routing failed: no llm client for classification")
		return RouteDecision{Kind: RouteUnavailable}
	}

	resp, err := r.client.Generate(ctx, domain.GenerateRequest{
		Prompt:      classifierPrompt(segment, routable),
		Temperature: r.cfg.ClassifierTemperature,
		MaxTokens:   r.cfg.ClassifierMaxTokens,
		Safety:      domain.SafetyMedium,
	})
	if err != nil {
		tracer.RecordError(span, err)
		if domain.IsQuotaExhausted(err) {
			r.logger.Error(quotaAdvice, "op", "router.classify", "error", err)
		} else {
			r.logger.Error("classification call failed", "error", err)
		}
		return RouteDecision{Kind: RouteUnavailable}
	}

	if resp.FinishReason == domain.FinishSafety || resp.FinishReason == domain.FinishBlocked {
		r.logger.Warn("classification blocked, defaulting to none")
		tracer.SetOK(span)
		return RouteDecision{Kind: RouteNone}
	}

	decision := parseChoice(resp.Text, routable)
	if decision.Kind == RouteAgent {
		r.logger.Info("routing decision: classifier", "agent", decision.Agent)
	} else {
		r.logger.Info("routing decision: classifier chose none")
	}
	tracer.SetOK(span)
	return decision
}

// parseChoice resolves the classifier's raw output to an agent name.
// Exact case-insensitive match first, containment as fallback, then
// explicit "none"; anything unrecognized fails closed to none.
func parseChoice(raw string, routable []domain.AgentSpec) RouteDecision {
	cleaned := strings.NewReplacer(`"`, "", "'", "", ".", "", "`", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return RouteDecision{Kind: RouteNone}
	}
	lower := strings.ToLower(cleaned)

	for _, spec := range routable {
		if strings.ToLower(spec.Name) == lower {
			return RouteDecision{Kind: RouteAgent, Agent: spec.Name}
		}
	}
	for _, spec := range routable {
		if strings.Contains(lower, strings.ToLower(spec.Name)) {
			return RouteDecision{Kind: RouteAgent, Agent: spec.Name}
		}
	}
	return RouteDecision{Kind: RouteNone}
}

// classifierPrompt builds the traffic-cop prompt: candidate agents
// with their domains plus worked examples distinguishing internal
// process topics from customer-facing ones.
func classifierPrompt(segment string, routable []domain.AgentSpec) string {
	var b strings.Builder
	b.WriteString(`You are a "Traffic Cop" AI analyzing meeting transcript segments. Your job is to determine which specialized AI agent should process each segment next, IF ANY. Do NOT choose any agent not listed below.

Available Agents (Choose ONE or None):
`)
	for _, spec := range routable {
		b.WriteString("- ")
		b.WriteString(spec.Name)
		b.WriteString(": ")
		b.WriteString(spec.Description)
		b.WriteString("\n")
	}

	b.WriteString(`
Transcript Segment:
"`)
	b.WriteString(segment)
	b.WriteString(`"

Examples of Routing Decisions (Pay close attention to internal vs. external focus):
- "Our weekly status meetings are incredibly inefficient and waste a lot of time." -> Radical Expander (internal process)
- "Should we offer a personalized meal planning subscription service to our customers?" -> Wild Product Agent (external service)
- "Customer churn is way too high; we need to reduce it for our premium product." -> Wild Product Agent (external product)
- "Should we completely reimagine our sales compensation structure for our sales team?" -> Radical Expander (internal structure)
- "How can we streamline the employee onboarding process for new hires?" -> Radical Expander (internal process)
- "We're getting a lot of negative feedback about the mobile app's user interface." -> Wild Product Agent (external product)

Which agent from the list above is the MOST relevant for this specific segment? Output ONLY the name of the chosen agent or the word "None".`)
	return b.String()
}

// weightedPick draws one agent from the weight table. Agents absent
// from the table get weight 1; a zero total falls back to uniform.
func (r *Router) weightedPick(routable []domain.AgentSpec) domain.AgentSpec {
	total := 0.0
	weights := make([]float64, len(routable))
	for i, spec := range routable {
		w, ok := r.cfg.Weights[spec.Name]
		if !ok {
			w = 1
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return routable[r.randIntn(len(routable))]
	}

	target := r.randFloat() * total
	for i, w := range weights {
		target -= w
		if target < 0 {
			return routable[i]
		}
	}
	return routable[len(routable)-1]
}

func (r *Router) randFloat() float64 {
	if r.rng == nil {
		return rand.Float64()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *Router) randIntn(n int) int {
	if r.rng == nil {
		return rand.Intn(n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
