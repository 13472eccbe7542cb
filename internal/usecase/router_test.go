package usecase

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"meetingmind/internal/domain"
	"meetingmind/internal/infra/config"
)

func testRouterConfig() config.RouterConfig {
	return config.RouterConfig{
		RandomRouteProbability: 0, // always classify unless a test overrides
		ClassifierTemperature:  0.2,
		ClassifierMaxTokens:    50,
	}
}

func newTestRouter(client domain.LLMClient, registry *AgentRegistry, cfg config.RouterConfig) *Router {
	return NewRouter(client, registry, cfg, rand.New(rand.NewSource(1)), newTestLogger())
}

func TestRouterCustomTriggerBeatsBuiltin(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	// Custom trigger overlaps a built-in phrase; custom must win.
	registry.CreateCustom(domain.CustomAgentConfig{
		Name:         "Conflict Coach",
		TriggerWords: []string{"analyze conflict"},
	})

	router := newTestRouter(textClient("unused"), registry, testRouterConfig())
	decision := router.Route(context.Background(), "debate agent, analyze conflict in this plan")

	if decision.Kind != RouteAgent || decision.Agent != "Conflict Coach" {
		t.Errorf("decision = %+v, want custom agent", decision)
	}
}

func TestRouterBuiltinTriggerSkipsClassifier(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := textClient("unused")
	router := newTestRouter(client, registry, testRouterConfig())

	decision := router.Route(context.Background(), "Debate Agent, let's analyze this conflict")
	if decision.Kind != RouteAgent || decision.Agent != "Debate Agent" {
		t.Fatalf("decision = %+v, want Debate Agent", decision)
	}
	if client.callCount() != 0 {
		t.Error("classifier called despite explicit trigger")
	}
}

func TestRouterClassifierExactMatch(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := textClient("Radical Expander")
	router := newTestRouter(client, registry, testRouterConfig())

	decision := router.Route(context.Background(), "our weekly status meetings waste too much time")
	if decision.Kind != RouteAgent || decision.Agent != "Radical Expander" {
		t.Errorf("decision = %+v", decision)
	}

	prompt := client.lastRequest().Prompt
	if !strings.Contains(prompt, "Traffic Cop") {
		t.Errorf("classifier prompt missing framing: %q", prompt[:80])
	}
	if !strings.Contains(prompt, "Wild Product Agent") {
		t.Error("classifier prompt missing candidate agents")
	}
	if client.lastRequest().Temperature != 0.2 || client.lastRequest().MaxTokens != 50 {
		t.Errorf("classifier params = %+v", client.lastRequest())
	}
}

func TestRouterClassifierContainmentFallback(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := textClient("I would choose the `Wild Product Agent`.")
	router := newTestRouter(client, registry, testRouterConfig())

	decision := router.Route(context.Background(), "customers keep asking for a meal planning service")
	if decision.Kind != RouteAgent || decision.Agent != "Wild Product Agent" {
		t.Errorf("decision = %+v", decision)
	}
}

func TestRouterFailClosedParsing(t *testing.T) {
	for _, raw := range []string{
		"None",
		"none.",
		"I have no idea",
		"Debate Agent", // not routable, must not be chosen by the classifier
		"",
	} {
		registry := NewAgentRegistry(BuiltinAgents())
		router := newTestRouter(textClient(raw), registry, testRouterConfig())

		decision := router.Route(context.Background(), "a segment with no obvious routing destination")
		if decision.Kind != RouteNone {
			t.Errorf("raw %q: decision = %+v, want none", raw, decision)
		}
	}
}

func TestRouterClassifierUnreachable(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := &fakeClient{
		generate: func(domain.GenerateRequest) (*domain.GenerateResponse, error) {
			return nil, domain.ErrProviderError
		},
	}
	router := newTestRouter(client, registry, testRouterConfig())

	decision := router.Route(context.Background(), "a segment that needs classification")
	if decision.Kind != RouteUnavailable {
		t.Errorf("decision = %+v, want unavailable", decision)
	}
}

func TestRouterNoClientUnavailable(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	router := NewRouter(nil, registry, testRouterConfig(), rand.New(rand.NewSource(1)), newTestLogger())

	decision := router.Route(context.Background(), "a segment that needs classification")
	if decision.Kind != RouteUnavailable {
		t.Errorf("decision = %+v, want unavailable", decision)
	}
}

func TestRouterWeightedRandomShortCircuit(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := textClient("unused")

	cfg := testRouterConfig()
	cfg.RandomRouteProbability = 1.0
	router := newTestRouter(client, registry, cfg)

	decision := router.Route(context.Background(), "an ordinary segment about project planning")
	if decision.Kind != RouteAgent {
		t.Fatalf("decision = %+v, want an agent", decision)
	}
	if client.callCount() != 0 {
		t.Error("random path must never call the model")
	}
	if spec, ok := registry.Lookup(decision.Agent); !ok || !spec.Routable {
		t.Errorf("picked %q, not in the routable set", decision.Agent)
	}
}

func TestRouterWeightTableSkewsDraw(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())

	cfg := testRouterConfig()
	cfg.RandomRouteProbability = 1.0
	cfg.Weights = map[string]float64{}
	for _, spec := range registry.Routable() {
		cfg.Weights[spec.Name] = 0
	}
	cfg.Weights["Skeptical Agent"] = 5

	router := newTestRouter(textClient("unused"), registry, cfg)
	for i := 0; i < 20; i++ {
		decision := router.Route(context.Background(), "an ordinary segment about project planning")
		if decision.Agent != "Skeptical Agent" {
			t.Fatalf("draw %d picked %q despite all other weights zero", i, decision.Agent)
		}
	}
}

func TestRouterNoRoutableAgents(t *testing.T) {
	registry := NewAgentRegistry(nil)
	router := newTestRouter(textClient("unused"), registry, testRouterConfig())

	decision := router.Route(context.Background(), "anything at all")
	if decision.Kind != RouteNone {
		t.Errorf("decision = %+v, want none", decision)
	}
}
