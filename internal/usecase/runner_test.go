package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"meetingmind/internal/domain"
)

func testSpec() domain.AgentSpec {
	return domain.AgentSpec{
		Name:        "Test Agent",
		Goal:        "testing",
		Template:    "You are {name} ({goal}). Analyze: {text}",
		Temperature: 0.5,
		MaxTokens:   100,
		MinInputLen: 10,
	}
}

func newTestRunner(client domain.LLMClient) *Runner {
	return NewRunner(client, NewFormatter(newTestLogger()), newTestLogger())
}

func TestRunnerEmitsInsight(t *testing.T) {
	client := textClient("🚀 A specific, valuable insight.")
	runner := newTestRunner(client)
	rec := &recorder{}

	outcome := runner.Run(context.Background(), testSpec(), "we should restructure our meetings", rec.broadcast)
	if outcome.Kind != domain.OutcomeEmit {
		t.Fatalf("outcome = %v, want emit", outcome.Kind)
	}
	msgs := rec.messages()
	if len(msgs) != 1 || msgs[0].Type != domain.MessageInsight {
		t.Fatalf("messages = %+v", msgs)
	}

	prompt := client.lastRequest().Prompt
	if !strings.Contains(prompt, "Test Agent") || !strings.Contains(prompt, "we should restructure our meetings") {
		t.Errorf("placeholders not substituted: %q", prompt)
	}
	if client.lastRequest().Temperature != 0.5 || client.lastRequest().MaxTokens != 100 {
		t.Errorf("generation params not applied: %+v", client.lastRequest())
	}
}

func TestRunnerShortInputSkipsAdapter(t *testing.T) {
	client := textClient("never called")
	runner := newTestRunner(client)
	rec := &recorder{}

	outcome := runner.Run(context.Background(), testSpec(), "hi", rec.broadcast)
	if outcome.Kind != domain.OutcomeSuppress {
		t.Fatalf("outcome = %v, want suppress", outcome.Kind)
	}
	if client.callCount() != 0 {
		t.Error("adapter called despite short input")
	}
	msgs := rec.messages()
	if len(msgs) != 1 || msgs[0].Type != domain.MessageSilentError {
		t.Fatalf("expected exactly one silent error, got %+v", msgs)
	}
	if !strings.Contains(msgs[0].Message, "Insufficient context") {
		t.Errorf("message = %q", msgs[0].Message)
	}
}

func TestRunnerSentinelSuppression(t *testing.T) {
	for _, sentinel := range []string{
		"NO_BUSINESS_CONTEXT",
		"no_business_context",
		"No_Business_Context",
		"NO_RELEVANT_CONTEXT",
		"  no_relevant_context  ",
	} {
		client := textClient(sentinel)
		runner := newTestRunner(client)
		rec := &recorder{}

		outcome := runner.Run(context.Background(), testSpec(), "a perfectly valid transcript segment", rec.broadcast)
		if outcome.Kind != domain.OutcomeSuppress {
			t.Errorf("sentinel %q: outcome = %v, want suppress", sentinel, outcome.Kind)
		}
		if len(rec.messages()) != 0 {
			t.Errorf("sentinel %q: message was broadcast", sentinel)
		}
	}
}

func TestRunnerSafetyBlockSuppressed(t *testing.T) {
	client := &fakeClient{
		generate: func(domain.GenerateRequest) (*domain.GenerateResponse, error) {
			return &domain.GenerateResponse{FinishReason: domain.FinishSafety}, nil
		},
	}
	runner := newTestRunner(client)
	rec := &recorder{}

	outcome := runner.Run(context.Background(), testSpec(), "a perfectly valid transcript segment", rec.broadcast)
	if outcome.Kind != domain.OutcomeSuppress {
		t.Fatalf("outcome = %v, want suppress", outcome.Kind)
	}
	if len(rec.messages()) != 0 {
		t.Error("safety-blocked response was broadcast")
	}
}

func TestRunnerGenerationFailure(t *testing.T) {
	client := &fakeClient{
		generate: func(domain.GenerateRequest) (*domain.GenerateResponse, error) {
			return nil, domain.ErrRateLimit
		},
	}
	runner := newTestRunner(client)
	rec := &recorder{}

	outcome := runner.Run(context.Background(), testSpec(), "a perfectly valid transcript segment", rec.broadcast)
	if outcome.Kind != domain.OutcomeFail {
		t.Fatalf("outcome = %v, want fail", outcome.Kind)
	}
	if !errors.Is(outcome.Err, domain.ErrRateLimit) {
		t.Errorf("err = %v", outcome.Err)
	}
	if len(rec.messages()) != 0 {
		t.Error("failure was broadcast to users")
	}
}

func TestRunnerModelPreference(t *testing.T) {
	client := textClient("ok content for the insight card")
	runner := newTestRunner(client)
	rec := &recorder{}

	spec := testSpec()
	spec.ModelPreference = "claude-3-5-sonnet"
	runner.Run(context.Background(), spec, "a perfectly valid transcript segment", rec.broadcast)

	if got := client.lastRequest().Model; got != "claude-3-5-sonnet" {
		t.Errorf("model = %q, want preference honored", got)
	}
}

func TestRenderTemplate(t *testing.T) {
	spec := domain.AgentSpec{Name: "N", Goal: "G", Template: "{name}/{goal}/{text}/{name}"}
	if got := RenderTemplate(spec, "T"); got != "N/G/T/N" {
		t.Errorf("RenderTemplate = %q", got)
	}
}
