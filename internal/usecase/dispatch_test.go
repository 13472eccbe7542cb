package usecase

import (
	"context"
	"strings"
	"testing"

	"meetingmind/internal/domain"
)

func newTestDispatcher(client domain.LLMClient, registry *AgentRegistry) *Dispatcher {
	runner := newTestRunner(client)
	return NewDispatcher(registry, runner, nil, newTestLogger())
}

func TestDispatchContextShape(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := textClient("🤝 A solid observation about the disagreement at hand.")
	d := newTestDispatcher(client, registry)
	rec := &recorder{}

	segment := "debate agent, let's analyze this conflict"
	joined := "earlier remark about budget\nanother remark about hiring\n" + segment

	// Debate Agent wants the joined buffer.
	d.Dispatch(context.Background(), "Debate Agent", segment, joined, rec.broadcast)
	if !strings.Contains(client.lastRequest().Prompt, "earlier remark about budget") {
		t.Error("context-wanting agent did not receive the joined buffer")
	}

	// Routable agents get only the current segment.
	client2 := textClient("🚀 A product thought worth broadcasting now.")
	d2 := newTestDispatcher(client2, registry)
	d2.Dispatch(context.Background(), "Wild Product Agent", segment, joined, rec.broadcast)
	if strings.Contains(client2.lastRequest().Prompt, "earlier remark about budget") {
		t.Error("segment-only agent received the joined buffer")
	}
	if !strings.Contains(client2.lastRequest().Prompt, segment) {
		t.Error("segment-only agent did not receive the segment")
	}
}

func TestDispatchUnknownAgentNoOp(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())
	client := textClient("unused")
	d := newTestDispatcher(client, registry)
	rec := &recorder{}

	d.Dispatch(context.Background(), "Ghost Agent", "some segment text here", "ctx", rec.broadcast)
	if client.callCount() != 0 {
		t.Error("unknown agent reached the adapter")
	}
	if len(rec.messages()) != 0 {
		t.Error("unknown agent produced output")
	}
}

func TestDispatchIsolation(t *testing.T) {
	registry := NewAgentRegistry(BuiltinAgents())

	calls := 0
	client := &fakeClient{
		generate: func(domain.GenerateRequest) (*domain.GenerateResponse, error) {
			calls++
			if calls == 1 {
				panic("provider exploded")
			}
			return &domain.GenerateResponse{Text: "🚀 Recovered and generating normally again.", FinishReason: domain.FinishStop}, nil
		},
	}
	d := newTestDispatcher(client, registry)
	rec := &recorder{}

	// First dispatch panics inside the handler; must not propagate.
	d.Dispatch(context.Background(), "Wild Product Agent", "customers want a meal planning subscription", "", rec.broadcast)

	// A subsequent independent dispatch still works.
	d.Dispatch(context.Background(), "Wild Product Agent", "customers want a meal planning subscription", "", rec.broadcast)

	msgs := rec.messages()
	if len(msgs) != 1 || msgs[0].Type != domain.MessageInsight {
		t.Fatalf("messages = %+v, want one insight from the second dispatch", msgs)
	}
}
