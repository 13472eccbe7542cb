package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"meetingmind/internal/domain"
	"meetingmind/internal/infra/tracer"
)

// Sentinel outputs by which an agent signals intentional non-response.
// Compared case-insensitively against the trimmed generation.
var noContextSentinels = []string{
	"no_business_context",
	"no_relevant_context",
}

// quotaAdvice is the operator-facing marker logged on upstream rate
// limiting. The interval knob is the intended remedy.
const quotaAdvice = "rate limit exceeded; consider raising router.min_interval"

// Runner executes any AgentSpec: precondition checks, placeholder
// substitution, the generation call, and outcome interpretation. It is
// the single code path behind every built-in and custom agent.
type Runner struct {
	client    domain.LLMClient
	formatter *Formatter
	logger    *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(client domain.LLMClient, formatter *Formatter, logger *slog.Logger) *Runner {
	return &Runner{client: client, formatter: formatter, logger: logger}
}

// Run executes one agent against the given input and broadcasts at
// most one message. The returned outcome states which of the three
// branches was taken; callers use it for telemetry, not control flow.
func (r *Runner) Run(ctx context.Context, spec domain.AgentSpec, input string, broadcast domain.Broadcaster) domain.RunOutcome {
	ctx, span := tracer.StartSpan(ctx, "agent.run",
		trace.WithAttributes(tracer.StringAttr("agent.name", spec.Name)),
	)
	defer span.End()

	if r.client == nil {
		r.logger.Error("agent run failed: no llm client", "agent", spec.Name)
		return domain.RunOutcome{Kind: domain.OutcomeFail, Err: domain.ErrProviderNotFound}
	}
	if broadcast == nil {
		r.logger.Error("agent run failed: no broadcaster", "agent", spec.Name)
		return domain.RunOutcome{Kind: domain.OutcomeFail, Err: domain.ErrInvalidInput}
	}
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < spec.MinInputLen {
		r.logger.Warn("agent skipped: input too short",
			"agent", spec.Name,
			"len", len(trimmed),
			"min", spec.MinInputLen,
		)
		r.formatter.SilentError(ctx, spec.Name,
			"Insufficient context to generate insights for "+spec.Name+".", broadcast)
		return domain.RunOutcome{Kind: domain.OutcomeSuppress, Reason: "input too short"}
	}

	prompt := RenderTemplate(spec, trimmed)

	resp, err := r.client.Generate(ctx, domain.GenerateRequest{
		Prompt:      prompt,
		Model:       spec.ModelPreference,
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxTokens,
		Safety:      domain.SafetyMedium,
	})
	if err != nil {
		tracer.RecordError(span, err)
		if domain.IsQuotaExhausted(err) {
			r.logger.Error(quotaAdvice, "agent", spec.Name, "error", err)
		} else {
			r.logger.Error("agent generation failed", "agent", spec.Name, "error", err)
		}
		return domain.RunOutcome{Kind: domain.OutcomeFail, Err: err}
	}

	outcome := interpret(resp)
	switch outcome.Kind {
	case domain.OutcomeEmit:
		if sent := r.formatter.Insight(ctx, spec.Name, outcome.Content, broadcast); !sent {
			outcome = domain.RunOutcome{Kind: domain.OutcomeSuppress, Reason: "formatter suppressed"}
		}
	case domain.OutcomeSuppress:
		r.logger.Info("agent has nothing to say",
			"agent", spec.Name,
			"reason", outcome.Reason,
		)
	}
	tracer.SetOK(span)
	return outcome
}

// interpret classifies one generation into emit/suppress.
func interpret(resp *domain.GenerateResponse) domain.RunOutcome {
	if resp.FinishReason == domain.FinishSafety || resp.FinishReason == domain.FinishBlocked {
		return domain.RunOutcome{Kind: domain.OutcomeSuppress, Reason: "safety block"}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return domain.RunOutcome{Kind: domain.OutcomeSuppress, Reason: "empty response"}
	}
	lower := strings.ToLower(text)
	for _, sentinel := range noContextSentinels {
		if lower == sentinel {
			return domain.RunOutcome{Kind: domain.OutcomeSuppress, Reason: "no-context sentinel"}
		}
	}
	return domain.RunOutcome{Kind: domain.OutcomeEmit, Content: text}
}

// RenderTemplate substitutes the {name}, {goal} and {text} placeholders
// of a spec's prompt template.
func RenderTemplate(spec domain.AgentSpec, text string) string {
	replacer := strings.NewReplacer(
		"{name}", spec.Name,
		"{goal}", spec.Goal,
		"{text}", text,
	)
	return replacer.Replace(spec.Template)
}
