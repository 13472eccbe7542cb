package usecase

import (
	"context"
	"log/slog"
	"strings"

	"meetingmind/internal/domain"
)

// apologyMarkers flag generations that are deflections rather than
// insights. Matched case-insensitively against the whole content.
var apologyMarkers = []string{
	"sorry",
	"i apologize",
	"not enough context",
	"insufficient context",
	"doesn't provide enough",
	"limited information",
}

// Formatter normalizes agent output into wire messages. Low-quality
// generations are suppressed rather than shown, and agent failures are
// sent on the silent-error channel so end users never see failure
// cards during a meeting.
type Formatter struct {
	logger *slog.Logger
}

// NewFormatter creates a Formatter.
func NewFormatter(logger *slog.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Insight trims, filters and broadcasts one insight. Returns true if
// the message was sent, false if it was suppressed.
func (f *Formatter) Insight(ctx context.Context, agent, content string, broadcast domain.Broadcaster) bool {
	clean := strings.TrimSpace(content)
	if clean == "" {
		return false
	}

	lower := strings.ToLower(clean)
	for _, marker := range apologyMarkers {
		if strings.Contains(lower, marker) {
			f.logger.Warn("suppressing apology-like response",
				"agent", agent,
				"marker", marker,
			)
			return false
		}
	}

	msg := domain.InsightMessage{
		Type:    domain.MessageInsight,
		Agent:   agent,
		Content: clean,
	}
	if err := broadcast(ctx, msg); err != nil {
		f.logger.Error("broadcast insight failed", "agent", agent, "error", err)
		return false
	}
	return true
}

// SilentError sends a telemetry-only notice. Clients log it; they must
// not render it as a card.
func (f *Formatter) SilentError(ctx context.Context, agent, message string, broadcast domain.Broadcaster) {
	msg := domain.InsightMessage{
		Type:    domain.MessageSilentError,
		Agent:   agent,
		Message: strings.TrimSpace(message),
	}
	if err := broadcast(ctx, msg); err != nil {
		f.logger.Error("broadcast silent error failed", "agent", agent, "error", err)
	}
}
