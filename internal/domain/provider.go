package domain

import "context"

// FinishReason classifies how a generation ended, independent of the
// provider that produced it. Callers branch on this instead of
// inspecting provider-specific payloads.
type FinishReason string

const (
	// FinishStop is a normal completion.
	FinishStop FinishReason = "stop"
	// FinishSafety means the provider's safety filter blocked the output.
	FinishSafety FinishReason = "safety"
	// FinishMaxTokens means the output hit the token budget.
	FinishMaxTokens FinishReason = "max_tokens"
	// FinishBlocked covers any other provider-side refusal or an
	// unrecognized stop reason.
	FinishBlocked FinishReason = "blocked"
)

// SafetyLevel selects how aggressively provider safety filters block.
type SafetyLevel string

const (
	SafetyDefault SafetyLevel = ""
	SafetyMedium  SafetyLevel = "medium"
	SafetyHigh    SafetyLevel = "high"
)

// GenerateRequest is a single-prompt generation call.
type GenerateRequest struct {
	Prompt      string      `json:"prompt"`
	Model       string      `json:"model,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	TopP        float64     `json:"top_p,omitempty"`
	Safety      SafetyLevel `json:"safety,omitempty"`
}

// GenerateResponse is the provider-neutral result of a generation.
type GenerateResponse struct {
	Text         string       `json:"text"`
	FinishReason FinishReason `json:"finish_reason"`
	Provider     string       `json:"provider"`
	Model        string       `json:"model"`
	Usage        Usage        `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMProvider is the interface for any generative backend.
type LLMProvider interface {
	// Generate sends a prompt and returns a complete response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	// Name returns the provider's identifier (e.g. "gemini", "claude").
	Name() string
}

// LLMClient is what handlers and the router depend on: the registry's
// active-provider view of the configured backends.
type LLMClient interface {
	// Generate runs the request against the active provider.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	// ActiveProvider returns the active provider and model names.
	ActiveProvider() (provider, model string)
}
