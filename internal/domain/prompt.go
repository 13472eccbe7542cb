package domain

import "context"

// PromptVersion is one stored revision of an agent's prompt.
type PromptVersion struct {
	AgentName   string `json:"agent_name"`
	VersionName string `json:"version_name"`
	PromptText  string `json:"prompt_text"`
	Timestamp   int64  `json:"timestamp"`
	Description string `json:"description,omitempty"`
}

// PromptStore persists versioned agent prompts keyed by agent name.
type PromptStore interface {
	// Create stores a new version. Duplicate (agent, version) pairs fail
	// with ErrDuplicate.
	Create(ctx context.Context, v PromptVersion) error
	// Delete removes one version. Missing versions fail with
	// ErrVersionNotFound.
	Delete(ctx context.Context, agentName, versionName string) error
	// List returns all versions for an agent, newest first.
	List(ctx context.Context, agentName string) ([]PromptVersion, error)
	// Latest returns the newest version for an agent, or
	// ErrVersionNotFound if none exist.
	Latest(ctx context.Context, agentName string) (*PromptVersion, error)
	// Get returns one version by name.
	Get(ctx context.Context, agentName, versionName string) (*PromptVersion, error)
	// Close releases the underlying storage handle.
	Close() error
}
