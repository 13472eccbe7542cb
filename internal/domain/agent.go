package domain

import "context"

// Broadcaster delivers one outbound message to every connected client.
type Broadcaster func(ctx context.Context, msg InsightMessage) error

// AgentSpec describes one insight agent as data. Built-in agents are
// static AgentSpec values; custom agents are AgentSpecs built from a
// CustomAgentConfig at runtime. The runner is the only code path.
type AgentSpec struct {
	// Name is the unique key used by the router and dispatcher.
	Name string `json:"name"`
	// Goal is a one-line statement of the agent's specialty, substituted
	// into the template and shown to the classifier.
	Goal string `json:"goal"`
	// Description tells the routing classifier when this agent applies.
	Description string `json:"description,omitempty"`
	// Template is the prompt body. Placeholders {name}, {goal} and
	// {text} are substituted at run time.
	Template string `json:"template"`

	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	// MinInputLen is the shortest input the agent accepts; shorter
	// inputs produce a single "insufficient context" notice.
	MinInputLen int `json:"min_input_len"`

	// WantsContext selects the call shape: the joined context buffer
	// instead of only the segment that triggered the agent.
	WantsContext bool `json:"wants_context"`
	// TriggerPhrases force-select this agent when any phrase appears in
	// a segment (case-insensitive substring match).
	TriggerPhrases []string `json:"trigger_phrases,omitempty"`
	// Routable marks the agent as a candidate for content-based routing.
	Routable bool `json:"routable"`
	// Custom marks runtime-created agents.
	Custom bool `json:"custom,omitempty"`
	// ModelPreference optionally pins the agent to a model name.
	ModelPreference string `json:"model_preference,omitempty"`
}

// CustomAgentConfig is the operator-supplied definition of a runtime
// agent, received over the control channel. Custom agents live in
// process memory only; they do not survive a restart.
type CustomAgentConfig struct {
	Name            string   `json:"name"`
	Goal            string   `json:"goal"`
	PromptTemplate  string   `json:"prompt,omitempty"`
	TriggerWords    []string `json:"trigger_words,omitempty"`
	ModelPreference string   `json:"model_preference,omitempty"`
}

// OutcomeKind is the three-way result of one agent invocation.
type OutcomeKind int

const (
	// OutcomeEmit means the agent produced content worth broadcasting.
	OutcomeEmit OutcomeKind = iota
	// OutcomeSuppress means the agent deliberately has nothing to say
	// (safety block, empty output, or a no-context sentinel).
	OutcomeSuppress
	// OutcomeFail means the underlying call failed; logged, never shown.
	OutcomeFail
)

// RunOutcome makes the emit/suppress/fail branch explicit.
type RunOutcome struct {
	Kind    OutcomeKind
	Content string
	Reason  string
	Err     error
}

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmit:
		return "emit"
	case OutcomeSuppress:
		return "suppress"
	case OutcomeFail:
		return "fail"
	default:
		return "unknown"
	}
}
