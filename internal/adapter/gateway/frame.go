package gateway

// ControlType identifies a control operation requested over a text frame.
type ControlType string

const (
	ControlCreateAgent        ControlType = "create_agent"
	ControlUpdateAgent        ControlType = "update_agent"
	ControlDeleteAgent        ControlType = "delete_agent"
	ControlGetAvailableModels ControlType = "get_available_models"
	ControlSetModel           ControlType = "set_model"
	ControlGetAgentPrompt     ControlType = "get_agent_prompt"
	ControlGetAgentVersions   ControlType = "get_agent_versions"
	ControlCreateAgentVersion ControlType = "create_agent_version"
	ControlDeleteAgentVersion ControlType = "delete_agent_version"
	ControlUseAgentVersion    ControlType = "use_agent_version"
)

// AgentConfig is the nested agent definition carried by create_agent
// and update_agent frames. Extra client-side keys (icon, type) are
// ignored.
type AgentConfig struct {
	Name     string   `json:"name"`
	Goal     string   `json:"goal"`
	Prompt   string   `json:"prompt,omitempty"`
	Triggers []string `json:"triggers,omitempty"`
	Model    string   `json:"model,omitempty"`
}

// ControlMessage is the JSON body of a text frame. Binary frames carry
// raw audio and never reach the control path. Fields are a union over
// all operations; each handler reads the ones it needs.
type ControlMessage struct {
	Type ControlType `json:"type"`

	// Agent definition (create_agent, update_agent). Config is the
	// nested shape clients send; the flat fields below are accepted as
	// a fallback.
	Config  *AgentConfig `json:"config,omitempty"`
	OldName string       `json:"old_name,omitempty"`

	Name            string   `json:"name,omitempty"`
	Goal            string   `json:"goal,omitempty"`
	Prompt          string   `json:"prompt,omitempty"`
	TriggerWords    []string `json:"trigger_words,omitempty"`
	ModelPreference string   `json:"model_preference,omitempty"`

	// Agent targeting (update/delete and all prompt version operations).
	AgentName string `json:"agent_name,omitempty"`

	// Prompt version fields. Text optionally carries a transcript
	// excerpt for use_agent_version to re-run the agent against.
	VersionName string `json:"version_name,omitempty"`
	PromptText  string `json:"prompt_text,omitempty"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text,omitempty"`

	// Model selection (set_model).
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}
