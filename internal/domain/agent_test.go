package domain

import (
	"encoding/json"
	"testing"
)

func TestCustomAgentConfigFromControlFrame(t *testing.T) {
	raw := `{
		"name": "Pricing Guru",
		"goal": "pricing strategy and willingness-to-pay signals",
		"prompt": "You are {name}. Focus: {goal}. Transcript: {text}",
		"trigger_words": ["pricing", "price point"],
		"model_preference": "gemini-2.5-pro"
	}`

	var cfg CustomAgentConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if cfg.Name != "Pricing Guru" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if len(cfg.TriggerWords) != 2 || cfg.TriggerWords[1] != "price point" {
		t.Errorf("TriggerWords = %v", cfg.TriggerWords)
	}
	if cfg.ModelPreference != "gemini-2.5-pro" {
		t.Errorf("ModelPreference = %q", cfg.ModelPreference)
	}
}

func TestOutcomeKindString(t *testing.T) {
	tests := []struct {
		kind OutcomeKind
		want string
	}{
		{OutcomeEmit, "emit"},
		{OutcomeSuppress, "suppress"},
		{OutcomeFail, "fail"},
		{OutcomeKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestAgentSpecJSONRoundTrip(t *testing.T) {
	spec := AgentSpec{
		Name:           "Debate Agent",
		Goal:           "surface the strongest counterarguments",
		Template:       "You are {name}. {text}",
		Temperature:    0.5,
		MaxTokens:      300,
		MinInputLen:    25,
		WantsContext:   true,
		TriggerPhrases: []string{"debate agent", "analyze conflict"},
	}

	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got AgentSpec
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != spec.Name || !got.WantsContext || got.MaxTokens != 300 {
		t.Errorf("got %+v", got)
	}
	if len(got.TriggerPhrases) != 2 {
		t.Errorf("TriggerPhrases = %v", got.TriggerPhrases)
	}
}
