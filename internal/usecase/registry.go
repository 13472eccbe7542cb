package usecase

import (
	"strings"
	"sync"

	"meetingmind/internal/domain"
)

// defaultCustomTemplate runs any custom agent that does not supply its
// own prompt. Placeholders are substituted by the Runner.
const defaultCustomTemplate = `You are {name}, an AI agent that specializes in: {goal}

TRANSCRIPT:
"{text}"

Your task is to analyze this transcript segment through the lens of your specialization. Be creative in finding connections to your area of expertise, but be genuine and specific.

GUIDELINES:
1. Write like a brilliant, excited entrepreneur sharing their vision - not like corporate marketing
2. Keep your headline clear, exciting and sophisticated
3. NO buzzwords like "revolutionize," "transform," "disrupt," "optimize"
4. ORIGINALITY IS CRITICAL: your insights must go beyond what's directly stated in the transcript
5. If you find no connections to your specialty, respond ONLY with "NO_RELEVANT_CONTEXT"`

// Custom agent generation parameters, shared by all runtime agents.
const (
	customTemperature = 0.7
	customMaxTokens   = 500
	customMinInput    = 15
)

// AgentRegistry holds the built-in agent roster and the process-wide
// custom agent set. Custom agents are created, updated and deleted at
// runtime over the control channel and live in memory only; on
// concurrent writes the last writer wins.
type AgentRegistry struct {
	mu       sync.RWMutex
	builtins []domain.AgentSpec
	customs  map[string]domain.AgentSpec
	order    []string // custom names in creation order
}

// NewAgentRegistry creates a registry seeded with the built-in roster.
func NewAgentRegistry(builtins []domain.AgentSpec) *AgentRegistry {
	return &AgentRegistry{
		builtins: builtins,
		customs:  make(map[string]domain.AgentSpec),
	}
}

// Lookup resolves an agent by name, custom agents first.
func (r *AgentRegistry) Lookup(name string) (domain.AgentSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if spec, ok := r.customs[name]; ok {
		return spec, true
	}
	for _, spec := range r.builtins {
		if spec.Name == name {
			return spec, true
		}
	}
	return domain.AgentSpec{}, false
}

// Builtins returns the built-in roster in declaration order.
func (r *AgentRegistry) Builtins() []domain.AgentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AgentSpec, len(r.builtins))
	copy(out, r.builtins)
	return out
}

// Customs returns the custom agents in creation order.
func (r *AgentRegistry) Customs() []domain.AgentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AgentSpec, 0, len(r.order))
	for _, name := range r.order {
		if spec, ok := r.customs[name]; ok {
			out = append(out, spec)
		}
	}
	return out
}

// Routable returns the built-in agents eligible for content-based
// routing, in declaration order.
func (r *AgentRegistry) Routable() []domain.AgentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.AgentSpec
	for _, spec := range r.builtins {
		if spec.Routable {
			out = append(out, spec)
		}
	}
	return out
}

// CreateCustom registers a runtime agent from an operator-supplied
// config. The name must be non-empty and not collide with a built-in.
func (r *AgentRegistry) CreateCustom(cfg domain.CustomAgentConfig) error {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return domain.NewDomainError("AgentRegistry.CreateCustom", domain.ErrInvalidInput, "empty agent name")
	}
	for _, spec := range r.builtins {
		if strings.EqualFold(spec.Name, name) {
			return domain.NewDomainError("AgentRegistry.CreateCustom", domain.ErrDuplicate, name)
		}
	}

	spec := specFromCustom(name, cfg)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.customs[name]; !exists {
		r.order = append(r.order, name)
	}
	r.customs[name] = spec
	return nil
}

// UpdateCustom replaces the agent registered under oldName with a spec
// built from cfg. Renames are allowed.
func (r *AgentRegistry) UpdateCustom(oldName string, cfg domain.CustomAgentConfig) error {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return domain.NewDomainError("AgentRegistry.UpdateCustom", domain.ErrInvalidInput, "empty agent name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customs[oldName]; !ok {
		return domain.NewDomainError("AgentRegistry.UpdateCustom", domain.ErrAgentNotFound, oldName)
	}
	if name != oldName {
		delete(r.customs, oldName)
		for i, n := range r.order {
			if n == oldName {
				r.order[i] = name
				break
			}
		}
	}
	r.customs[name] = specFromCustom(name, cfg)
	return nil
}

// DeleteCustom removes a runtime agent.
func (r *AgentRegistry) DeleteCustom(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customs[name]; !ok {
		return domain.NewDomainError("AgentRegistry.DeleteCustom", domain.ErrAgentNotFound, name)
	}
	delete(r.customs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// MatchCustomTrigger returns the first custom agent (creation order)
// with a trigger word appearing in the segment, case-insensitive.
func (r *AgentRegistry) MatchCustomTrigger(segment string) (domain.AgentSpec, bool) {
	lower := strings.ToLower(segment)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		spec, ok := r.customs[name]
		if !ok {
			continue
		}
		for _, word := range spec.TriggerPhrases {
			if word != "" && strings.Contains(lower, strings.ToLower(word)) {
				return spec, true
			}
		}
	}
	return domain.AgentSpec{}, false
}

// MatchBuiltinTrigger returns the first built-in agent (declaration
// order) with a trigger phrase appearing in the segment.
func (r *AgentRegistry) MatchBuiltinTrigger(segment string) (domain.AgentSpec, bool) {
	lower := strings.ToLower(segment)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, spec := range r.builtins {
		for _, phrase := range spec.TriggerPhrases {
			if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
				return spec, true
			}
		}
	}
	return domain.AgentSpec{}, false
}

// SetTemplate swaps an agent's prompt template in place. This is how a
// stored prompt version becomes the active prompt; it applies to custom
// and built-in agents alike and lasts until the process restarts.
func (r *AgentRegistry) SetTemplate(name, template string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if spec, ok := r.customs[name]; ok {
		spec.Template = template
		r.customs[name] = spec
		return nil
	}
	for i := range r.builtins {
		if r.builtins[i].Name == name {
			r.builtins[i].Template = template
			return nil
		}
	}
	return domain.NewDomainError("AgentRegistry.SetTemplate", domain.ErrAgentNotFound, name)
}

func specFromCustom(name string, cfg domain.CustomAgentConfig) domain.AgentSpec {
	template := cfg.PromptTemplate
	if strings.TrimSpace(template) == "" {
		template = defaultCustomTemplate
	}
	return domain.AgentSpec{
		Name:            name,
		Goal:            cfg.Goal,
		Template:        template,
		Temperature:     customTemperature,
		MaxTokens:       customMaxTokens,
		MinInputLen:     customMinInput,
		TriggerPhrases:  cfg.TriggerWords,
		Custom:          true,
		ModelPreference: cfg.ModelPreference,
	}
}
