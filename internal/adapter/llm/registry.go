package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"meetingmind/internal/domain"
)

// Registry holds named LLM providers and the process-wide active
// selection. Any session may switch the active provider; the change
// affects all sessions from that point on.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]domain.LLMProvider
	models      map[string][]string // advertised model names per provider
	active      string
	activeModel string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]domain.LLMProvider),
		models:    make(map[string][]string),
	}
}

// Register adds a provider with its advertised model list. The first
// registered provider becomes active. Returns an error if the name is
// already registered.
func (r *Registry) Register(provider domain.LLMProvider, defaultModel string, models ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.providers[name] = provider
	r.models[name] = append([]string{}, models...)

	if r.active == "" {
		r.active = name
		r.activeModel = defaultModel
	}
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (domain.LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrProviderNotFound, name)
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetActive switches the process-wide active provider (and optionally
// model). The requested provider must be registered; on failure the
// previous selection is left intact.
func (r *Registry) SetActive(name, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return domain.NewDomainError("Registry.SetActive", domain.ErrProviderNotFound, name)
	}
	r.active = name
	if model != "" {
		r.activeModel = model
	} else {
		r.activeModel = ""
	}
	return nil
}

// ActiveProvider implements domain.LLMClient.
func (r *Registry) ActiveProvider() (provider, model string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.activeModel
}

// AvailableModels returns the advertised model names per provider.
func (r *Registry) AvailableModels() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.models))
	for name, models := range r.models {
		out[name] = append([]string{}, models...)
	}
	return out
}

// Generate implements domain.LLMClient by running the request against
// the active provider. An empty req.Model falls back to the active
// model selection, then to the provider's own default.
func (r *Registry) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	r.mu.RLock()
	name := r.active
	model := r.activeModel
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.NewDomainError("Registry.Generate", domain.ErrProviderNotFound, "no active provider")
	}
	if req.Model == "" {
		req.Model = model
	}
	return p.Generate(ctx, req)
}

var _ domain.LLMClient = (*Registry)(nil)
