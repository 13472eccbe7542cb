package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"meetingmind/internal/domain"
	"meetingmind/internal/usecase"
)

// errNoPromptStore answers version operations when the store was not
// configured at startup.
var errNoPromptStore = domain.NewDomainError("gateway.PromptVersions", domain.ErrInvalidInput, "prompt store not configured")

// ModelRegistry is the slice of the provider registry the control
// channel needs: listing models and switching the active selection.
type ModelRegistry interface {
	SetActive(name, model string) error
	ActiveProvider() (provider, model string)
	AvailableModels() map[string][]string
}

// AgentRunner executes one agent against a piece of text. Satisfied by
// *usecase.Runner; used by use_agent_version to try the activated
// prompt immediately.
type AgentRunner interface {
	Run(ctx context.Context, spec domain.AgentSpec, input string, broadcast domain.Broadcaster) domain.RunOutcome
}

// ControlHandler executes control operations received as text frames.
// Every operation produces exactly one reply message for the issuing
// connection; registry and model changes are process-wide.
type ControlHandler struct {
	agents  *usecase.AgentRegistry
	models  ModelRegistry
	runner  AgentRunner
	prompts domain.PromptStore
	bus     domain.EventBus
	logger  *slog.Logger
}

// NewControlHandler creates a control handler. runner, prompts and bus
// may be nil; the version operations then answer with an error and
// use_agent_version only switches the prompt.
func NewControlHandler(agents *usecase.AgentRegistry, models ModelRegistry, runner AgentRunner, prompts domain.PromptStore, bus domain.EventBus, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{
		agents:  agents,
		models:  models,
		runner:  runner,
		prompts: prompts,
		bus:     bus,
		logger:  logger,
	}
}

// Handle parses one text frame and runs the requested operation.
func (h *ControlHandler) Handle(ctx context.Context, raw []byte) domain.InsightMessage {
	var msg ControlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errorReply(fmt.Errorf("%w: malformed control message", domain.ErrInvalidInput))
	}

	h.logger.Debug("control message", "type", msg.Type)

	switch msg.Type {
	case ControlCreateAgent:
		return h.createAgent(ctx, msg)
	case ControlUpdateAgent:
		return h.updateAgent(ctx, msg)
	case ControlDeleteAgent:
		return h.deleteAgent(ctx, msg)
	case ControlGetAvailableModels:
		return h.getAvailableModels(msg)
	case ControlSetModel:
		return h.setModel(ctx, msg)
	case ControlGetAgentPrompt:
		return h.getAgentPrompt(msg)
	case ControlGetAgentVersions:
		return h.getAgentVersions(ctx, msg)
	case ControlCreateAgentVersion:
		return h.createAgentVersion(ctx, msg)
	case ControlDeleteAgentVersion:
		return h.deleteAgentVersion(ctx, msg)
	case ControlUseAgentVersion:
		return h.useAgentVersion(ctx, msg)
	default:
		return errorReply(fmt.Errorf("%w: unknown control type %q", domain.ErrInvalidInput, msg.Type))
	}
}

func (h *ControlHandler) createAgent(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	cfg := customConfig(msg)
	if err := h.agents.CreateCustom(cfg); err != nil {
		return errorReply(err)
	}
	h.publish(ctx, domain.EventAgentCreated, map[string]string{"agent": cfg.Name})
	return systemReply(fmt.Sprintf("Agent %q created.", cfg.Name))
}

func (h *ControlHandler) updateAgent(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	cfg := customConfig(msg)
	oldName := msg.OldName
	if oldName == "" {
		oldName = msg.AgentName
	}
	if oldName == "" {
		oldName = cfg.Name
	}
	if cfg.Name == "" {
		cfg.Name = oldName
	}
	if err := h.agents.UpdateCustom(oldName, cfg); err != nil {
		return errorReply(err)
	}
	h.publish(ctx, domain.EventAgentUpdated, map[string]string{"agent": cfg.Name})
	return systemReply(fmt.Sprintf("Agent %q updated.", cfg.Name))
}

func (h *ControlHandler) deleteAgent(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	if err := h.agents.DeleteCustom(msg.AgentName); err != nil {
		return errorReply(err)
	}
	h.publish(ctx, domain.EventAgentDeleted, map[string]string{"agent": msg.AgentName})
	return systemReply(fmt.Sprintf("Agent %q deleted.", msg.AgentName))
}

// modelCatalog is the get_available_models payload.
type modelCatalog struct {
	Models         map[string][]string `json:"models"`
	ActiveProvider string              `json:"active_provider"`
	ActiveModel    string              `json:"active_model"`
}

func (h *ControlHandler) getAvailableModels(ControlMessage) domain.InsightMessage {
	provider, model := h.models.ActiveProvider()
	return domain.InsightMessage{
		Type: domain.MessageSystem,
		Payload: modelCatalog{
			Models:         h.models.AvailableModels(),
			ActiveProvider: provider,
			ActiveModel:    model,
		},
	}
}

func (h *ControlHandler) setModel(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	if err := h.models.SetActive(msg.Provider, msg.Model); err != nil {
		return errorReply(err)
	}
	h.publish(ctx, domain.EventProviderSwitched, map[string]string{
		"provider": msg.Provider,
		"model":    msg.Model,
	})
	return systemReply(fmt.Sprintf("Switched to %s/%s.", msg.Provider, msg.Model))
}

func (h *ControlHandler) getAgentPrompt(msg ControlMessage) domain.InsightMessage {
	spec, ok := h.agents.Lookup(msg.AgentName)
	if !ok {
		return errorReply(domain.NewDomainError("gateway.GetAgentPrompt", domain.ErrAgentNotFound, msg.AgentName))
	}
	return domain.InsightMessage{
		Type:    domain.MessageAgentPrompt,
		Agent:   spec.Name,
		Content: spec.Template,
	}
}

func (h *ControlHandler) getAgentVersions(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	if h.prompts == nil {
		return errorReply(errNoPromptStore)
	}
	versions, err := h.prompts.List(ctx, msg.AgentName)
	if err != nil {
		return errorReply(err)
	}
	return domain.InsightMessage{
		Type:    domain.MessageAgentVersions,
		Agent:   msg.AgentName,
		Payload: versions,
	}
}

func (h *ControlHandler) createAgentVersion(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	if h.prompts == nil {
		return errorReply(errNoPromptStore)
	}

	text := msg.PromptText
	if text == "" {
		// Snapshot the agent's current prompt.
		spec, ok := h.agents.Lookup(msg.AgentName)
		if !ok {
			return errorReply(domain.NewDomainError("gateway.CreateAgentVersion", domain.ErrAgentNotFound, msg.AgentName))
		}
		text = spec.Template
	}

	err := h.prompts.Create(ctx, domain.PromptVersion{
		AgentName:   msg.AgentName,
		VersionName: msg.VersionName,
		PromptText:  text,
		Timestamp:   time.Now().UnixMilli(),
		Description: msg.Description,
	})
	if err != nil {
		return errorReply(err)
	}
	return systemReply(fmt.Sprintf("Version %q saved for agent %q.", msg.VersionName, msg.AgentName))
}

func (h *ControlHandler) deleteAgentVersion(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	if h.prompts == nil {
		return errorReply(errNoPromptStore)
	}
	if err := h.prompts.Delete(ctx, msg.AgentName, msg.VersionName); err != nil {
		return errorReply(err)
	}
	return systemReply(fmt.Sprintf("Version %q deleted for agent %q.", msg.VersionName, msg.AgentName))
}

func (h *ControlHandler) useAgentVersion(ctx context.Context, msg ControlMessage) domain.InsightMessage {
	if h.prompts == nil {
		return errorReply(errNoPromptStore)
	}

	var (
		version *domain.PromptVersion
		err     error
	)
	if msg.VersionName == "" {
		// No version named: roll forward to the newest one.
		version, err = h.prompts.Latest(ctx, msg.AgentName)
	} else {
		version, err = h.prompts.Get(ctx, msg.AgentName, msg.VersionName)
	}
	if err != nil {
		return errorReply(err)
	}
	if err := h.agents.SetTemplate(msg.AgentName, version.PromptText); err != nil {
		return errorReply(err)
	}
	h.publish(ctx, domain.EventAgentUpdated, map[string]string{
		"agent":   msg.AgentName,
		"version": version.VersionName,
	})

	// When the client sent a transcript excerpt, try the activated
	// prompt against it right away and answer with the result.
	if msg.Text != "" && h.runner != nil {
		if spec, ok := h.agents.Lookup(msg.AgentName); ok {
			var produced *domain.InsightMessage
			capture := func(_ context.Context, m domain.InsightMessage) error {
				produced = &m
				return nil
			}
			h.runner.Run(ctx, spec, msg.Text, capture)
			if produced != nil {
				return *produced
			}
		}
	}
	return systemReply(fmt.Sprintf("Agent %q now using version %q.", msg.AgentName, version.VersionName))
}

func (h *ControlHandler) publish(ctx context.Context, eventType domain.EventType, fields map[string]string) {
	if h.bus == nil {
		return
	}
	payload, _ := json.Marshal(fields)
	h.bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func customConfig(msg ControlMessage) domain.CustomAgentConfig {
	if c := msg.Config; c != nil {
		return domain.CustomAgentConfig{
			Name:            c.Name,
			Goal:            c.Goal,
			PromptTemplate:  c.Prompt,
			TriggerWords:    c.Triggers,
			ModelPreference: c.Model,
		}
	}
	return domain.CustomAgentConfig{
		Name:            msg.Name,
		Goal:            msg.Goal,
		PromptTemplate:  msg.Prompt,
		TriggerWords:    msg.TriggerWords,
		ModelPreference: msg.ModelPreference,
	}
}

func systemReply(text string) domain.InsightMessage {
	return domain.InsightMessage{Type: domain.MessageSystem, Message: text}
}

func errorReply(err error) domain.InsightMessage {
	return domain.InsightMessage{
		Type:    domain.MessageError,
		Message: err.Error(),
		Payload: map[string]string{"code": string(domain.ErrorCodeOf(err))},
	}
}
