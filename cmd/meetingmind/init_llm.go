package main

import (
	"fmt"
	"log/slog"

	"meetingmind/internal/adapter/llm"
	"meetingmind/internal/domain"
	"meetingmind/internal/infra/config"
)

// initLLM builds the provider registry from config: one provider per
// entry, each optionally wrapped in a circuit breaker, with the
// configured default selected as the active provider.
func initLLM(cfg *config.Config, log *slog.Logger) (*llm.Registry, error) {
	registry := llm.NewRegistry()

	cbCfg := cfg.LLM.CircuitBreaker
	for _, pc := range cfg.LLM.Providers {
		provider, err := createLLMProvider(pc, log)
		if err != nil {
			return nil, fmt.Errorf("llm provider %s: %w", pc.Name, err)
		}

		if cbCfg.Enabled {
			provider = llm.NewCircuitBreakerProvider(provider, cbCfg, log)
		}

		if err := registry.Register(provider, pc.Model, pc.Model); err != nil {
			return nil, fmt.Errorf("llm provider %s: %w", pc.Name, err)
		}
	}

	if cbCfg.Enabled {
		log.Info("llm circuit breaker enabled",
			"max_failures", cbCfg.MaxFailures,
			"timeout", cbCfg.Timeout,
			"interval", cbCfg.Interval,
		)
	}

	if cfg.LLM.DefaultProvider != "" {
		model := ""
		for _, pc := range cfg.LLM.Providers {
			if pc.Name == cfg.LLM.DefaultProvider {
				model = pc.Model
				break
			}
		}
		if err := registry.SetActive(cfg.LLM.DefaultProvider, model); err != nil {
			return nil, fmt.Errorf("default llm provider: %w", err)
		}
	}

	return registry, nil
}

// createLLMProvider creates an LLM provider based on the type field.
func createLLMProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	switch pc.Type {
	case "gemini":
		return llm.NewGeminiProvider(pc, log), nil
	case "claude":
		return llm.NewAnthropicProvider(pc, log), nil
	case "bedrock":
		return llm.NewBedrockProvider(pc, log)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", pc.Type)
	}
}
