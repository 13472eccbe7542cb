package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"meetingmind/internal/adapter/gateway"
	"meetingmind/internal/adapter/promptstore"
	"meetingmind/internal/adapter/transcribe"
	"meetingmind/internal/domain"
	"meetingmind/internal/infra/config"
	"meetingmind/internal/infra/logger"
	"meetingmind/internal/infra/tracer"
	"meetingmind/internal/usecase"
	"meetingmind/internal/usecase/eventbus"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`meetingmind - Real-time AI meeting assistant

USAGE:
    meetingmind [FLAGS]

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: MEETINGMIND_* variables override config

    Provider API keys come from the environment:
      GEMINI_API_KEY, ANTHROPIC_API_KEY

EXAMPLES:
    meetingmind                                # Run with config.yaml
    meetingmind --config /etc/meetingmind.yaml # Run with custom config
    MEETINGMIND_GATEWAY_ADDR=:9090 meetingmind # Override listen address`)
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. LLM providers
	registry, err := initLLM(cfg, log)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	// 4. Event bus
	bus := eventbus.New(log)
	defer bus.Close()

	// 5. Versioned prompt store
	if dir := filepath.Dir(cfg.Prompts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("prompt store dir: %w", err)
		}
	}
	prompts, err := promptstore.NewSQLitePromptStore(cfg.Prompts.Path)
	if err != nil {
		return fmt.Errorf("prompt store: %w", err)
	}
	defer prompts.Close()

	// 6. Agent roster, runner, control surface
	agents := usecase.NewAgentRegistry(usecase.BuiltinAgents())
	runner := usecase.NewRunner(registry, usecase.NewFormatter(log), log)
	control := gateway.NewControlHandler(agents, registry, runner, prompts, bus, log)

	// 7. Per-connection session pipeline. Chunks arriving on the socket
	// are already transcript text, so the passthrough recognizer feeds
	// them straight into the session.
	factory := func(ctx context.Context, broadcast domain.Broadcaster) (*usecase.Session, domain.Transcriber, error) {
		router := usecase.NewRouter(registry, agents, cfg.Router, nil, log)
		dispatcher := usecase.NewDispatcher(agents, runner, bus, log)
		session := usecase.NewSession(cfg.Session, cfg.Router, router, dispatcher, broadcast, bus, log)
		return session, transcribe.NewChannel(transcribe.Passthrough{}, log), nil
	}

	srv := gateway.NewServer(cfg.Gateway, factory, control, bus, log)

	// 8. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	activeProvider, activeModel := registry.ActiveProvider()
	log.Info("meetingmind starting",
		"provider", activeProvider,
		"model", activeModel,
		"agents", len(agents.Builtins()),
		"addr", cfg.Gateway.Addr,
		"auth", cfg.Gateway.AuthToken != "",
	)

	return srv.Start(ctx)
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("MEETINGMIND_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
