package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/siquick/web-agent/internal/agent"
	"github.com/siquick/web-agent/internal/config"
	"github.com/siquick/web-agent/internal/exa"
	"github.com/siquick/web-agent/internal/llm/openai"
	"github.com/siquick/web-agent/internal/logger"
	"github.com/siquick/web-agent/internal/mcp"
	"github.com/siquick/web-agent/internal/tool"
	"github.com/siquick/web-agent/internal/tool/builtin"
)

var (
	configPath string
	model      string
	maxTurns   int
	verbose    bool
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webagent",
		Short: "Web research agent",
		Long:  "A tool-calling research agent that answers questions with web-grounded evidence",
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the agent a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	askCmd.Flags().StringVar(&model, "model", "", "Model id to use (defaults to configured default)")
	askCmd.Flags().IntVar(&maxTurns, "max-turns", 0, "Maximum conversation turns")
	askCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	askCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		RunE:  runModels,
	}
	modelsCmd.Flags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; credentials may come from the environment.
	_ = godotenv.Load()

	question := args[0]

	logLevel := logger.LevelInfo
	if verbose {
		logLevel = logger.LevelDebug
	}
	log := logger.NewLogger(os.Stdout, logLevel)
	if noColor {
		log.SetColorMode(false)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Debug("Creating gateway (default model: %s)", cfg.DefaultModelID())
	gateway := openai.NewGateway(cfg, log)

	registry := tool.NewRegistry()
	if err := registerBuiltins(registry); err != nil {
		return err
	}
	log.Debug("Registered %d built-in tools", len(registry.List()))

	if len(cfg.MCP.Servers) > 0 {
		manager := mcp.NewManager(registry)
		if err := manager.Initialize(cmd.Context(), cfg.MCP); err != nil {
			log.Warn("MCP initialization incomplete: %v", err)
		}
		defer manager.Close()
		log.Info("Connected to %d MCP server(s)", manager.ServerCount())
	}

	ag := agent.New(cfg, gateway, registry, log, &agent.Config{
		Model:    model,
		MaxTurns: maxTurns,
	})

	_, err = ag.Run(cmd.Context(), question, nil, model, streamSink())
	if err != nil {
		log.Error("Run failed: %v", err)
		return err
	}
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, m := range cfg.Models {
		marker := " "
		if m.ID == cfg.DefaultModelID() {
			marker = "*"
		}
		provider := m.ProviderID
		if p, err := cfg.Provider(m.ProviderID); err == nil && p.Label != "" {
			provider = p.Label
		}
		fmt.Printf("%s %-35s %s (%s)\n", marker, m.ID, m.ResolvedDisplayName(), provider)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadWithDefaults()
}

func registerBuiltins(registry *tool.Registry) error {
	client := exa.NewClient(os.Getenv("EXA_API_KEY"))
	tools := []tool.Tool{
		builtin.NewWebSearchTool(client),
		builtin.NewURLContentTool(client),
		builtin.NewCurrentTimeTool(),
		builtin.NewEchoTool(),
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// streamSink prints answer fragments as they arrive so the final answer
// appears incrementally on stdout even when the logger level hides it.
func streamSink() agent.Sink {
	streaming := false
	return func(event agent.Event) {
		switch event.Type {
		case agent.EventAnswerStream:
			streaming = true
			fmt.Print(event.Content)
		case agent.EventAnswerFinal:
			if streaming {
				fmt.Println()
			}
		}
	}
}
