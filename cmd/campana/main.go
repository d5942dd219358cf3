// Command campana runs the multi-agent message generation pipeline.
//
// Usage:
//
//	campana run --scenario insurance_renewal --input '{"audience": "policy holders"}'
//	campana serve --config config.yaml
//	campana scenarios
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/campana-ai/campana/agent"
	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/config"
	"github.com/campana-ai/campana/llms"
	"github.com/campana-ai/campana/logger"
	"github.com/campana-ai/campana/server"
	"github.com/campana-ai/campana/workflow"
)

// CLI defines the command-line interface.
type CLI struct {
	Version   VersionCmd   `cmd:"" help:"Show version information."`
	Run       RunCmd       `cmd:"" help:"Execute a workflow once and print the result."`
	Serve     ServeCmd     `cmd:"" help:"Start the HTTP API server."`
	Scenarios ScenariosCmd `cmd:"" help:"List the available scenarios."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:""`
	LogFormat string `help:"Log format (text, json)." default:""`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("campana version %s\n", version)
	return nil
}

// RunCmd executes one workflow and prints the full result as JSON.
type RunCmd struct {
	Scenario string        `required:"" help:"Scenario key (e.g. insurance_renewal)."`
	Input    string        `help:"Workflow input as a JSON object." default:"{}"`
	Sequence []string      `help:"Agent sequence override (comma-separated)." sep:","`
	Timeout  time.Duration `help:"Overall workflow timeout." default:"5m"`
}

func (c *RunCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(c.Input), &input); err != nil {
		return fmt.Errorf("invalid --input JSON: %w", err)
	}

	engine, _, provider, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	result := engine.Execute(ctx, c.Scenario, input, c.Sequence)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Host string `help:"Host to bind (overrides config)."`
	Port int    `help:"Port to listen on (overrides config)." default:"0"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	engine, audits, provider, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	srv := server.New(cfg.Server, engine, audits)

	// Shut down gracefully on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	}()

	fmt.Printf("campana server listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Workflows:  POST /api/v1/workflows\n")
	fmt.Printf("  Scenarios:  GET  /api/v1/scenarios\n")
	fmt.Printf("  Analytics:  GET  /api/v1/analytics/{scenario}\n")
	fmt.Printf("  Reports:    GET  /api/v1/reports/{scenario}\n")
	fmt.Printf("  Health:     GET  /healthz\n")
	fmt.Printf("  Metrics:    GET  /metrics\n")

	return srv.Start()
}

// ScenariosCmd lists the scenario catalog.
type ScenariosCmd struct{}

func (c *ScenariosCmd) Run(cli *CLI) error {
	for _, key := range config.ScenarioNames() {
		profile, _ := config.ScenarioFor(key)
		fmt.Printf("%-22s %s\n", key, profile.Name)
		if profile.Description != "" {
			fmt.Printf("%-22s   %s\n", "", profile.Description)
		}
	}
	return nil
}

// buildPipeline assembles the execution stack: the configured provider is
// created through the provider registry, wrapped in a gateway, and handed to
// a workflow engine over the default agent set.
func buildPipeline(cfg *config.Config) (*workflow.Engine, *audit.Store, llms.Provider, error) {
	providers := llms.NewProviderRegistry()
	provider, err := providers.CreateProvider(cfg.LLM.Type, &cfg.LLM)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	gateway := llms.NewGateway(provider)
	audits := audit.NewStore()
	engine := workflow.NewEngine(agent.NewDefaultRegistry(gateway, audits))
	return engine, audits, provider, nil
}

func loadConfig(cli *CLI) (*config.Config, error) {
	var cfg *config.Config
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Logging.Format = cli.LogFormat
	}
	logger.Init(logger.ParseLevel(cfg.Logging.Level), os.Stderr, cfg.Logging.Format)

	return cfg, nil
}

func main() {
	config.LoadEnvFile()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("campana"),
		kong.Description("Multi-agent marketing message pipeline"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
