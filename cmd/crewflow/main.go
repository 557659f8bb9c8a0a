package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/crewflow/config"
	"github.com/BaSui01/crewflow/engine"
	"github.com/BaSui01/crewflow/providers"
	"github.com/BaSui01/crewflow/sandbox"
	"github.com/BaSui01/crewflow/types"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runWorkflow(os.Args[2:])
	case "version":
		fmt.Printf("crewflow %s (built %s)\n", Version, BuildTime)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`crewflow - agent workflow runner

Commands:
  run      Execute a workflow
  version  Show version information
  help     Show this help

Run flags:
  --config    Path to config file (optional)
  --workflow  Path to workflow YAML (required)
  --agents    Path to agents YAML (required)
  --input     Initial input text
  --sandbox   Sandbox type override: none, process, docker
  --show-logs Print the execution audit trail`)
}

func runWorkflow(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	workflowPath := fs.String("workflow", "", "Path to workflow YAML")
	agentsPath := fs.String("agents", "", "Path to agents YAML")
	input := fs.String("input", "", "Initial input text")
	sandboxType := fs.String("sandbox", "", "Sandbox type override: none, process, docker")
	showLogs := fs.Bool("show-logs", false, "Print the execution audit trail")
	fs.Parse(args)

	if *workflowPath == "" || *agentsPath == "" {
		fmt.Fprintln(os.Stderr, "run requires --workflow and --agents")
		fs.Usage()
		os.Exit(1)
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *sandboxType != "" {
		cfg.Sandbox.Type = *sandboxType
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	wf, err := loadWorkflow(*workflowPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load workflow: %v\n", err)
		os.Exit(1)
	}
	agents, err := loadAgents(*agentsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load agents: %v\n", err)
		os.Exit(1)
	}

	exec, err := buildExecutor(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build executor: %v\n", err)
		os.Exit(1)
	}

	result, err := exec.ExecuteWorkflow(context.Background(), wf, agents, *input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Execution failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
	if *showLogs {
		printLogs(exec.Logs().Logs(wf.ID))
	}
	if result.Status != types.ExecutionCompleted {
		os.Exit(1)
	}
}

func buildExecutor(cfg *config.Config, logger *zap.Logger) (*engine.Executor, error) {
	gateway := providers.NewGateway(providers.Options{
		Timeout:   cfg.Gateway.Timeout,
		RateLimit: cfg.Gateway.RateLimit,
		Burst:     cfg.Gateway.Burst,
	}, logger)

	var strategy sandbox.Strategy
	if cfg.Sandbox.Type != "" && cfg.Sandbox.Type != string(sandbox.TypeNone) {
		var err error
		strategy, err = sandbox.New(sandbox.Type(cfg.Sandbox.Type), cfg.Sandbox.Limits(), logger)
		if err != nil {
			return nil, err
		}
	}

	credentials := make(map[types.ProviderType]engine.Credential)
	for provider, cred := range config.GrantCredentialAccess(cfg).Credentials() {
		credentials[provider] = engine.Credential{APIKey: cred.APIKey, BaseURL: cred.BaseURL}
	}

	var logs *engine.LogStore
	if cfg.Log.MaxEntries > 0 {
		logs = engine.NewBoundedLogStore(cfg.Log.MaxEntries)
	} else {
		logs = engine.NewLogStore()
	}

	return engine.NewExecutor(gateway, logs, engine.NewRegistry(), engine.Options{
		MaxDuration:    cfg.Engine.MaxDuration,
		Credentials:    credentials,
		Sandbox:        strategy,
		SandboxTimeout: cfg.Sandbox.Timeout,
	}, logger), nil
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func loadWorkflow(path string) (*types.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wf types.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	return &wf, nil
}

func loadAgents(path string) (map[string]*types.Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []*types.Agent
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse agents: %w", err)
	}
	agents := make(map[string]*types.Agent, len(list))
	for _, a := range list {
		agents[a.ID] = a
	}
	return agents, nil
}

func printResult(result *types.ExecutionResult) {
	fmt.Printf("Execution:  %s\n", result.ExecutionID)
	fmt.Printf("Status:     %s\n", result.Status)
	fmt.Printf("Duration:   %s\n", result.Duration)
	if result.Error != "" {
		fmt.Printf("Error:      %s\n", result.Error)
		return
	}
	for agentID, output := range result.Results {
		fmt.Printf("\n--- %s ---\n%s\n", agentID, output)
	}
	fmt.Printf("\n=== Final output ===\n%s\n", result.FinalOutput)
}

func printLogs(logs []types.ExecutionLog) {
	fmt.Println("\n=== Execution log ===")
	for _, entry := range logs {
		fmt.Printf("%s [%s] %s\n", entry.Timestamp.Format("15:04:05.000"), entry.Level, entry.Message)
	}
}
