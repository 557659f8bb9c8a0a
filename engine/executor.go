package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/crewflow/internal/metrics"
	"github.com/BaSui01/crewflow/llm"
	"github.com/BaSui01/crewflow/sandbox"
	"github.com/BaSui01/crewflow/types"
	"github.com/BaSui01/crewflow/workflow"
)

// Credential supplies the per-provider secrets and endpoints the engine
// injects into agent configurations at execution time. Agents never carry
// credentials themselves.
type Credential struct {
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// Options configures an Executor.
type Options struct {
	// MaxDuration bounds one whole execution. Zero means unbounded.
	MaxDuration time.Duration
	// Credentials maps provider type to the credential injected into every
	// agent bound to that provider.
	Credentials map[types.ProviderType]Credential
	// Sandbox, when set, wraps each agent step in the isolation strategy.
	Sandbox sandbox.Strategy
	// SandboxTimeout bounds each sandboxed step. Zero means the sandbox
	// default timeout.
	SandboxTimeout time.Duration
	// Metrics, when set, receives execution and step instrumentation.
	Metrics *metrics.Collector
}

// Executor runs workflows. It is safe for concurrent use; every
// ExecuteWorkflow call is an independent execution with its own id.
type Executor struct {
	gateway  llm.Gateway
	planner  *workflow.Planner
	logs     *LogStore
	registry *Registry
	opts     Options
	logger   *zap.Logger
}

// NewExecutor creates an executor over the given gateway. A nil logger is
// replaced with a no-op logger.
func NewExecutor(gateway llm.Gateway, logs *LogStore, registry *Registry, opts Options, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if logs == nil {
		logs = NewLogStore()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Executor{
		gateway:  gateway,
		planner:  workflow.NewPlanner(logger),
		logs:     logs,
		registry: registry,
		opts:     opts,
		logger:   logger.With(zap.String("component", "executor")),
	}
}

// Logs exposes the executor's audit trail.
func (e *Executor) Logs() *LogStore { return e.logs }

// Registry exposes the executor's live execution registry.
func (e *Executor) Registry() *Registry { return e.registry }

// ExecuteWorkflow runs one workflow to completion. Agents referenced by the
// plan are looked up in agents; steps whose agent is absent are skipped.
// Provider faults do not abort the run: their error text flows down the
// chain like any other output. The returned error is non-nil only when the
// graph cannot be planned; every other failure is reported through the
// result's status and error text.
func (e *Executor) ExecuteWorkflow(ctx context.Context, wf *types.Workflow, agents map[string]*types.Agent, initialInput string) (result *types.ExecutionResult, err error) {
	executionID := uuid.NewString()
	start := time.Now()
	e.registry.Begin(executionID, wf.ID)

	defer func() {
		if r := recover(); r != nil {
			e.registry.Fail(executionID)
			msg := fmt.Sprintf("Workflow execution failed: %v", r)
			e.logs.Append(wf.ID, "", types.LogError, msg, nil)
			e.logger.Error("execution panicked",
				zap.String("execution_id", executionID),
				zap.String("workflow_id", wf.ID),
				zap.Any("panic", r),
			)
			e.recordExecution(string(types.ExecutionError), time.Since(start))
			result = &types.ExecutionResult{
				ExecutionID: executionID,
				Status:      types.ExecutionError,
				Duration:    time.Since(start),
				Error:       msg,
			}
			err = nil
		}
	}()

	if e.opts.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.MaxDuration)
		defer cancel()
	}

	e.logs.Append(wf.ID, "", types.LogInfo, fmt.Sprintf("Starting workflow execution: %s", wf.Name), nil)
	e.logger.Info("starting workflow execution",
		zap.String("execution_id", executionID),
		zap.String("workflow_id", wf.ID),
		zap.String("workflow_name", wf.Name),
	)

	plan, planErr := e.planner.Plan(wf)
	if planErr != nil {
		e.registry.Fail(executionID)
		msg := fmt.Sprintf("Workflow execution failed: %v", planErr)
		e.logs.Append(wf.ID, "", types.LogError, msg, nil)
		e.recordExecution(string(types.ExecutionError), time.Since(start))
		return &types.ExecutionResult{
			ExecutionID: executionID,
			Status:      types.ExecutionError,
			Duration:    time.Since(start),
			Error:       msg,
		}, planErr
	}

	nodeConfigs := make(map[string]map[string]any, len(wf.Nodes))
	for _, n := range wf.Nodes {
		nodeConfigs[n.ID] = n.Data.Config
	}

	results := make(map[string]string)
	currentInput := initialInput

	for _, stage := range plan.Stages {
		if abortErr := ctx.Err(); abortErr != nil {
			return e.failAborted(executionID, wf, start, abortErr), nil
		}

		outputs, stageErr := e.runStage(ctx, wf, stage, agents, nodeConfigs, currentInput, results)
		if stageErr != nil {
			return e.failAborted(executionID, wf, start, stageErr), nil
		}
		if len(outputs) > 0 {
			currentInput = strings.Join(outputs, "\n\n")
		}
	}

	duration := time.Since(start)
	e.registry.Complete(executionID)
	e.logs.Append(wf.ID, "", types.LogInfo,
		fmt.Sprintf("Workflow execution completed in %.2f seconds", duration.Seconds()), nil)
	e.logger.Info("workflow execution completed",
		zap.String("execution_id", executionID),
		zap.String("workflow_id", wf.ID),
		zap.Duration("duration", duration),
		zap.Int("agents_executed", len(results)),
	)
	e.recordExecution(string(types.ExecutionCompleted), duration)

	return &types.ExecutionResult{
		ExecutionID: executionID,
		Status:      types.ExecutionCompleted,
		Results:     results,
		Duration:    duration,
		FinalOutput: currentInput,
	}, nil
}

// runStage executes one stage. Steps within a stage share the same input and
// run concurrently; outputs come back in step order. results is only written
// from this goroutine after the group finishes.
func (e *Executor) runStage(ctx context.Context, wf *types.Workflow, stage []workflow.Step, agents map[string]*types.Agent, nodeConfigs map[string]map[string]any, input string, results map[string]string) ([]string, error) {
	type stepOutput struct {
		agentID string
		text    string
		ran     bool
	}
	outputs := make([]stepOutput, len(stage))

	g, gctx := errgroup.WithContext(ctx)
	for i, step := range stage {
		agent, ok := agents[step.AgentID]
		if !ok {
			e.logger.Debug("skipping step with unknown agent",
				zap.String("workflow_id", wf.ID),
				zap.String("node_id", step.NodeID),
				zap.String("agent_id", step.AgentID),
			)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text := e.runAgent(gctx, wf, agent, input, nodeConfigs[step.NodeID])
			outputs[i] = stepOutput{agentID: agent.ID, text: text, ran: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var texts []string
	for _, o := range outputs {
		if !o.ran {
			continue
		}
		results[o.agentID] = o.text
		texts = append(texts, o.text)
	}
	return texts, nil
}

// runAgent performs one agent step and returns its chainable output. A
// provider fault's error text is the output.
func (e *Executor) runAgent(ctx context.Context, wf *types.Workflow, agent *types.Agent, input string, nodeConfig map[string]any) string {
	e.logs.Append(wf.ID, agent.ID, types.LogInfo, fmt.Sprintf("Executing agent: %s", agent.Name), nil)
	e.logger.Info("executing agent",
		zap.String("workflow_id", wf.ID),
		zap.String("agent_id", agent.ID),
		zap.String("agent_name", agent.Name),
		zap.String("provider", string(agent.LLMProvider)),
	)

	cfg := agent.LLMConfig()
	if cred, ok := e.opts.Credentials[cfg.Provider]; ok {
		if cfg.APIKey == "" {
			cfg.APIKey = cred.APIKey
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = cred.BaseURL
		}
	}

	req := &llm.GenerateRequest{
		Prompt:       input,
		SystemPrompt: agent.SystemPrompt,
	}

	var res *llm.GenerateResult
	if e.opts.Sandbox != nil {
		// The result travels over a buffered channel so an abandoned task
		// goroutine cannot touch memory the executor is reading.
		resCh := make(chan *llm.GenerateResult, 1)
		sres := e.opts.Sandbox.Execute(ctx, &sandbox.Task{
			AgentID: agent.ID,
			Payload: fmt.Sprintf("Generation task for agent %s", agent.Name),
			Context: nodeConfig,
			Timeout: e.opts.SandboxTimeout,
			Run: func(taskCtx context.Context) (string, error) {
				r := e.gateway.Generate(taskCtx, cfg, req)
				resCh <- r
				return r.Text, nil
			},
		})
		e.recordSandboxTask(string(sres.SandboxType), string(sres.Status), sres.Duration)
		select {
		case res = <-resCh:
		default:
		}
		if res == nil {
			// The sandbox cut the task off before the gateway returned.
			res = llm.Faulted(string(cfg.Provider), sres.Output,
				types.NewError(types.ErrExecutionTimeout, sres.Output).WithProvider(string(cfg.Provider)))
		}
	} else {
		res = e.gateway.Generate(ctx, cfg, req)
	}

	if res.OK() {
		e.logs.Append(wf.ID, agent.ID, types.LogInfo,
			fmt.Sprintf("Agent completed: %d chars generated", len(res.Text)), nil)
		e.recordAgentStep(string(cfg.Provider), "success")
	} else {
		e.logs.Append(wf.ID, agent.ID, types.LogError,
			fmt.Sprintf("Agent failed: %s", res.Text),
			map[string]any{"code": string(res.Fault.Code)})
		e.logger.Warn("agent step faulted",
			zap.String("workflow_id", wf.ID),
			zap.String("agent_id", agent.ID),
			zap.String("code", string(res.Fault.Code)),
		)
		e.recordAgentStep(string(cfg.Provider), "fault")
	}
	e.recordLLMRequest(string(cfg.Provider), cfg.ModelName, res)

	return res.Text
}

// failAborted finalizes an execution cut short by its context. Caller
// cancellation and the MaxDuration deadline are reported distinctly.
func (e *Executor) failAborted(executionID string, wf *types.Workflow, start time.Time, cause error) *types.ExecutionResult {
	e.registry.Fail(executionID)
	msg := "Workflow execution failed: execution timeout exceeded"
	if errors.Is(cause, context.Canceled) {
		msg = "Workflow execution failed: execution cancelled"
	}
	e.logs.Append(wf.ID, "", types.LogError, msg, nil)
	e.logger.Error("execution aborted",
		zap.String("execution_id", executionID),
		zap.String("workflow_id", wf.ID),
		zap.Duration("max_duration", e.opts.MaxDuration),
		zap.Error(cause),
	)
	e.recordExecution(string(types.ExecutionError), time.Since(start))
	return &types.ExecutionResult{
		ExecutionID: executionID,
		Status:      types.ExecutionError,
		Duration:    time.Since(start),
		Error:       msg,
	}
}

func (e *Executor) recordExecution(status string, duration time.Duration) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordExecution(status, duration)
	}
}

func (e *Executor) recordAgentStep(provider, status string) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordAgentStep(provider, status)
	}
}

func (e *Executor) recordSandboxTask(sandboxType, status string, duration time.Duration) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordSandboxTask(sandboxType, status, duration)
	}
}

func (e *Executor) recordLLMRequest(provider, model string, res *llm.GenerateResult) {
	if e.opts.Metrics == nil {
		return
	}
	status := "success"
	if !res.OK() {
		status = "fault"
	}
	e.opts.Metrics.RecordLLMRequest(provider, model, status, res.Latency)
}
