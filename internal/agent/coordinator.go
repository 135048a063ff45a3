package agent

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/capability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/plan"
)

// TextQuerier is the router surface the coordinator plans through.
type TextQuerier interface {
	Text(ctx context.Context, history []llm.ChatMessage, preferred string) (string, error)
}

// TurnRecorder receives per-turn telemetry.
type TurnRecorder interface {
	RecordTurn(outcome string, duration time.Duration)
	RecordDroppedSteps(count int)
}

// TurnResult is the outcome of one conversational turn.
type TurnResult struct {
	Plan    plan.Plan
	Spoken  string
	Errors  []string
	Dropped []string
}

// Coordinator owns the conversation history and drives one turn at a time:
// router query, parse, execute, history append. Turns serialize through the
// mutex; physical actuation order is safety-critical, so two instructions
// never interleave.
type Coordinator struct {
	router   TextQuerier
	registry *capability.Registry
	executor *capability.Executor
	cfg      config.AgentConfig
	logger   *zap.Logger

	Metrics TurnRecorder

	mu      sync.Mutex
	history []llm.ChatMessage
}

// NewCoordinator seeds the conversation with the system prompt.
func NewCoordinator(router TextQuerier, registry *capability.Registry, executor *capability.Executor, cfg config.AgentConfig, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		router:   router,
		registry: registry,
		executor: executor,
		cfg:      cfg,
		logger:   logger,
		history:  []llm.ChatMessage{{Role: llm.RoleSystem, Content: SystemPrompt()}},
	}
}

// Turn runs one instruction end to end. It never returns a user-visible
// failure: planning errors degrade to the sentinel plan and step failures
// degrade to apology fragments, so the session loop always has something to
// say.
func (c *Coordinator) Turn(ctx context.Context, instruction string) TurnResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	c.history = append(c.history, llm.ChatMessage{Role: llm.RoleUser, Content: instruction})

	// The engine only ever sees a snapshot; history stays append-only here.
	snapshot := append([]llm.ChatMessage(nil), c.history...)

	var p plan.Plan
	raw, err := c.router.Text(ctx, snapshot, "")
	if err != nil {
		c.logger.Warn("planning query failed, using sentinel plan", zap.Error(err))
		p = plan.Sentinel()
	} else {
		p = plan.Parse(raw, c.registry)
	}

	for _, note := range p.Dropped {
		c.logger.Warn("dropped invalid step", zap.String("step", note))
	}

	result := c.executor.Execute(ctx, p)

	c.history = append(c.history, llm.ChatMessage{Role: llm.RoleAssistant, Content: p.Encode()})
	c.trimHistory()

	outcome := "ok"
	if len(result.StepErrors) > 0 {
		outcome = "step_errors"
	}
	if p.IsSentinel() {
		outcome = "sentinel"
	}
	if c.Metrics != nil {
		c.Metrics.RecordTurn(outcome, time.Since(start))
		c.Metrics.RecordDroppedSteps(len(p.Dropped))
	}
	c.logger.Info("turn completed",
		zap.String("outcome", outcome),
		zap.Int("steps", len(p.Steps)),
		zap.Int("dropped", len(p.Dropped)),
		zap.Duration("duration", time.Since(start)))

	return TurnResult{
		Plan:    p,
		Spoken:  result.Spoken,
		Errors:  result.StepErrors,
		Dropped: p.Dropped,
	}
}

// History returns a copy of the conversation so far.
func (c *Coordinator) History() []llm.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.ChatMessage(nil), c.history...)
}

// trimHistory drops the oldest exchanges past the configured turn budget,
// always keeping the system prompt.
func (c *Coordinator) trimHistory() {
	if c.cfg.MaxHistory <= 0 {
		return
	}
	// One turn = user + assistant message.
	max := 1 + c.cfg.MaxHistory*2
	if len(c.history) <= max {
		return
	}
	trimmed := make([]llm.ChatMessage, 0, max)
	trimmed = append(trimmed, c.history[0])
	trimmed = append(trimmed, c.history[len(c.history)-(max-1):]...)
	c.history = trimmed
}
