package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/plan"
)

// Speaker is the speech-output boundary the executor pushes the composed
// response to.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// StepRecorder receives per-step telemetry.
type StepRecorder interface {
	RecordStep(capability, outcome string, duration time.Duration)
}

// Result is the outcome of executing one plan.
type Result struct {
	// Spoken is the composed response: the plan's response plus any step
	// outputs, joined in order.
	Spoken string
	// StepErrors lists failed steps for telemetry; the user only hears the
	// apology fragments already folded into Spoken.
	StepErrors []string
}

// Executor runs validated plans against the capability registry.
type Executor struct {
	reg     *Registry
	speaker Speaker
	logger  *zap.Logger

	Metrics StepRecorder
}

// NewExecutor builds an executor over a registry and a speech sink.
func NewExecutor(reg *Registry, speaker Speaker, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{reg: reg, speaker: speaker, logger: logger}
}

// Execute runs the plan's steps strictly in order. A step's failure (error
// or panic) is caught at the step boundary, turned into an apology
// fragment, and does not abort the remaining steps. A started step always
// runs to completion; cancellation is only observed between steps.
func (e *Executor) Execute(ctx context.Context, p plan.Plan) Result {
	parts := []string{p.Response}
	res := Result{}

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			e.logger.Info("turn abandoned between steps", zap.String("next", step.Name))
			res.Spoken = joinSpoken(parts)
			return res
		}

		output, err := e.runStep(ctx, step)
		if err != nil {
			res.StepErrors = append(res.StepErrors, fmt.Sprintf("%s: %v", step.Name, err))
			parts = append(parts, fmt.Sprintf("I was unable to complete %s", step.Name))
			continue
		}
		if output != "" {
			parts = append(parts, output)
		}
	}

	res.Spoken = joinSpoken(parts)
	if e.speaker != nil {
		if err := e.speaker.Speak(ctx, res.Spoken); err != nil {
			e.logger.Warn("speech output failed", zap.Error(err))
		}
	}
	return res
}

// joinSpoken composes the response fragments into one utterance. Fragments
// already ending in sentence punctuation get a plain space; bare fragments
// get a period first.
func joinSpoken(parts []string) string {
	var b strings.Builder
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			switch prev := b.String(); prev[len(prev)-1] {
			case '.', '!', '?':
				b.WriteString(" ")
			default:
				b.WriteString(". ")
			}
		}
		b.WriteString(part)
	}
	return b.String()
}

func (e *Executor) runStep(ctx context.Context, step plan.Call) (output string, err error) {
	spec, ok := e.reg.Lookup(step.Name)
	if !ok {
		// Parser validation should make this unreachable; kept as a second
		// gate on the closed-registry invariant.
		return "", fmt.Errorf("%w: %q", ErrUnknownCapability, step.Name)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
			e.logger.Warn("step failed",
				zap.String("capability", step.Name),
				zap.Error(err))
		} else {
			e.logger.Debug("step completed",
				zap.String("capability", step.Name),
				zap.Duration("duration", time.Since(start)))
		}
		if e.Metrics != nil {
			e.Metrics.RecordStep(step.Name, outcome, time.Since(start))
		}
	}()

	return spec.Handler(ctx, step.Args)
}
