package agent_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/agent"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/capability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/plan"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/robot"
)

type scriptedRouter struct {
	replies []string
	err     error
	queries [][]llm.ChatMessage
}

func (r *scriptedRouter) Text(ctx context.Context, history []llm.ChatMessage, preferred string) (string, error) {
	r.queries = append(r.queries, append([]llm.ChatMessage(nil), history...))
	if r.err != nil {
		return "", r.err
	}
	reply := r.replies[0]
	if len(r.replies) > 1 {
		r.replies = r.replies[1:]
	}
	return reply, nil
}

type silentSpeaker struct{}

func (silentSpeaker) Speak(ctx context.Context, text string) error { return nil }

func newTestCoordinator(t *testing.T, router agent.TextQuerier, agentCfg config.AgentConfig) (*agent.Coordinator, *robot.SimArm) {
	t.Helper()

	arm := robot.NewSimArm()
	cfg := config.RobotConfig{
		SafeHeight: 220, GraspHeight: 10, ReleaseHeight: 20, ApproachHeight: 50,
		DefaultSpeed: 40, CoordinateSpeed: 20,
	}
	ctrl := robot.NewController(arm, cfg, nil)
	ctrl.Sleep = func(time.Duration) {}

	reg := capability.NewRegistry(capability.Deps{
		Controller: ctrl,
		Arm:        arm,
		Actuators:  robot.NewSimActuators(),
		Camera:     &robot.SimCamera{Dir: t.TempDir()},
		Sleep:      func(time.Duration) {},
	})
	exec := capability.NewExecutor(reg, silentSpeaker{}, nil)
	return agent.NewCoordinator(router, reg, exec, agentCfg, nil), arm
}

func TestTurnPlansAndExecutes(t *testing.T) {
	router := &scriptedRouter{replies: []string{
		`{"function": ["back_to_zero()", "head_dance()"], "response": "Returning to zero, then dancing."}`,
	}}
	coord, arm := newTestCoordinator(t, router, config.AgentConfig{})

	res := coord.Turn(context.Background(), "First return to zero, then dance.")

	require.Empty(t, res.Errors)
	require.Empty(t, res.Dropped)
	require.Equal(t, "Returning to zero, then dancing.", res.Spoken)
	require.Len(t, res.Plan.Steps, 2)
	require.Equal(t, "back_to_zero", res.Plan.Steps[0].Name)
	require.Equal(t, "head_dance", res.Plan.Steps[1].Name)

	// zero pose first, the dance moves after
	require.Equal(t, "angles:[0 0 0 0 0 0]", arm.Trace[0])
	require.Greater(t, len(arm.Trace), 1)
}

func TestTurnFallsBackToSentinelWhenAllProvidersFail(t *testing.T) {
	router := &scriptedRouter{err: fmt.Errorf("text: %w", llm.ErrAllProvidersFailed)}
	coord, arm := newTestCoordinator(t, router, config.AgentConfig{})

	res := coord.Turn(context.Background(), "wave hello")

	require.True(t, res.Plan.IsSentinel())
	require.Equal(t, plan.SentinelResponse, res.Spoken)
	require.Equal(t, []string{"angles:[0 0 0 0 0 0]"}, arm.Trace)
}

func TestTurnDropsInvalidStepsAndContinues(t *testing.T) {
	router := &scriptedRouter{replies: []string{
		`{"function": ["pump_on()", "launch_missiles()", "pump_off()"], "response": "Working."}`,
	}}
	coord, _ := newTestCoordinator(t, router, config.AgentConfig{})

	res := coord.Turn(context.Background(), "toggle the pump")

	require.Len(t, res.Plan.Steps, 2)
	require.Len(t, res.Dropped, 1)
	require.Contains(t, res.Dropped[0], "launch_missiles")
	require.Empty(t, res.Errors)
}

func TestTurnAppendsHistory(t *testing.T) {
	router := &scriptedRouter{replies: []string{
		`{"function": [], "response": "Hello there."}`,
	}}
	coord, _ := newTestCoordinator(t, router, config.AgentConfig{})

	coord.Turn(context.Background(), "hello")

	// the planning query saw system prompt + user instruction
	require.Len(t, router.queries, 1)
	require.Len(t, router.queries[0], 2)
	require.Equal(t, llm.RoleSystem, router.queries[0][0].Role)
	require.Equal(t, "hello", router.queries[0][1].Content)

	h := coord.History()
	require.Len(t, h, 3)
	require.Equal(t, llm.RoleAssistant, h[2].Role)
	require.Contains(t, h[2].Content, "Hello there.")
}

func TestTurnTrimsHistoryKeepingSystemPrompt(t *testing.T) {
	router := &scriptedRouter{replies: []string{
		`{"function": [], "response": "Ok."}`,
	}}
	coord, _ := newTestCoordinator(t, router, config.AgentConfig{MaxHistory: 2})

	for i := 0; i < 5; i++ {
		coord.Turn(context.Background(), fmt.Sprintf("instruction %d", i))
	}

	h := coord.History()
	require.Len(t, h, 5) // system + 2 retained turns
	require.Equal(t, llm.RoleSystem, h[0].Role)
	require.Equal(t, "instruction 3", h[1].Content)
	require.Equal(t, "instruction 4", h[3].Content)
}

type countingRecorder struct {
	outcomes []string
	dropped  int
}

func (r *countingRecorder) RecordTurn(outcome string, d time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *countingRecorder) RecordDroppedSteps(count int) { r.dropped += count }

func TestTurnRecordsOutcomes(t *testing.T) {
	router := &scriptedRouter{replies: []string{
		`{"function": ["back_to_zero()"], "response": "Done."}`,
		`{"function": ["pump_on()", "nope()"], "response": "Trying."}`,
	}}
	coord, _ := newTestCoordinator(t, router, config.AgentConfig{})
	rec := &countingRecorder{}
	coord.Metrics = rec

	coord.Turn(context.Background(), "zero")
	coord.Turn(context.Background(), "pump")

	require.Equal(t, []string{"ok", "ok"}, rec.outcomes)
	require.Equal(t, 1, rec.dropped)
}
