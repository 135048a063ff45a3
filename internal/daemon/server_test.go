package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/agent"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/capability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/observability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/robot"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/speech"
)

type fixedRouter struct {
	reply string
}

func (r fixedRouter) Text(ctx context.Context, history []llm.ChatMessage, preferred string) (string, error) {
	return r.reply, nil
}

func newTestServer(t *testing.T, reply string) *Server {
	t.Helper()

	arm := robot.NewSimArm()
	robotCfg := config.RobotConfig{
		SafeHeight: 220, GraspHeight: 10, ReleaseHeight: 20, ApproachHeight: 50,
		DefaultSpeed: 40, CoordinateSpeed: 20,
	}
	ctrl := robot.NewController(arm, robotCfg, nil)
	ctrl.Sleep = func(time.Duration) {}

	reg := capability.NewRegistry(capability.Deps{
		Controller: ctrl,
		Arm:        arm,
		Actuators:  robot.NewSimActuators(),
		Camera:     &robot.SimCamera{Dir: t.TempDir()},
		Sleep:      func(time.Duration) {},
	})
	exec := capability.NewExecutor(reg, speech.Noop{}, nil)
	coord := agent.NewCoordinator(fixedRouter{reply: reply}, reg, exec, config.AgentConfig{}, nil)

	cfg := &config.Config{
		Server: config.ServerConfig{Addr: ":0", MetricsEnabled: true},
	}
	return NewServer(cfg, coord, observability.NewMetrics(), zap.NewNop())
}

func TestInstructionEndpoint(t *testing.T) {
	s := newTestServer(t, `{"function": ["back_to_zero()"], "response": "Returning to zero."}`)
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/instruction", "application/json",
		strings.NewReader(`{"instruction": "go home"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out InstructionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "Returning to zero.", out.Response)
	require.Equal(t, []string{"back_to_zero()"}, out.Steps)
	require.Empty(t, out.Dropped)
}

func TestInstructionEndpointRejectsBadInput(t *testing.T) {
	s := newTestServer(t, `{"function": [], "response": "Ok."}`)
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/instruction", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/v1/instruction", "application/json",
		strings.NewReader(`{"instruction": "   "}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	s := newTestServer(t, `{"function": [], "response": "Ok."}`)
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
