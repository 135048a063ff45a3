package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/agent"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/observability"
)

// Server exposes the planning engine over HTTP: a health probe, Prometheus
// metrics, and a one-shot instruction endpoint. Instruction turns serialize
// through the coordinator, so concurrent requests queue rather than
// interleave physical motion.
type Server struct {
	cfg         *config.Config
	coordinator *agent.Coordinator
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewServer builds the HTTP server around an assembled coordinator.
func NewServer(cfg *config.Config, coordinator *agent.Coordinator, metrics *observability.Metrics, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, coordinator: coordinator, metrics: metrics, logger: logger}
}

// InstructionRequest is the body of POST /v1/instruction.
type InstructionRequest struct {
	Instruction string `json:"instruction"`
}

// InstructionResponse carries the spoken response plus telemetry detail.
type InstructionResponse struct {
	Response   string   `json:"response"`
	Steps      []string `json:"steps"`
	Dropped    []string `json:"dropped,omitempty"`
	StepErrors []string `json:"step_errors,omitempty"`
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.cfg.Server.MetricsEnabled && s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Post("/v1/instruction", s.handleInstruction)

	return r
}

func (s *Server) handleInstruction(w http.ResponseWriter, req *http.Request) {
	var body InstructionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Instruction) == "" {
		http.Error(w, "instruction is required", http.StatusBadRequest)
		return
	}

	result := s.coordinator.Turn(req.Context(), body.Instruction)

	resp := InstructionResponse{
		Response:   result.Spoken,
		Steps:      make([]string, 0, len(result.Plan.Steps)),
		Dropped:    result.Dropped,
		StepErrors: result.Errors,
	}
	for _, step := range result.Plan.Steps {
		resp.Steps = append(resp.Steps, step.String())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
	}
}
