package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrAllProvidersFailed reports that every provider in a fallback chain was
// tried and none produced a usable response.
var ErrAllProvidersFailed = errors.New("all providers failed")

// Route binds a provider id to its physical model and query parameters.
type Route struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// AttemptRecorder receives per-attempt telemetry from the router.
type AttemptRecorder interface {
	RecordProviderAttempt(modality, provider, outcome string)
}

// Router holds one ordered fallback chain per modality and queries providers
// in strict order: a provider is attempted only after the previous one
// definitively failed, and no provider is attempted twice in one query.
type Router struct {
	text   map[string]Provider
	vision map[string]VisionProvider
	routes map[string]Route

	textChain   []string
	visionChain []string

	Logger  *zap.Logger
	Metrics AttemptRecorder
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		text:   make(map[string]Provider),
		vision: make(map[string]VisionProvider),
		routes: make(map[string]Route),
	}
}

// RegisterText adds a text provider under the given id.
func (r *Router) RegisterText(id string, p Provider, route Route) {
	r.text[id] = p
	r.routes[id] = route
}

// RegisterVision adds a vision provider under the given id.
func (r *Router) RegisterVision(id string, p VisionProvider, route Route) {
	r.vision[id] = p
	if _, ok := r.routes[id]; !ok {
		r.routes[id] = route
	}
}

// SetTextChain fixes the ordered text fallback chain (default first).
func (r *Router) SetTextChain(ids []string) error {
	for _, id := range ids {
		if _, ok := r.text[id]; !ok {
			return fmt.Errorf("text chain references unknown provider %q", id)
		}
	}
	if len(ids) == 0 {
		return errors.New("text chain must contain at least one provider")
	}
	r.textChain = ids
	return nil
}

// SetVisionChain fixes the ordered vision fallback chain (default first).
func (r *Router) SetVisionChain(ids []string) error {
	for _, id := range ids {
		if _, ok := r.vision[id]; !ok {
			return fmt.Errorf("vision chain references unknown provider %q", id)
		}
	}
	r.visionChain = ids
	return nil
}

// HasVision reports whether any vision provider is configured.
func (r *Router) HasVision() bool {
	return len(r.visionChain) > 0
}

// Text queries the text chain with the given conversation snapshot and
// returns the first non-empty response. The preferred id, when registered,
// is tried before the configured chain.
func (r *Router) Text(ctx context.Context, history []ChatMessage, preferred string) (string, error) {
	chain := r.order(preferred, r.textChain, func(id string) bool { _, ok := r.text[id]; return ok })
	if len(chain) == 0 {
		return "", fmt.Errorf("text: %w", ErrAllProvidersFailed)
	}

	var lastErr error
	for _, id := range chain {
		route := r.routes[id]
		out, err := r.tryText(ctx, id, route, history)
		if err == nil {
			r.record("text", id, "ok")
			return out, nil
		}
		r.record("text", id, "error")
		r.logf("text provider failed", id, err)
		lastErr = err
	}
	return "", fmt.Errorf("text: %w: %w", ErrAllProvidersFailed, lastErr)
}

// Vision queries the vision chain and returns the first non-empty response.
func (r *Router) Vision(ctx context.Context, req VisionRequest, preferred string) (string, error) {
	chain := r.order(preferred, r.visionChain, func(id string) bool { _, ok := r.vision[id]; return ok })
	if len(chain) == 0 {
		return "", fmt.Errorf("vision: %w", ErrAllProvidersFailed)
	}

	var lastErr error
	for _, id := range chain {
		route := r.routes[id]
		out, err := r.tryVision(ctx, id, route, req)
		if err == nil {
			r.record("vision", id, "ok")
			return out, nil
		}
		r.record("vision", id, "error")
		r.logf("vision provider failed", id, err)
		lastErr = err
	}
	return "", fmt.Errorf("vision: %w: %w", ErrAllProvidersFailed, lastErr)
}

func (r *Router) tryText(ctx context.Context, id string, route Route, history []ChatMessage) (string, error) {
	ctx, cancel := r.attemptContext(ctx, route)
	defer cancel()

	resp, err := r.text[id].Chat(ctx, ChatRequest{
		Model:       route.Model,
		Messages:    history,
		MaxTokens:   route.MaxTokens,
		Temperature: route.Temperature,
	})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Message.Content)
	if out == "" {
		return "", fmt.Errorf("provider %q returned empty response", id)
	}
	return out, nil
}

func (r *Router) tryVision(ctx context.Context, id string, route Route, req VisionRequest) (string, error) {
	ctx, cancel := r.attemptContext(ctx, route)
	defer cancel()

	req.Model = route.Model
	out, err := r.vision[id].Analyze(ctx, req)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("provider %q returned empty response", id)
	}
	return out, nil
}

// order builds the attempt sequence: preferred first when registered, then
// the configured chain, each id at most once.
func (r *Router) order(preferred string, chain []string, known func(string) bool) []string {
	out := make([]string, 0, len(chain)+1)
	seen := make(map[string]bool, len(chain)+1)
	if preferred != "" && known(preferred) {
		out = append(out, preferred)
		seen[preferred] = true
	}
	for _, id := range chain {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

// attemptContext bounds a single provider attempt so a hung backend cannot
// stall the whole turn.
func (r *Router) attemptContext(ctx context.Context, route Route) (context.Context, context.CancelFunc) {
	timeout := route.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *Router) record(modality, provider, outcome string) {
	if r.Metrics != nil {
		r.Metrics.RecordProviderAttempt(modality, provider, outcome)
	}
}

func (r *Router) logf(msg, provider string, err error) {
	if r.Logger != nil {
		r.Logger.Warn(msg, zap.String("provider", provider), zap.Error(err))
	}
}
