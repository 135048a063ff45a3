package llm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	llmmock "github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm/mock"
)

func textResponse(content string) llm.ChatResponse {
	return llm.ChatResponse{Message: llm.ChatMessage{Role: llm.RoleAssistant, Content: content}}
}

func TestRouterFallbackStrictOrder(t *testing.T) {
	var order []string
	failing := func(name string) *llmmock.Provider {
		return &llmmock.Provider{NameValue: name, ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			order = append(order, name)
			return llm.ChatResponse{}, fmt.Errorf("%s down", name)
		}}
	}
	last := &llmmock.Provider{NameValue: "c", ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		order = append(order, "c")
		return textResponse("from c"), nil
	}}

	r := llm.NewRouter()
	r.RegisterText("a", failing("a"), llm.Route{Model: "m"})
	r.RegisterText("b", failing("b"), llm.Route{Model: "m"})
	r.RegisterText("c", last, llm.Route{Model: "m"})
	require.NoError(t, r.SetTextChain([]string{"a", "b", "c"}))

	out, err := r.Text(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "from c", out)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRouterNoProviderInvokedTwice(t *testing.T) {
	p := &llmmock.Provider{NameValue: "a", ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{}, fmt.Errorf("down")
	}}

	r := llm.NewRouter()
	r.RegisterText("a", p, llm.Route{Model: "m"})
	require.NoError(t, r.SetTextChain([]string{"a"}))

	// Preferred id equals the chain head; it must still run only once.
	_, err := r.Text(context.Background(), nil, "a")
	require.ErrorIs(t, err, llm.ErrAllProvidersFailed)
	require.Equal(t, 1, p.Calls)
}

func TestRouterPreferredProviderFirst(t *testing.T) {
	var order []string
	mk := func(name string) *llmmock.Provider {
		return &llmmock.Provider{NameValue: name, ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			order = append(order, name)
			return textResponse("from " + name), nil
		}}
	}

	r := llm.NewRouter()
	r.RegisterText("a", mk("a"), llm.Route{Model: "m"})
	r.RegisterText("b", mk("b"), llm.Route{Model: "m"})
	require.NoError(t, r.SetTextChain([]string{"a", "b"}))

	out, err := r.Text(context.Background(), nil, "b")
	require.NoError(t, err)
	require.Equal(t, "from b", out)
	require.Equal(t, []string{"b"}, order)
}

func TestRouterTreatsEmptyResponseAsFailure(t *testing.T) {
	empty := &llmmock.Provider{NameValue: "a", ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		return textResponse("   "), nil
	}}
	good := &llmmock.Provider{NameValue: "b", ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
		return textResponse("solid"), nil
	}}

	r := llm.NewRouter()
	r.RegisterText("a", empty, llm.Route{Model: "m"})
	r.RegisterText("b", good, llm.Route{Model: "m"})
	require.NoError(t, r.SetTextChain([]string{"a", "b"}))

	out, err := r.Text(context.Background(), nil, "")
	require.NoError(t, err)
	require.Equal(t, "solid", out)
	require.Equal(t, 1, empty.Calls)
	require.Equal(t, 1, good.Calls)
}

func TestRouterAllFail(t *testing.T) {
	r := llm.NewRouter()
	for _, name := range []string{"a", "b"} {
		r.RegisterText(name, &llmmock.Provider{NameValue: name, ChatFn: func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
			return llm.ChatResponse{}, fmt.Errorf("down")
		}}, llm.Route{Model: "m"})
	}
	require.NoError(t, r.SetTextChain([]string{"a", "b"}))

	_, err := r.Text(context.Background(), nil, "")
	require.ErrorIs(t, err, llm.ErrAllProvidersFailed)
}

func TestRouterVisionChain(t *testing.T) {
	failing := &llmmock.VisionProvider{NameValue: "v1", AnalyzeFn: func(ctx context.Context, req llm.VisionRequest) (string, error) {
		return "", fmt.Errorf("lens cap on")
	}}
	good := &llmmock.VisionProvider{NameValue: "v2", AnalyzeFn: func(ctx context.Context, req llm.VisionRequest) (string, error) {
		require.Equal(t, llm.VisionLocate, req.Mode)
		return `{"start":"cube"}`, nil
	}}

	r := llm.NewRouter()
	r.RegisterVision("v1", failing, llm.Route{Model: "m"})
	r.RegisterVision("v2", good, llm.Route{Model: "m"})
	require.NoError(t, r.SetVisionChain([]string{"v1", "v2"}))
	require.True(t, r.HasVision())

	out, err := r.Vision(context.Background(), llm.VisionRequest{Mode: llm.VisionLocate}, "")
	require.NoError(t, err)
	require.Contains(t, out, "cube")
}

func TestRouterRejectsUnknownChainMembers(t *testing.T) {
	r := llm.NewRouter()
	require.Error(t, r.SetTextChain([]string{"ghost"}))
	require.Error(t, r.SetTextChain(nil))
}
