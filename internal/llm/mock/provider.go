package mock

import (
	"context"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
)

// Provider is a test double implementing llm.Provider.
type Provider struct {
	NameValue string
	ChatFn    func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)
	Calls     int
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	p.Calls++
	if p.ChatFn != nil {
		return p.ChatFn(ctx, req)
	}
	return llm.ChatResponse{
		Message: llm.ChatMessage{
			Role:    llm.RoleAssistant,
			Content: "mock",
		},
	}, nil
}

// VisionProvider is a test double implementing llm.VisionProvider.
type VisionProvider struct {
	NameValue string
	AnalyzeFn func(ctx context.Context, req llm.VisionRequest) (string, error)
	Calls     int
}

func (p *VisionProvider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock-vision"
}

func (p *VisionProvider) Analyze(ctx context.Context, req llm.VisionRequest) (string, error) {
	p.Calls++
	if p.AnalyzeFn != nil {
		return p.AnalyzeFn(ctx, req)
	}
	return "mock", nil
}
