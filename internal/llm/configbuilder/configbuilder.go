package configbuilder

import (
	"fmt"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/config"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm"
	llmanthropic "github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm/providers/anthropic"
	llmollama "github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm/providers/ollama"
	llmopenai "github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/llm/providers/openai"
)

// BuildRouterFromConfig constructs the provider router and fallback chains
// from configuration.
func BuildRouterFromConfig(cfg *config.Config) (*llm.Router, error) {
	router := llm.NewRouter()

	for name, pCfg := range cfg.Providers {
		route := llm.Route{
			Model:       pCfg.Model,
			Temperature: pCfg.Temperature,
			MaxTokens:   pCfg.MaxTokens,
			Timeout:     pCfg.Timeout,
		}

		p, err := buildProvider(name, pCfg)
		if err != nil {
			return nil, err
		}
		router.RegisterText(name, p, route)

		if pCfg.Vision {
			vp, ok := p.(llm.VisionProvider)
			if !ok {
				return nil, fmt.Errorf("provider %q is marked vision but type %q cannot analyze images", name, pCfg.Type)
			}
			router.RegisterVision(name, vp, route)
		}
	}

	if err := router.SetTextChain(cfg.Router.Text.Chain()); err != nil {
		return nil, err
	}
	if err := router.SetVisionChain(cfg.Router.Vision.Chain()); err != nil {
		return nil, err
	}

	return router, nil
}

func buildProvider(name string, cfg config.ProviderConfig) (llm.Provider, error) {
	switch cfg.Type {
	case "openai", "yi", "qwen", "custom":
		return llmopenai.NewProvider(name, cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "anthropic":
		return llmanthropic.NewProvider(name, cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "ollama":
		return llmollama.NewProvider(name, cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q for provider %s", cfg.Type, name)
	}
}
