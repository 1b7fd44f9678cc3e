package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/postcraft/internal/config"
	"github.com/PabloGalante/postcraft/internal/domain"
)

// New builds the text generator selected by cfg.Provider.
func New(ctx context.Context, cfg *config.Config) (domain.TextGenerator, error) {
	switch cfg.Provider {
	case "mock":
		return NewMockLLM(), nil
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.ModelName,
			Temperature: cfg.Temperature,
			Timeout:     cfg.RequestTimeout,
		})
	case "gemini", "vertex":
		return NewGeminiClient(ctx, GeminiConfig{
			Vertex:      cfg.Provider == "vertex",
			Project:     cfg.GCPProjectID,
			Location:    cfg.GCPLocation,
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.ModelName,
			Temperature: cfg.Temperature,
			Timeout:     cfg.RequestTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
