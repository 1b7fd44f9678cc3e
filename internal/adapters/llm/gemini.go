package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiConfig struct {
	// Vertex selects the Vertex AI backend (Project/Location); otherwise APIKey is used.
	Vertex   bool
	Project  string
	Location string
	APIKey   string

	Model       string
	Temperature float64
	Timeout     time.Duration

	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

// GeminiClient implements domain.TextGenerator with Gemini, either through
// the Gemini API or Vertex AI.
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	timeout     time.Duration
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	}
	if cfg.Vertex {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("project and location must be set for Vertex AI")
		}
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set")
		}
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{
		client:      client,
		modelName:   model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}, nil
}

// Generate implements domain.TextGenerator.
func (g *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
	}
	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return res.Text(), nil
}
