package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atelierhq/atelierflow/backend/internal/config"
	"github.com/atelierhq/atelierflow/backend/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// CompletionRequest is one prompt sent to the generation provider.
type CompletionRequest struct {
	Prompt      string
	Model       string // overrides the configured model when set
	MaxTokens   int
	Temperature float64
	Context     string // optional conversation context prepended to the prompt
}

// CompletionResult is the provider's response with token accounting.
type CompletionResult struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Provider is the external generation-provider contract. Calls may fail or
// time out; the coordinator treats both the same and never retries.
type Provider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}

// NewProvider builds the configured provider client.
func NewProvider(cfg *config.ProviderConfig) Provider {
	switch cfg.Provider {
	case "anthropic":
		return &anthropicProvider{cfg: cfg}
	case "ollama":
		return &ollamaProvider{cfg: cfg}
	case "gemini":
		return &geminiProvider{cfg: cfg}
	default:
		// openai and OpenAI-compatible endpoints
		return &openAIProvider{cfg: cfg}
	}
}

func (r *CompletionRequest) fullPrompt() string {
	if r.Context == "" {
		return r.Prompt
	}
	return r.Context + "\n\n" + r.Prompt
}

func (r *CompletionRequest) model(fallback string) string {
	if r.Model != "" {
		return r.Model
	}
	return fallback
}

// openAIProvider handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
type openAIProvider struct {
	cfg *config.ProviderConfig
}

func (p *openAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	clientConfig := openai.DefaultConfig(p.cfg.APIKey)
	if p.cfg.BaseURL != "" {
		clientConfig.BaseURL = p.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(p.cfg.Temperature)
	if req.Temperature > 0 {
		temperature = float32(req.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.model(p.cfg.Model),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.fullPrompt(),
			},
		},
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		logger.Warnf("[Provider] OpenAI API error: %v", err)
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// anthropicProvider handles the Anthropic API using the native SDK
type anthropicProvider struct {
	cfg *config.ProviderConfig
}

func (p *anthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(p.cfg.APIKey),
	)

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = int64(p.cfg.MaxTokens)
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	model := req.model(p.cfg.Model)
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.fullPrompt())),
		},
	})
	if err != nil {
		logger.Warnf("[Provider] Anthropic API error: %v", err)
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &CompletionResult{
		Text:             content,
		Model:            model,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// ollamaProvider handles a local Ollama endpoint using the native SDK
type ollamaProvider struct {
	cfg *config.ProviderConfig
}

func (p *ollamaProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := req.model(p.cfg.Model)
	if model == "" {
		model = "llama3"
	}

	var content strings.Builder
	var promptTokens, completionTokens int
	err = client.Chat(ctx, &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: req.fullPrompt()},
		},
		Options: map[string]interface{}{
			"temperature": p.cfg.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Done {
			promptTokens = resp.PromptEvalCount
			completionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		logger.Warnf("[Provider] Ollama API error: %v", err)
		return nil, fmt.Errorf("Ollama API error: %w", err)
	}

	return &CompletionResult{
		Text:             content.String(),
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

// geminiProvider handles the Google Gemini API using the native SDK
type geminiProvider struct {
	cfg *config.ProviderConfig
}

func (p *geminiProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: p.cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini client error: %w", err)
	}

	model := req.model(p.cfg.Model)
	if model == "" {
		model = "gemini-3.0-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(req.fullPrompt()), nil)
	if err != nil {
		logger.Warnf("[Provider] Gemini API error: %v", err)
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	result := &CompletionResult{
		Text:  resp.Text(),
		Model: model,
	}
	if resp.UsageMetadata != nil {
		result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}
