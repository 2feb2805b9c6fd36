package services

import (
	"testing"

	"github.com/atelierhq/atelierflow/backend/internal/config"
)

func TestNewProvider_Dispatch(t *testing.T) {
	cases := []struct {
		name     string
		provider string
	}{
		{"openai", "openai"},
		{"anthropic", "anthropic"},
		{"ollama", "ollama"},
		{"gemini", "gemini"},
		{"compatible endpoint falls back to openai", "custom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewProvider(&config.ProviderConfig{Provider: tc.provider})
			if p == nil {
				t.Fatal("NewProvider should not return nil")
			}

			switch tc.provider {
			case "anthropic":
				if _, ok := p.(*anthropicProvider); !ok {
					t.Errorf("got %T, expected anthropicProvider", p)
				}
			case "ollama":
				if _, ok := p.(*ollamaProvider); !ok {
					t.Errorf("got %T, expected ollamaProvider", p)
				}
			case "gemini":
				if _, ok := p.(*geminiProvider); !ok {
					t.Errorf("got %T, expected geminiProvider", p)
				}
			default:
				if _, ok := p.(*openAIProvider); !ok {
					t.Errorf("got %T, expected openAIProvider", p)
				}
			}
		})
	}
}

func TestCompletionRequest_FullPrompt(t *testing.T) {
	req := &CompletionRequest{Prompt: "Summarize this thread"}
	if got := req.fullPrompt(); got != "Summarize this thread" {
		t.Errorf("fullPrompt = %q, expected prompt unchanged", got)
	}

	req.Context = "Thread history: ..."
	if got := req.fullPrompt(); got != "Thread history: ...\n\nSummarize this thread" {
		t.Errorf("fullPrompt = %q, expected context prepended", got)
	}
}

func TestCompletionRequest_ModelOverride(t *testing.T) {
	req := &CompletionRequest{}
	if got := req.model("gpt-4o"); got != "gpt-4o" {
		t.Errorf("model = %q, expected fallback", got)
	}

	req.Model = "gpt-4o-mini"
	if got := req.model("gpt-4o"); got != "gpt-4o-mini" {
		t.Errorf("model = %q, expected request override", got)
	}
}
