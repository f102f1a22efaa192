package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/symptomsync/healthai/backend/internal/model/chat"
)

var (
	ErrEmptyReply     = errors.New("model returned an empty reply")
	ErrAPIKeyRequired = errors.New("gemini api key is required")
)

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiClient completes requests with the Gemini API.
type GeminiClient struct {
	generate  generateFunc
	model     string
	directive string
}

// NewGeminiClient creates a Gemini-backed client for model.
func NewGeminiClient(ctx context.Context, apiKey, model, directive string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		generate:  client.Models.GenerateContent,
		model:     model,
		directive: directive,
	}, nil
}

// Complete sends the history and new message in one GenerateContent call.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.Directive == "" {
		req.Directive = c.directive
	}

	contents := geminiContents(req)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction(), genai.RoleUser),
	}

	result, err := c.generate(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	reply := strings.TrimSpace(result.Text())
	if reply == "" {
		return "", ErrEmptyReply
	}

	slog.Info("generated reply", "component", "ai", "provider", "gemini", "model", c.model, "length", len(reply))
	return reply, nil
}

func geminiContents(req Request) []*genai.Content {
	prior := req.Prior()
	contents := make([]*genai.Content, 0, len(prior)+1)
	for _, c := range prior {
		var role genai.Role = genai.RoleUser
		if c.Role == chat.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(c.Text(), role))
	}
	return append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))
}
