package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/symptomsync/healthai/backend/internal/model/chat"
)

// ArkClient completes requests through an eino chain wrapping a chat model.
type ArkClient struct {
	chain     compose.Runnable[map[string]any, *schema.Message]
	directive string
}

// NewArkClient compiles the prompt chain around chatModel. directive, when
// set, replaces DefaultDirective for requests that carry none.
func NewArkClient(ctx context.Context, chatModel model.ChatModel, directive string) (*ArkClient, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkClient{chain: runnable, directive: directive}, nil
}

// Complete runs the chain once and returns the reply text.
func (c *ArkClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.Directive == "" {
		req.Directive = c.directive
	}

	response, err := c.chain.Invoke(ctx, chainInput(req))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", ErrEmptyReply
	}

	slog.Info("generated reply", "component", "ai", "provider", "ark", "length", len(response.Content))
	return response.Content, nil
}

func chainInput(req Request) map[string]any {
	return map[string]any{
		"system":  req.SystemInstruction(),
		"history": historyMessages(req.Prior()),
		"query":   req.Message,
	}
}

func historyMessages(contents []Content) []*schema.Message {
	if len(contents) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(contents))
	for _, c := range contents {
		switch c.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(c.Text()))
		case chat.RoleModel:
			history = append(history, schema.AssistantMessage(c.Text(), nil))
		}
	}
	return history
}
