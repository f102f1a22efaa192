package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/symptomsync/healthai/backend/internal/config"
)

type fakeChatModel struct {
	input []*schema.Message
	reply string
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (f *fakeChatModel) BindTools([]*schema.ToolInfo) error {
	return nil
}

func TestArkClientComplete(t *testing.T) {
	ctx := context.Background()
	fake := &fakeChatModel{reply: "Rest and hydrate."}

	client, err := NewArkClient(ctx, fake, "")
	require.NoError(t, err)

	reply, err := client.Complete(ctx, Request{
		History: []Content{userContent("a"), modelContent("b"), userContent("now")},
		Message: "now",
		Context: "Appointments:\n- None\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rest and hydrate.", reply)

	require.Len(t, fake.input, 4)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Contains(t, fake.input[0].Content, DefaultDirective)
	assert.Contains(t, fake.input[0].Content, "Appointments:\n- None\n")
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, "a", fake.input[1].Content)
	assert.Equal(t, schema.Assistant, fake.input[2].Role)
	assert.Equal(t, schema.User, fake.input[3].Role)
	assert.Equal(t, "now", fake.input[3].Content)
}

func TestArkClientError(t *testing.T) {
	ctx := context.Background()
	client, err := NewArkClient(ctx, &fakeChatModel{err: errors.New("rate limited")}, "")
	require.NoError(t, err)

	_, err = client.Complete(ctx, Request{History: []Content{userContent("x")}, Message: "x"})
	assert.Error(t, err)
}

func TestGeminiClientComplete(t *testing.T) {
	var (
		gotModel    string
		gotContents []*genai.Content
		gotConfig   *genai.GenerateContentConfig
	)
	client := &GeminiClient{
		model:     "gemini-test",
		directive: "Be kind.",
		generate: func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel, gotContents, gotConfig = model, contents, cfg
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("  Take it easy.  ", genai.RoleModel)}},
			}, nil
		},
	}

	reply, err := client.Complete(context.Background(), Request{
		History: []Content{userContent("a"), modelContent("b"), userContent("c")},
		Message: "c",
		Context: "summary",
	})
	require.NoError(t, err)
	assert.Equal(t, "Take it easy.", reply)
	assert.Equal(t, "gemini-test", gotModel)

	require.Len(t, gotContents, 3)
	assert.Equal(t, string(genai.RoleUser), gotContents[0].Role)
	assert.Equal(t, string(genai.RoleModel), gotContents[1].Role)
	assert.Equal(t, "c", gotContents[2].Parts[0].Text)

	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "Be kind.\n\nHere is the user's current health data:\nsummary", gotConfig.SystemInstruction.Parts[0].Text)
}

func TestGeminiClientEmptyReply(t *testing.T) {
	client := &GeminiClient{
		model: "gemini-test",
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}

	_, err := client.Complete(context.Background(), Request{Message: "x"})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)
}

func TestNewCompleterNotConfigured(t *testing.T) {
	_, err := NewCompleter(context.Background(), config.AIConfig{Provider: config.ProviderGemini})
	assert.Error(t, err)

	_, err = NewCompleter(context.Background(), config.AIConfig{Provider: config.ProviderArk})
	assert.Error(t, err)
}

func TestGeminiContentsMapsRoles(t *testing.T) {
	contents := geminiContents(Request{
		History: []Content{userContent("hi"), modelContent("hello"), userContent("how are my meds?")},
		Message: "how are my meds?",
	})

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, "hi", contents[0].Parts[0].Text)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "hello", contents[1].Parts[0].Text)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
	assert.Equal(t, "how are my meds?", contents[2].Parts[0].Text)
}
