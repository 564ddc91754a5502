package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Roles understood by the model.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message of a conversation.
type Turn struct {
	Role string
	Text string
}

// Prompt is a single generation request. The last turn is the one answered.
type Prompt struct {
	System string
	Turns  []Turn
	JSON   bool
}

// Model generates text for a prompt.
type Model interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeminiModel is a Model backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	name   string
}

// NewGeminiModel creates a Gemini client authenticated with apiKey.
func NewGeminiModel(ctx context.Context, apiKey, name string) (*GeminiModel, error) {
	if name == "" {
		name = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, name: name}, nil
}

// Generate implements Model.
func (g *GeminiModel) Generate(ctx context.Context, p Prompt) (string, error) {
	if len(p.Turns) == 0 {
		return "", errors.New("prompt has no turns")
	}

	model := g.client.GenerativeModel(g.name)
	if p.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
	}
	if p.JSON {
		model.ResponseMIMEType = "application/json"
	}

	cs := model.StartChat()
	last := len(p.Turns) - 1
	for _, t := range p.Turns[:last] {
		cs.History = append(cs.History, &genai.Content{Role: t.Role, Parts: []genai.Part{genai.Text(t.Text)}})
	}

	res, err := cs.SendMessage(ctx, genai.Text(p.Turns[last].Text))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(res), nil
}

// Close releases the underlying client.
func (g *GeminiModel) Close() error {
	return g.client.Close()
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
