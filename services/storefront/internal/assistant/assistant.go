// Package assistant generates product copy and answers shopper questions
// about the catalogue.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

// Text returned when the model answers with nothing.
const (
	FallbackDescription = "Quality technical apparel."
	FallbackAdvice      = "Scanning catalogue..."
)

const upstream = "gemini"

var errNotConfigured = errors.New("GEMINI_API_KEY not configured")

// Message is one chat bubble. The first message is the widget's greeting
// and is not sent to the model.
type Message struct {
	Sender string `json:"sender" validate:"required,oneof=user bot"`
	Text   string `json:"text" validate:"required,max=2000"`
}

// Review is a generated customer testimonial.
type Review struct {
	Author string `json:"author"`
	Quote  string `json:"quote"`
}

// Assistant wraps a Model with the storefront's prompts. A nil model makes
// every call fail as unavailable.
type Assistant struct {
	model  Model
	logger *slog.Logger
}

// New creates an Assistant.
func New(model Model, logger *slog.Logger) *Assistant {
	return &Assistant{model: model, logger: logger}
}

// Describe writes a short marketing blurb for a product.
func (a *Assistant) Describe(ctx context.Context, productName, category string) (string, error) {
	prompt := fmt.Sprintf("Write a 2-line technical marketing spec for %s (%s). No markdown. Focus on high-performance B2B apparel.", productName, category)

	text, err := a.generate(ctx, Prompt{Turns: []Turn{{Role: RoleUser, Text: prompt}}})
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return FallbackDescription, nil
	}
	return text, nil
}

// Advise answers the latest shopper message using the catalogue as context.
func (a *Assistant) Advise(ctx context.Context, messages []Message, products []domain.Product) (string, error) {
	if len(messages) < 2 {
		return FallbackAdvice, nil
	}

	turns := make([]Turn, 0, len(messages)-1)
	for _, m := range messages[1:] {
		role := RoleModel
		if m.Sender == "user" {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Text: m.Text})
	}
	if turns[len(turns)-1].Role != RoleUser {
		return FallbackAdvice, nil
	}

	text, err := a.generate(ctx, Prompt{System: advisorInstruction(products), Turns: turns})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return FallbackAdvice, nil
	}
	return text, nil
}

// GenerateReview writes a one-sentence testimonial from keywords.
func (a *Assistant) GenerateReview(ctx context.Context, keywords string) (Review, error) {
	prompt := fmt.Sprintf(`Write a short, realistic 1-sentence review for a custom apparel brand based on these keywords: %s. Return JSON: { "author": "Name", "quote": "Review text" }`, keywords)

	text, err := a.generate(ctx, Prompt{Turns: []Turn{{Role: RoleUser, Text: prompt}}, JSON: true})
	if err != nil {
		return Review{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Review{}, nil
	}

	var r Review
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Review{}, apperrors.Unavailable(upstream, fmt.Errorf("decode review: %w", err))
	}
	return r, nil
}

func (a *Assistant) generate(ctx context.Context, p Prompt) (string, error) {
	if a.model == nil {
		return "", apperrors.Unavailable(upstream, errNotConfigured)
	}
	text, err := a.model.Generate(ctx, p)
	if err != nil {
		a.logger.WarnContext(ctx, "assistant generation failed", slog.String("error", err.Error()))
		return "", apperrors.Unavailable(upstream, err)
	}
	return text, nil
}

func advisorInstruction(products []domain.Product) string {
	lines := make([]string, len(products))
	for i, p := range products {
		price := "N/A"
		if p.Price != nil && *p.Price != 0 {
			price = "$" + strconv.FormatFloat(*p.Price, 'f', -1, 64)
		}
		lines[i] = fmt.Sprintf("ID: %s, Name: %s, Category: %s, Price: %s", p.ID, p.Name, p.Category, price)
	}

	return "You are a technical product advisor for STATS CUSTOMS.\n" +
		"Catalogue Data:\n" +
		strings.Join(lines, "\n") + "\n\n" +
		"Identify the best match for the user. Be concise. One sentence max."
}
