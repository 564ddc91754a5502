package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []Prompt
}

func (f *fakeModel) Generate(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func newAssistant(m Model) *Assistant {
	return New(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDescribe(t *testing.T) {
	m := &fakeModel{reply: "  Moisture-wicking mesh.\nBuilt for league play.  "}
	a := newAssistant(m)

	text, err := a.Describe(context.Background(), "Pro Jersey", "Jersey")
	require.NoError(t, err)
	assert.Equal(t, "Moisture-wicking mesh.\nBuilt for league play.", text)

	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0].Turns[0].Text, "Pro Jersey (Jersey)")
	assert.False(t, m.prompts[0].JSON)
}

func TestDescribe_EmptyReplyFallsBack(t *testing.T) {
	text, err := newAssistant(&fakeModel{}).Describe(context.Background(), "Pro Jersey", "Jersey")
	require.NoError(t, err)
	assert.Equal(t, FallbackDescription, text)
}

func TestDescribe_ModelErrorIsUnavailable(t *testing.T) {
	_, err := newAssistant(&fakeModel{err: errors.New("quota")}).Describe(context.Background(), "Pro Jersey", "Jersey")
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestNilModelIsUnavailable(t *testing.T) {
	_, err := newAssistant(nil).Describe(context.Background(), "Pro Jersey", "Jersey")
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestAdvise_DropsGreetingAndMapsRoles(t *testing.T) {
	m := &fakeModel{reply: "Try the JER-100 Pro Jersey."}
	price := 24.5
	products := []domain.Product{
		{ID: "JER-100", Name: "Pro Jersey", Category: "Jersey", Price: &price},
		{ID: "TEE-300", Name: "Everyday Tee", Category: "Tee"},
	}
	messages := []Message{
		{Sender: "bot", Text: "Hi! How can I help?"},
		{Sender: "user", Text: "I need basketball jerseys"},
		{Sender: "bot", Text: "For which team size?"},
		{Sender: "user", Text: "Twelve players"},
	}

	text, err := newAssistant(m).Advise(context.Background(), messages, products)
	require.NoError(t, err)
	assert.Equal(t, "Try the JER-100 Pro Jersey.", text)

	require.Len(t, m.prompts, 1)
	p := m.prompts[0]
	assert.Equal(t, []Turn{
		{RoleUser, "I need basketball jerseys"},
		{RoleModel, "For which team size?"},
		{RoleUser, "Twelve players"},
	}, p.Turns)
	assert.Contains(t, p.System, "ID: JER-100, Name: Pro Jersey, Category: Jersey, Price: $24.5")
	assert.Contains(t, p.System, "ID: TEE-300, Name: Everyday Tee, Category: Tee, Price: N/A")
	assert.Contains(t, p.System, "One sentence max.")
}

func TestAdvise_FallbacksWithoutCallingModel(t *testing.T) {
	m := &fakeModel{reply: "unused"}
	a := newAssistant(m)

	text, err := a.Advise(context.Background(), []Message{{Sender: "bot", Text: "Hi!"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackAdvice, text)

	text, err = a.Advise(context.Background(), []Message{{Sender: "bot", Text: "Hi!"}, {Sender: "bot", Text: "Still there?"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackAdvice, text)

	assert.Empty(t, m.prompts)
}

func TestAdvise_EmptyReplyFallsBack(t *testing.T) {
	messages := []Message{{Sender: "bot", Text: "Hi!"}, {Sender: "user", Text: "hoodies?"}}
	text, err := newAssistant(&fakeModel{}).Advise(context.Background(), messages, nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackAdvice, text)
}

func TestGenerateReview(t *testing.T) {
	m := &fakeModel{reply: `{"author":"Coach Reyes","quote":"Fast turnaround and sharp prints."}`}

	r, err := newAssistant(m).GenerateReview(context.Background(), "fast, sharp prints")
	require.NoError(t, err)
	assert.Equal(t, Review{Author: "Coach Reyes", Quote: "Fast turnaround and sharp prints."}, r)
	assert.True(t, m.prompts[0].JSON)
	assert.Contains(t, m.prompts[0].Turns[0].Text, "fast, sharp prints")
}

func TestGenerateReview_BadJSON(t *testing.T) {
	_, err := newAssistant(&fakeModel{reply: "not json"}).GenerateReview(context.Background(), "x")
	assert.True(t, apperrors.IsUnavailable(err))
}
