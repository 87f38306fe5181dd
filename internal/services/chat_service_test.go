package services

import (
	"context"
	"testing"

	"culturology/internal/models"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatService(t *testing.T, ai *fakeAIClient, cultures ...*models.Culture) *ChatService {
	t.Helper()
	templates, err := NewAITemplateManager()
	require.NoError(t, err)

	repo := &fakeCultureRepository{cultures: map[string]*models.Culture{}}
	for _, c := range cultures {
		repo.cultures[c.Slug] = c
	}
	return NewChatService(repo, ai, templates, testAIConfig("http://unused"), observability.NewNopLogger())
}

func TestChatService_Ask(t *testing.T) {
	maori := maoriCulture()
	maori.About = models.StringPtr("Polynesian people of Aotearoa.")
	maori.Lifestyle = models.StringPtr("Life centres on the marae.")

	ai := &fakeAIClient{response: "  Kia ora! We gather on the marae.  \n"}
	svc := newTestChatService(t, ai, maori)

	answer, err := svc.Ask(context.Background(), "maori", "  Where do you gather? ")
	require.NoError(t, err)
	assert.Equal(t, "Kia ora! We gather on the marae.", answer)

	require.Equal(t, 1, ai.calls())
	req := ai.requests[0]
	assert.Equal(t, "chat", req.Purpose)
	assert.Equal(t, 150, req.MaxTokens)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, "You are a friendly representative of an indigenous culture. Use the context below to answer the user's question.\n\n"+
		"Context:\nPolynesian people of Aotearoa.\n\nLife centres on the marae.\n\n"+
		"Question: Where do you gather?\nAnswer:", req.Prompt)
}

func TestChatService_ContextFallsBackToName(t *testing.T) {
	ai := &fakeAIClient{response: "Hello"}
	svc := newTestChatService(t, ai, maoriCulture())

	_, err := svc.Ask(context.Background(), "maori", "Who are you?")
	require.NoError(t, err)
	assert.Contains(t, ai.requests[0].Prompt, "Context:\nInformation about Māori\n")
}

func TestChatService_Errors(t *testing.T) {
	t.Run("unknown culture", func(t *testing.T) {
		ai := &fakeAIClient{response: "x"}
		_, err := newTestChatService(t, ai).Ask(context.Background(), "atlantis", "Hi?")
		assert.True(t, contextutils.IsError(err, contextutils.ErrCultureNotFound))
		assert.Zero(t, ai.calls())
	})

	t.Run("empty question", func(t *testing.T) {
		ai := &fakeAIClient{response: "x"}
		_, err := newTestChatService(t, ai, maoriCulture()).Ask(context.Background(), "maori", "   ")
		assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))
		assert.Zero(t, ai.calls())
	})

	for _, providerErr := range []*contextutils.AppError{
		contextutils.ErrAIProviderUnavailable,
		contextutils.ErrAIRequestFailed,
		contextutils.ErrAIResponseInvalid,
	} {
		t.Run("provider "+string(providerErr.Code), func(t *testing.T) {
			ai := &fakeAIClient{err: providerErr}
			_, err := newTestChatService(t, ai, maoriCulture()).Ask(context.Background(), "maori", "Hi?")
			require.Error(t, err)
			assert.True(t, contextutils.IsError(err, contextutils.ErrAIProviderUnavailable))
		})
	}
}
