package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"panelsmith/pkg/provider"
)

type mockGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.model, m.contents, m.config = model, contents, config
	return m.resp, m.err
}

func newTestGemini(t *testing.T, gen *mockGenerator) (*GeminiInferencer, *string) {
	t.Helper()
	reg := provider.NewRegistry(nil, nil)
	reg.SetCredentials(map[provider.ID]string{provider.Gemini: "g-key"})
	var usedKey string
	g := NewGeminiInferencer(reg, WithClientFactory(func(_ context.Context, apiKey, _ string) (ContentGenerator, error) {
		usedKey = apiKey
		return gen, nil
	}))
	return g, &usedKey
}

func candidate(reason genai.FinishReason, parts ...*genai.Part) *genai.Candidate {
	return &genai.Candidate{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}, FinishReason: reason}
}

func TestGeminiInferencer_GenerateImage(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first inline image", func(t *testing.T) {
		gen := &mockGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			candidate(genai.FinishReasonStop,
				genai.NewPartFromText("here is your image"),
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("png-1")}},
				&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("png-2")}},
			),
		}}}
		g, key := newTestGemini(t, gen)

		img, err := g.GenerateImage(ctx, ImageRequest{
			Parts:       []*genai.Part{genai.NewPartFromText("a cat")},
			AspectRatio: "16:9",
			ImageSize:   "1K",
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("png-1"), img.Data)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, "g-key", *key)
		assert.Equal(t, DefaultImageModel, gen.model)
		require.NotNil(t, gen.config.ImageConfig)
		assert.Equal(t, "16:9", gen.config.ImageConfig.AspectRatio)
		assert.Equal(t, "1K", gen.config.ImageConfig.ImageSize)
	})

	t.Run("zero candidates is a safety block", func(t *testing.T) {
		g, _ := newTestGemini(t, &mockGenerator{resp: &genai.GenerateContentResponse{}})
		_, err := g.GenerateImage(ctx, ImageRequest{})
		assert.ErrorIs(t, err, ErrSafetyBlocked)
	})

	t.Run("prompt feedback block", func(t *testing.T) {
		g, _ := newTestGemini(t, &mockGenerator{resp: &genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
		}})
		_, err := g.GenerateImage(ctx, ImageRequest{})
		assert.ErrorIs(t, err, ErrSafetyBlocked)
	})

	t.Run("safety finish reason", func(t *testing.T) {
		g, _ := newTestGemini(t, &mockGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			candidate(genai.FinishReason("IMAGE_SAFETY")),
		}}})
		_, err := g.GenerateImage(ctx, ImageRequest{})
		assert.ErrorIs(t, err, ErrSafetyBlocked)
	})

	t.Run("text only reply", func(t *testing.T) {
		g, _ := newTestGemini(t, &mockGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			candidate(genai.FinishReasonStop, genai.NewPartFromText("I cannot draw that")),
		}}})
		_, err := g.GenerateImage(ctx, ImageRequest{})
		assert.ErrorIs(t, err, ErrNoImageReturned)
		assert.NotErrorIs(t, err, ErrSafetyBlocked)
	})

	t.Run("transport error", func(t *testing.T) {
		g, _ := newTestGemini(t, &mockGenerator{err: errors.New("boom")})
		_, err := g.GenerateImage(ctx, ImageRequest{})
		assert.ErrorIs(t, err, ErrProviderRequestFailed)
	})

	t.Run("api error keeps status and body", func(t *testing.T) {
		g, _ := newTestGemini(t, &mockGenerator{err: genai.APIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"}})
		_, err := g.GenerateImage(ctx, ImageRequest{})
		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 429, reqErr.StatusCode)
		assert.Contains(t, reqErr.Body, "quota exceeded")
		assert.ErrorIs(t, err, ErrProviderRequestFailed)
	})
}

func TestGeminiInferencer_Infer(t *testing.T) {
	gen := &mockGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		candidate(genai.FinishReasonStop, genai.NewPartFromText(`{"caption":"c","imagePrompt":"p"}`)),
	}}}
	g, _ := newTestGemini(t, gen)

	resp, err := g.Infer(context.Background(), Request{System: "sys", User: "scene", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, provider.Gemini, resp.Provider)
	assert.Equal(t, `{"caption":"c","imagePrompt":"p"}`, resp.Text)
	assert.Equal(t, DefaultTextModel, gen.model)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	require.NotNil(t, gen.config.SystemInstruction)
}

func TestGeminiInferencer_MissingCredential(t *testing.T) {
	gen := &mockGenerator{}
	g := NewGeminiInferencer(provider.NewRegistry(nil, nil), WithClientFactory(func(context.Context, string, string) (ContentGenerator, error) {
		return gen, nil
	}))

	_, err := g.Infer(context.Background(), Request{User: "u"})
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = g.GenerateImage(context.Background(), ImageRequest{})
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, gen.calls)
}

func TestGeminiInferencer_Describe(t *testing.T) {
	gen := &mockGenerator{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		candidate(genai.FinishReasonStop, genai.NewPartFromText("  short red hair, green coat ")),
	}}}
	g, _ := newTestGemini(t, gen)

	text, err := g.Describe(context.Background(), []byte("img"), "image/jpeg", "describe")
	require.NoError(t, err)
	assert.Equal(t, "short red hair, green coat", text)
	require.Len(t, gen.contents, 1)
	require.Len(t, gen.contents[0].Parts, 2)
	assert.Equal(t, "image/jpeg", gen.contents[0].Parts[0].InlineData.MIMEType)
}
