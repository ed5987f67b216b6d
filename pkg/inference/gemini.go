package inference

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"panelsmith/pkg/provider"
	"panelsmith/pkg/schema"
)

const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-3-pro-image-preview"
)

// ContentGenerator is the part of the genai client used by the adapter.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory builds a content generator for a key and optional base URL.
type ClientFactory func(ctx context.Context, apiKey, endpoint string) (ContentGenerator, error)

// NewGenaiClient is the default ClientFactory backed by the Gemini API.
func NewGenaiClient(ctx context.Context, apiKey, endpoint string) (ContentGenerator, error) {
	config := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if endpoint != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: endpoint}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// GeminiInferencer is the multimodal adapter. It serves text inference as the
// terminal fallback and is the only provider able to produce images.
type GeminiInferencer struct {
	creds      Credentials
	newClient  ClientFactory
	imageModel string
}

type GeminiOption func(*GeminiInferencer)

func WithClientFactory(f ClientFactory) GeminiOption {
	return func(g *GeminiInferencer) { g.newClient = f }
}

func WithImageModel(model string) GeminiOption {
	return func(g *GeminiInferencer) {
		if model != "" {
			g.imageModel = model
		}
	}
}

func NewGeminiInferencer(creds Credentials, opts ...GeminiOption) *GeminiInferencer {
	g := &GeminiInferencer{
		creds:      creds,
		newClient:  NewGenaiClient,
		imageModel: DefaultImageModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (o *GeminiInferencer) ID() provider.ID { return provider.Gemini }

// ImageModel returns the default model used for image generation.
func (o *GeminiInferencer) ImageModel() string { return o.imageModel }

func (o *GeminiInferencer) client(ctx context.Context) (ContentGenerator, provider.Spec, error) {
	key, ok := o.creds.Credential(provider.Gemini)
	if !ok {
		return nil, provider.Spec{}, missingCredential(provider.Gemini)
	}
	spec := o.creds.Spec(provider.Gemini)
	client, err := o.newClient(ctx, key, spec.Endpoint)
	if err != nil {
		return nil, spec, &RequestError{Provider: provider.Gemini, Err: err}
	}
	return client, spec, nil
}

// Infer runs a text-only generation.
func (o *GeminiInferencer) Infer(ctx context.Context, req Request) (Response, error) {
	client, spec, err := o.client(ctx)
	if err != nil {
		return Response{}, err
	}
	model := cmp.Or(spec.Model, DefaultTextModel)

	temperature := 0.8
	if req.JSON {
		temperature = 0.7
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(cmp.Or(req.Temperature, temperature))),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	log.Debug("gemini text generation", "model", model, "json", req.JSON)
	result, err := client.GenerateContent(ctx, model, genai.Text(req.User), config)
	if err != nil {
		return Response{}, geminiError(fmt.Errorf("failed to generate content: %w", err))
	}
	if err := blocked(result); err != nil {
		return Response{}, err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return Response{}, fmt.Errorf("gemini inference error: %w", ErrEmptyResponse)
	}
	return Response{Provider: provider.Gemini, Model: model, Text: text}, nil
}

// ImageRequest is a multimodal image generation request. Parts are sent in
// order as a single user turn.
type ImageRequest struct {
	Model       string
	Parts       []*genai.Part
	AspectRatio string
	ImageSize   string
}

// GenerateImage sends the parts and returns the first inline image of the
// first candidate.
func (o *GeminiInferencer) GenerateImage(ctx context.Context, req ImageRequest) (schema.GeneratedImage, error) {
	client, _, err := o.client(ctx)
	if err != nil {
		return schema.GeneratedImage{}, err
	}
	model := cmp.Or(req.Model, o.imageModel)

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.AspectRatio != "" || req.ImageSize != "" {
		config.ImageConfig = &genai.ImageConfig{
			AspectRatio: req.AspectRatio,
			ImageSize:   req.ImageSize,
		}
	}

	log.Debug("gemini image generation", "model", model, "parts", len(req.Parts), "aspect", req.AspectRatio, "size", req.ImageSize)
	contents := []*genai.Content{genai.NewContentFromParts(req.Parts, genai.RoleUser)}
	result, err := client.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return schema.GeneratedImage{}, geminiError(fmt.Errorf("failed to generate image: %w", err))
	}
	return extractImage(result)
}

// Describe asks the model a question about a single image and returns the text answer.
func (o *GeminiInferencer) Describe(ctx context.Context, image []byte, mime, instruction string) (string, error) {
	client, spec, err := o.client(ctx)
	if err != nil {
		return "", err
	}
	model := cmp.Or(spec.Model, DefaultTextModel)

	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mime),
		genai.NewPartFromText(instruction),
	}
	result, err := client.GenerateContent(ctx, model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", geminiError(fmt.Errorf("failed to describe image: %w", err))
	}
	if err := blocked(result); err != nil {
		return "", err
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini describe error: %w", ErrEmptyResponse)
	}
	return text, nil
}

// geminiError carries the API status and error body when the SDK reports one.
func geminiError(err error) *RequestError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		body, _ := json.Marshal(apiErr)
		return &RequestError{
			Provider:   provider.Gemini,
			StatusCode: apiErr.Code,
			Body:       string(body),
			Err:        err,
		}
	}
	return &RequestError{Provider: provider.Gemini, Err: err}
}

var safetyFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:                       true,
	genai.FinishReasonProhibitedContent:            true,
	genai.FinishReasonBlocklist:                    true,
	genai.FinishReasonSPII:                         true,
	genai.FinishReason("IMAGE_SAFETY"):             true,
	genai.FinishReason("IMAGE_PROHIBITED_CONTENT"): true,
}

// blocked reports ErrSafetyBlocked when the response has no candidates, the
// prompt itself was blocked, or the first candidate stopped for safety.
func blocked(resp *genai.GenerateContentResponse) error {
	if resp == nil || len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return fmt.Errorf("%w: %s", ErrSafetyBlocked, reason)
	}
	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" && pf.BlockReason != genai.BlockedReasonUnspecified {
		return fmt.Errorf("%w: %s", ErrSafetyBlocked, pf.BlockReason)
	}
	if c := resp.Candidates[0]; c != nil && safetyFinishReasons[c.FinishReason] {
		return fmt.Errorf("%w: %s", ErrSafetyBlocked, c.FinishReason)
	}
	return nil
}

func extractImage(resp *genai.GenerateContentResponse) (schema.GeneratedImage, error) {
	if err := blocked(resp); err != nil {
		return schema.GeneratedImage{}, err
	}

	candidate := resp.Candidates[0]
	if candidate != nil && candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return schema.GeneratedImage{
					Data:     part.InlineData.Data,
					MIMEType: cmp.Or(part.InlineData.MIMEType, "image/png"),
				}, nil
			}
		}
	}

	return schema.GeneratedImage{}, ErrNoImageReturned
}
