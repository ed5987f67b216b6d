package validator

import (
	"cmp"
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/genai"

	"panelsmith/pkg/inference"
	"panelsmith/pkg/provider"
)

// SpecSource resolves provider endpoints and models.
type SpecSource interface {
	Spec(id provider.ID) provider.Spec
}

// Validator checks candidate keys with one cheap request. It never stores the
// key it checks.
type Validator struct {
	specs     SpecSource
	newClient inference.ClientFactory
	opts      []option.RequestOption
}

type Option func(*Validator)

// WithClientFactory overrides how gemini probe clients are built.
func WithClientFactory(f inference.ClientFactory) Option {
	return func(v *Validator) { v.newClient = f }
}

// WithRequestOptions appends options to every chat validation client.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(v *Validator) { v.opts = append(v.opts, opts...) }
}

func New(specs SpecSource, opts ...Option) *Validator {
	v := &Validator{specs: specs, newClient: inference.NewGenaiClient}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reports whether key is accepted by provider id.
func (v *Validator) Validate(ctx context.Context, id provider.ID, key string) bool {
	if key == "" {
		return false
	}
	var ok bool
	if id.Kind() == provider.KindVisual {
		ok = v.validateGemini(ctx, key)
	} else {
		ok = v.validateChat(ctx, id, key)
	}
	log.Info("validated key", "provider", id, "valid", ok)
	return ok
}

func (v *Validator) validateGemini(ctx context.Context, key string) bool {
	spec := v.specs.Spec(provider.Gemini)
	client, err := v.newClient(ctx, key, spec.Endpoint)
	if err != nil {
		log.Debug("gemini validation client failed", "error", err)
		return false
	}
	_, err = client.GenerateContent(ctx, cmp.Or(spec.Model, inference.DefaultTextModel), genai.Text("ping"), &genai.GenerateContentConfig{
		MaxOutputTokens: 1,
	})
	if err != nil {
		log.Debug("gemini key rejected", "error", err)
		return false
	}
	return true
}

// validateChat lists models with the candidate key; only HTTP 200 is valid.
func (v *Validator) validateChat(ctx context.Context, id provider.ID, key string) bool {
	spec := v.specs.Spec(id)
	var resp *http.Response
	client := openai.NewClient(append([]option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(spec.Endpoint),
		option.WithMaxRetries(0),
		option.WithResponseInto(&resp),
	}, v.opts...)...)

	if _, err := client.Models.List(ctx); err != nil {
		log.Debug("chat key rejected", "provider", id, "error", err)
		return false
	}
	return resp != nil && resp.StatusCode == http.StatusOK
}
