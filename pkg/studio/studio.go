// Package studio assembles the provider registry, adapters, orchestrator and
// generation stages into one value shared by the CLI and the HTTP server.
package studio

import (
	"cmp"

	"github.com/openai/openai-go/v3/option"

	"panelsmith/pkg/config"
	"panelsmith/pkg/creative"
	"panelsmith/pkg/hybrid"
	"panelsmith/pkg/inference"
	"panelsmith/pkg/provider"
	"panelsmith/pkg/synth"
	"panelsmith/pkg/validator"
)

type Studio struct {
	Registry     *provider.Registry
	Gemini       *inference.GeminiInferencer
	Orchestrator *hybrid.Orchestrator
	Pipeline     *creative.Pipeline
	Synth        *synth.Synthesizer
	Story        *creative.StoryRunner
	Validator    *validator.Validator
}

type options struct {
	chatOpts []option.RequestOption
	factory  inference.ClientFactory
	observer hybrid.Observer
}

type Option func(*options)

// WithChatOptions appends request options to every chat and validation client.
func WithChatOptions(opts ...option.RequestOption) Option {
	return func(o *options) { o.chatOpts = append(o.chatOpts, opts...) }
}

// WithGeminiFactory replaces the genai client factory.
func WithGeminiFactory(f inference.ClientFactory) Option {
	return func(o *options) { o.factory = f }
}

func WithObserver(obs hybrid.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New wires every stage from cfg.
func New(cfg *config.Config, opts ...Option) *Studio {
	o := &options{factory: inference.NewGenaiClient}
	for _, opt := range opts {
		opt(o)
	}

	reg := cfg.Registry()
	gemini := inference.NewGeminiInferencer(reg,
		inference.WithClientFactory(o.factory),
		inference.WithImageModel(cfg.Image.Model),
	)

	var hopts []hybrid.Option
	if o.observer != nil {
		hopts = append(hopts, hybrid.WithObserver(o.observer))
	}
	orch := hybrid.New(reg, inference.NewChatInferencers(reg, o.chatOpts...), gemini, hopts...)

	imageDefaults := cfg.Image
	imageDefaults.Model = cmp.Or(imageDefaults.Model, gemini.ImageModel())
	syn := synth.New(gemini, imageDefaults)

	return &Studio{
		Registry:     reg,
		Gemini:       gemini,
		Orchestrator: orch,
		Pipeline: creative.New(orch,
			creative.WithDescriber(gemini),
			creative.WithDefaultPanels(cfg.Story.Panels),
		),
		Synth:     syn,
		Story:     creative.NewStoryRunner(syn, creative.WithInterval(cfg.Story.Interval)),
		Validator: validator.New(reg, validator.WithClientFactory(o.factory), validator.WithRequestOptions(o.chatOpts...)),
	}
}

// ImageModel is the model used when a request does not name one.
func (s *Studio) ImageModel() string {
	return s.Synth.Defaults().Model
}
