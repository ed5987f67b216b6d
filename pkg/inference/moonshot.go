package inference

import (
	"github.com/openai/openai-go/v3/option"

	"panelsmith/pkg/provider"
)

// NewMoonshotInferencer creates the Moonshot AI adapter using the OpenAI-compatible API.
func NewMoonshotInferencer(creds Credentials, opts ...option.RequestOption) *ChatInferencer {
	return NewChatInferencer(provider.Moonshot, creds, opts...)
}

// NewChatInferencers returns the four chat adapters keyed by provider.
func NewChatInferencers(creds Credentials, opts ...option.RequestOption) map[provider.ID]Inferencer {
	return map[provider.ID]Inferencer{
		provider.OpenAI:   NewOpenAIInferencer(creds, opts...),
		provider.Grok:     NewGrokInferencer(creds, opts...),
		provider.Kimi:     NewKimiInferencer(creds, opts...),
		provider.Moonshot: NewMoonshotInferencer(creds, opts...),
	}
}
