package inference

import (
	"github.com/openai/openai-go/v3/option"

	"panelsmith/pkg/provider"
)

// NewGrokInferencer creates the xAI adapter using the OpenAI-compatible API.
func NewGrokInferencer(creds Credentials, opts ...option.RequestOption) *ChatInferencer {
	o := NewChatInferencer(provider.Grok, creds, opts...)
	// reasoning models spend part of the budget before answering
	o.maxTokens = 4096 * 2
	return o
}
