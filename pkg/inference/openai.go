package inference

import (
	"github.com/openai/openai-go/v3/option"

	"panelsmith/pkg/provider"
)

// NewOpenAIInferencer creates the OpenAI adapter. It is the only chat provider
// using strict structured output.
func NewOpenAIInferencer(creds Credentials, opts ...option.RequestOption) *ChatInferencer {
	o := NewChatInferencer(provider.OpenAI, creds, opts...)
	o.maxTokens = 4096 * 4
	return o
}
