package inference

import (
	"github.com/openai/openai-go/v3/option"

	"panelsmith/pkg/provider"
)

// NewKimiInferencer creates the Kimi coding-plan adapter. The endpoint has no
// JSON mode, so structured replies rely on the recovering parser.
func NewKimiInferencer(creds Credentials, opts ...option.RequestOption) *ChatInferencer {
	o := NewChatInferencer(provider.Kimi, creds, opts...)
	o.jsonTemp = 0.6
	return o
}
