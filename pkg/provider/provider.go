package provider

import (
	"fmt"
	"strings"
)

// ID identifies one of the supported generation providers.
type ID string

const (
	Gemini   ID = "gemini"
	OpenAI   ID = "openai"
	Grok     ID = "grok"
	Kimi     ID = "kimi"
	Moonshot ID = "moonshot"
)

// All lists every known provider, the multimodal one first.
var All = []ID{Gemini, OpenAI, Grok, Kimi, Moonshot}

// Kind distinguishes the multimodal provider from the text-only chat providers.
type Kind int

const (
	KindChat Kind = iota
	KindVisual
)

// Kind reports whether the provider is the multimodal one or a chat one.
func (id ID) Kind() Kind {
	if id == Gemini {
		return KindVisual
	}
	return KindChat
}

func (id ID) Valid() bool {
	for _, known := range All {
		if id == known {
			return true
		}
	}
	return false
}

// Parse resolves a provider name case-insensitively.
func Parse(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}
	return id, nil
}

// JSONMode controls how a chat provider is asked for JSON output.
type JSONMode string

const (
	// JSONNone sends no response_format and relies on the recovering parser.
	JSONNone JSONMode = "none"
	// JSONObject sends response_format {"type":"json_object"}.
	JSONObject JSONMode = "object"
	// JSONSchema sends strict structured output when a schema is available,
	// and json_object otherwise.
	JSONSchema JSONMode = "schema"
)

// Spec is the static configuration of a provider.
type Spec struct {
	Endpoint string   `yaml:"endpoint" json:"endpoint"`
	Model    string   `yaml:"model" json:"model"`
	JSONMode JSONMode `yaml:"json_mode" json:"json_mode"`
}

// DefaultSpecs returns the built-in endpoint, model and JSON mode of every provider.
// The gemini endpoint is empty, meaning the SDK default.
func DefaultSpecs() map[ID]Spec {
	return map[ID]Spec{
		Gemini:   {Model: "gemini-3-flash-preview"},
		OpenAI:   {Endpoint: "https://api.openai.com/v1", Model: "gpt-4o-mini", JSONMode: JSONSchema},
		Grok:     {Endpoint: "https://api.x.ai/v1", Model: "grok-4-fast-reasoning", JSONMode: JSONObject},
		Kimi:     {Endpoint: "https://api.kimi.com/coding/v1", Model: "kimi-for-coding", JSONMode: JSONNone},
		Moonshot: {Endpoint: "https://api.moonshot.ai/v1", Model: "kimi-k2-5", JSONMode: JSONObject},
	}
}

// DefaultFallbackOrder is the order in which chat providers are tried.
func DefaultFallbackOrder() []ID {
	return []ID{Moonshot, Grok, Kimi, OpenAI}
}
