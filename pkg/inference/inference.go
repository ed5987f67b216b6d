package inference

import (
	"context"

	"panelsmith/pkg/provider"
	"panelsmith/pkg/schema"
)

// Request is a single text generation request. It is passed by value and
// never modified by an adapter.
type Request struct {
	System string
	User   string

	// JSON asks the provider for a JSON document. Format, when set, is used by
	// providers that support strict structured output.
	JSON   bool
	Format *schema.Format

	Temperature float64
	MaxTokens   int64
}

// Response is the normalized result of a successful text generation.
type Response struct {
	Provider provider.ID
	Model    string
	Text     string
}

// Inferencer defines an interface for running text inference against one provider.
type Inferencer interface {
	ID() provider.ID
	Infer(ctx context.Context, req Request) (Response, error)
}

// Credentials is the view of the provider registry needed by adapters.
// Keys are read at call time so settings changes apply to the next request.
type Credentials interface {
	Credential(id provider.ID) (string, bool)
	Spec(id provider.ID) provider.Spec
}
