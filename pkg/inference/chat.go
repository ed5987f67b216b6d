package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"panelsmith/pkg/provider"
	"panelsmith/pkg/schema"
)

// ChatInferencer implements Inferencer for any OpenAI-compatible chat
// completion API using OpenAI's official Go SDK.
type ChatInferencer struct {
	id    provider.ID
	creds Credentials
	opts  []option.RequestOption

	maxTokens   int64
	temperature float64
	jsonTemp    float64
}

// NewChatInferencer creates a chat adapter for id. Extra request options are
// appended to every client, e.g. option.WithHTTPClient.
func NewChatInferencer(id provider.ID, creds Credentials, opts ...option.RequestOption) *ChatInferencer {
	return &ChatInferencer{
		id:          id,
		creds:       creds,
		opts:        opts,
		maxTokens:   4096,
		temperature: 0.8,
		jsonTemp:    0.7,
	}
}

func (o *ChatInferencer) ID() provider.ID { return o.id }

// Infer sends the system and user messages to the chat completion endpoint and
// returns the first choice.
func (o *ChatInferencer) Infer(ctx context.Context, req Request) (Response, error) {
	key, ok := o.creds.Credential(o.id)
	if !ok {
		return Response{}, missingCredential(o.id)
	}
	spec := o.creds.Spec(o.id)

	// each call builds its own client; retries are left to the orchestrator
	client := openai.NewClient(append([]option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(spec.Endpoint),
		option.WithMaxRetries(0),
	}, o.opts...)...)

	temperature := o.temperature
	if req.JSON {
		temperature = o.jsonTemp
	}

	params := openai.ChatCompletionNewParams{
		Model: spec.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		MaxCompletionTokens: openai.Int(cmp.Or(req.MaxTokens, o.maxTokens)),
		Temperature:         openai.Float(cmp.Or(req.Temperature, temperature)),
	}
	if req.JSON {
		if format, ok := responseFormat(spec.JSONMode, req.Format); ok {
			params.ResponseFormat = format
		}
	}

	log.Debug("chat completion", "provider", o.id, "model", spec.Model, "json", req.JSON, "mode", spec.JSONMode)
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, o.requestError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("%s inference error: no choices returned: %w", o.id, ErrEmptyResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Response{}, fmt.Errorf("%s inference error: %w", o.id, ErrEmptyResponse)
	}

	return Response{Provider: o.id, Model: cmp.Or(resp.Model, spec.Model), Text: content}, nil
}

func (o *ChatInferencer) requestError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &RequestError{
			Provider:   o.id,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.RawJSON(),
			Err:        err,
		}
	}
	return &RequestError{Provider: o.id, Err: err}
}

// responseFormat maps a provider JSON mode to the response_format parameter.
func responseFormat(mode provider.JSONMode, format *schema.Format) (openai.ChatCompletionNewParamsResponseFormatUnion, bool) {
	switch mode {
	case provider.JSONSchema:
		if format != nil && format.Schema != nil {
			p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        format.Name,
				Description: openai.String(format.Description),
				Schema:      format.Schema,
				Strict:      openai.Bool(true),
			}
			return openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
			}, true
		}
		fallthrough
	case provider.JSONObject:
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}, true
	default:
		return openai.ChatCompletionNewParamsResponseFormatUnion{}, false
	}
}
