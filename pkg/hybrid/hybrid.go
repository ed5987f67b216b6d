package hybrid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"panelsmith/pkg/inference"
	"panelsmith/pkg/provider"
	"panelsmith/pkg/utils"
)

// ErrAllProvidersExhausted is returned when every credentialed provider failed.
var ErrAllProvidersExhausted = errors.New("all text providers exhausted")

// Attempt records the outcome of a single provider call.
type Attempt struct {
	Provider provider.ID
	Duration time.Duration
	Err      error
}

// ExhaustedError lists the failed attempts in the order they were made.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllProvidersExhausted.Error() + ": no provider has a credential"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return ErrAllProvidersExhausted.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ExhaustedError) Is(target error) bool {
	if target == ErrAllProvidersExhausted {
		return true
	}
	// nothing was attempted, so the caller skipped the credential precondition
	return len(e.Attempts) == 0 && target == inference.ErrMissingCredential
}

func (e *ExhaustedError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Err)
	}
	return out
}

// Observer is notified after every provider attempt.
type Observer func(Attempt)

// Orchestrator turns one text request into a sequential walk over the chat
// providers, ending with the multimodal provider's text mode.
type Orchestrator struct {
	registry *provider.Registry
	chats    map[provider.ID]inference.Inferencer
	visual   inference.Inferencer
	observer Observer
}

type Option func(*Orchestrator)

func WithObserver(o Observer) Option {
	return func(h *Orchestrator) { h.observer = o }
}

// New creates an orchestrator. visual may be nil, in which case there is no
// terminal fallback.
func New(registry *provider.Registry, chats map[provider.ID]inference.Inferencer, visual inference.Inferencer, opts ...Option) *Orchestrator {
	h := &Orchestrator{
		registry: registry,
		chats:    chats,
		visual:   visual,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Plan returns the providers a request issued now would try, in order.
func (h *Orchestrator) Plan() []provider.ID {
	var plan []provider.ID
	attempted := make(map[provider.ID]bool)
	order := h.chatOrder()
	for {
		id, ok := provider.SelectNextEligible(attempted, h.registry, order)
		if !ok {
			break
		}
		attempted[id] = true
		plan = append(plan, id)
	}
	if h.visual != nil && h.registry.HasCredential(h.visual.ID()) {
		plan = append(plan, h.visual.ID())
	}
	return plan
}

// chatOrder is the fallback order restricted to providers with an adapter.
func (h *Orchestrator) chatOrder() []provider.ID {
	var order []provider.ID
	for _, id := range h.registry.FallbackOrder() {
		if _, ok := h.chats[id]; ok {
			order = append(order, id)
		}
	}
	return order
}

// Text is a convenience wrapper for prose generation.
func (h *Orchestrator) Text(ctx context.Context, system, user string) (string, error) {
	resp, err := h.Generate(ctx, inference.Request{System: system, User: user})
	return resp.Text, err
}

// GenerateText returns the text of the first successful provider.
func (h *Orchestrator) GenerateText(ctx context.Context, req inference.Request) (string, error) {
	resp, err := h.Generate(ctx, req)
	return resp.Text, err
}

// Generate tries each credentialed chat provider once in fallback order, then
// the multimodal provider. Failures are logged and the next provider is tried.
func (h *Orchestrator) Generate(ctx context.Context, req inference.Request) (inference.Response, error) {
	logger := log.With("request", ksuid.New().String())
	if log.GetLevel() <= log.DebugLevel {
		if tokens, err := utils.NumTokens(req.System + req.User); err == nil {
			logger.Debug("text generation", "json", req.JSON, "tokens", tokens)
		}
	}

	var attempts []Attempt
	attempted := make(map[provider.ID]bool)
	order := h.chatOrder()

	try := func(inf inference.Inferencer) (inference.Response, bool) {
		start := time.Now()
		resp, err := inf.Infer(ctx, req)
		a := Attempt{Provider: inf.ID(), Duration: time.Since(start), Err: err}
		if h.observer != nil {
			h.observer(a)
		}
		if err != nil {
			logger.Warn("provider failed, trying next", "provider", a.Provider, "elapsed", a.Duration, "error", err)
			attempts = append(attempts, a)
			return inference.Response{}, false
		}
		logger.Info("text generated", "provider", a.Provider, "model", resp.Model, "elapsed", a.Duration)
		return resp, true
	}

	for {
		if err := ctx.Err(); err != nil {
			return inference.Response{}, err
		}
		id, ok := provider.SelectNextEligible(attempted, h.registry, order)
		if !ok {
			break
		}
		attempted[id] = true
		if resp, ok := try(h.chats[id]); ok {
			return resp, nil
		}
	}

	if h.visual != nil && h.registry.HasCredential(h.visual.ID()) {
		if err := ctx.Err(); err != nil {
			return inference.Response{}, err
		}
		if resp, ok := try(h.visual); ok {
			return resp, nil
		}
	}

	err := &ExhaustedError{Attempts: attempts}
	logger.Error("text generation failed", "attempts", len(attempts))
	return inference.Response{}, err
}
