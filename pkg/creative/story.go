package creative

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"
	"golang.org/x/time/rate"

	"panelsmith/pkg/schema"
	"panelsmith/pkg/synth"
)

// ImageSynthesizer renders one scene with character references.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, prompt string, refs []schema.Character, opts synth.Options) (schema.GeneratedImage, error)
}

// PanelResult is the outcome of rendering one script unit.
type PanelResult struct {
	Index int                    `json:"index"`
	Unit  schema.ScriptUnit      `json:"unit"`
	Image *schema.GeneratedImage `json:"-"`
	Model string                 `json:"model,omitempty"`
	Err   error                  `json:"-"`
}

func (r PanelResult) OK() bool { return r.Err == nil && r.Image != nil }

// StoryRunner renders a script into images one unit at a time.
type StoryRunner struct {
	synth   ImageSynthesizer
	limiter *rate.Limiter
}

type StoryOption func(*StoryRunner)

// WithInterval spaces image requests at least d apart. Zero disables pacing.
func WithInterval(d time.Duration) StoryOption {
	return func(s *StoryRunner) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

func NewStoryRunner(renderer ImageSynthesizer, opts ...StoryOption) *StoryRunner {
	s := &StoryRunner{
		synth:   renderer,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render generates an image for every unit in order. A failed unit is logged,
// reported through onPanel and skipped. When ctx is cancelled the results
// produced so far are returned together with the context error.
func (s *StoryRunner) Render(ctx context.Context, script schema.Script, refs []schema.Character, opts synth.Options, onPanel func(PanelResult)) ([]PanelResult, error) {
	logger := log.With("story", ksuid.New().String())
	logger.Info("rendering script", "panels", len(script), "refs", len(refs))

	results := make([]PanelResult, 0, len(script))
	for i, unit := range script {
		if err := s.limiter.Wait(ctx); err != nil {
			logger.Warn("story rendering stopped", "completed", i, "error", err)
			return results, err
		}

		start := time.Now()
		img, err := s.synth.Synthesize(ctx, unit.Description, refs, opts)
		res := PanelResult{Index: i, Unit: unit, Model: opts.Model, Err: err}
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("story rendering stopped", "completed", i, "error", ctx.Err())
				return results, ctx.Err()
			}
			logger.Error("panel failed, continuing", "panel", i+1, "error", err)
		} else {
			res.Image = &img
			logger.Info("panel rendered", "panel", i+1, "bytes", len(img.Data), "elapsed", time.Since(start))
		}

		results = append(results, res)
		if onPanel != nil {
			onPanel(res)
		}
	}
	return results, nil
}
