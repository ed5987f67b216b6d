package synth

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"panelsmith/pkg/inference"
	"panelsmith/pkg/schema"
)

const (
	DefaultAspectRatio = "16:9"
	DefaultImageSize   = "1K"
	AvatarAspectRatio  = "1:1"
)

const (
	identityDirective = "Keep every character's identity consistent with the character reference images that follow: " +
		"same face, hairstyle, clothing and colors. Each reference is labelled with the character's name."
	noTextInstruction = "Do not include speech bubbles or text in the image itself."
	noTextPortrait    = "IMPORTANT: Do NOT generate any text, speech bubbles, captions, name tags, or typography inside the image. " +
		"The image must be a clean character portrait only."
)

var ErrEmptyPrompt = errors.New("image prompt is empty")

// ImageGenerator produces a single image from an ordered list of parts.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req inference.ImageRequest) (schema.GeneratedImage, error)
}

// Options controls a single image generation. Empty fields use the
// synthesizer defaults.
type Options struct {
	Model       string `json:"model,omitempty" yaml:"model"`
	AspectRatio string `json:"aspectRatio,omitempty" yaml:"aspect_ratio"`
	ImageSize   string `json:"imageSize,omitempty" yaml:"size"`
}

func (o Options) merge(defaults Options) Options {
	return Options{
		Model:       cmp.Or(o.Model, defaults.Model),
		AspectRatio: cmp.Or(o.AspectRatio, defaults.AspectRatio),
		ImageSize:   cmp.Or(o.ImageSize, defaults.ImageSize),
	}
}

// Synthesizer builds multimodal requests that anchor character identity on
// reference avatars.
type Synthesizer struct {
	generator ImageGenerator
	defaults  Options
}

func New(generator ImageGenerator, defaults Options) *Synthesizer {
	defaults.AspectRatio = cmp.Or(defaults.AspectRatio, DefaultAspectRatio)
	defaults.ImageSize = cmp.Or(defaults.ImageSize, DefaultImageSize)
	return &Synthesizer{generator: generator, defaults: defaults}
}

// Defaults returns the options applied when a request leaves them empty.
func (s *Synthesizer) Defaults() Options { return s.defaults }

// BuildParts lays out the request: an identity directive when references are
// present, then label, avatar and description for each reference in order, and
// finally the scene with the no-text instruction.
func BuildParts(prompt string, refs []schema.Character) []*genai.Part {
	parts := make([]*genai.Part, 0, len(refs)*3+2)
	if len(refs) > 0 {
		parts = append(parts, genai.NewPartFromText(identityDirective))
	}
	for _, ref := range refs {
		parts = append(parts, genai.NewPartFromText("Character reference: "+ref.Name))
		if ref.HasAvatar() {
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{
				MIMEType: cmp.Or(ref.AvatarMIME, "image/png"),
				Data:     ref.Avatar,
			}})
		}
		if desc := strings.TrimSpace(ref.Description); desc != "" {
			parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Description of %s: %s", ref.Name, desc)))
		}
	}

	scene := strings.TrimSuffix(strings.TrimSpace(prompt), ".")
	parts = append(parts, genai.NewPartFromText(scene+". "+noTextInstruction))
	return parts
}

// Synthesize generates one panel image. Provider errors are returned as-is;
// the request is never retried or rewritten.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt string, refs []schema.Character, opts Options) (schema.GeneratedImage, error) {
	if strings.TrimSpace(prompt) == "" {
		return schema.GeneratedImage{}, ErrEmptyPrompt
	}
	opts = opts.merge(s.defaults)

	log.Debug("synthesizing panel", "refs", len(refs), "model", opts.Model, "aspect", opts.AspectRatio, "size", opts.ImageSize)
	img, err := s.generator.GenerateImage(ctx, inference.ImageRequest{
		Model:       opts.Model,
		Parts:       BuildParts(prompt, refs),
		AspectRatio: opts.AspectRatio,
		ImageSize:   opts.ImageSize,
	})
	if err != nil {
		return schema.GeneratedImage{}, fmt.Errorf("panel image: %w", err)
	}
	return img, nil
}

// AvatarRequest describes a character portrait. When Reference is set the
// portrait is a restyled version of the person in the reference image.
type AvatarRequest struct {
	Name          string
	Description   string
	Style         schema.Style
	Reference     []byte
	ReferenceMIME string
	Model         string
}

// Avatar generates a square character portrait.
func (s *Synthesizer) Avatar(ctx context.Context, req AvatarRequest) (schema.GeneratedImage, error) {
	style := schema.ParseStyle(string(req.Style))

	prompt := fmt.Sprintf("Create a character portrait. Name: %s. Style: %s. %s", req.Name, style.Prompt(), noTextPortrait)
	if len(req.Reference) > 0 {
		prompt += fmt.Sprintf("\nINSTRUCTION: Transform the person in the attached reference image into a %s character. "+
			"MAINTAIN STRONG FACIAL RESEMBLANCE to the reference image (eyes, nose, mouth shape). "+
			"Keep the hair and clothing similar but render everything in the requested artistic style.", style)
	} else {
		prompt += fmt.Sprintf("\nDescription: %s. Neutral background.", req.Description)
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(req.Reference) > 0 {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{
			MIMEType: cmp.Or(req.ReferenceMIME, "image/png"),
			Data:     req.Reference,
		}})
	}

	img, err := s.generator.GenerateImage(ctx, inference.ImageRequest{
		Model:       cmp.Or(req.Model, s.defaults.Model),
		Parts:       parts,
		AspectRatio: AvatarAspectRatio,
		ImageSize:   s.defaults.ImageSize,
	})
	if err != nil {
		return schema.GeneratedImage{}, fmt.Errorf("character avatar: %w", err)
	}
	return img, nil
}
