package creative

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"panelsmith/pkg/inference"
	"panelsmith/pkg/schema"
	"panelsmith/pkg/utils"
)

// DefaultPanels is the script length used when a request does not set one.
const DefaultPanels = 4

var ErrEmptyInput = errors.New("input text is empty")

// TextGenerator runs one text request against whatever providers are available.
type TextGenerator interface {
	GenerateText(ctx context.Context, req inference.Request) (string, error)
}

// ImageDescriber answers a question about an image.
type ImageDescriber interface {
	Describe(ctx context.Context, image []byte, mime, instruction string) (string, error)
}

// Pipeline composes prompts and decodes structured replies for every creative
// text operation.
type Pipeline struct {
	text          TextGenerator
	describer     ImageDescriber
	defaultPanels int
}

type Option func(*Pipeline)

func WithDescriber(d ImageDescriber) Option {
	return func(p *Pipeline) { p.describer = d }
}

func WithDefaultPanels(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.defaultPanels = n
		}
	}
}

func New(text TextGenerator, opts ...Option) *Pipeline {
	p := &Pipeline{text: text, defaultPanels: DefaultPanels}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnhancePrompt expands a short idea into a detailed scene description.
func (p *Pipeline) EnhancePrompt(ctx context.Context, idea string, lang schema.Language) (string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", ErrEmptyInput
	}
	out, err := p.text.GenerateText(ctx, inference.Request{
		System: fmt.Sprintf(enhancePrompt, cmp.Or(lang, schema.English).Name()),
		User:   idea,
	})
	if err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}
	out = strings.Trim(strings.TrimSpace(utils.StripThink(out)), `"`)
	if out == "" {
		return "", fmt.Errorf("enhance prompt: %w", inference.ErrEmptyResponse)
	}
	return out, nil
}

// PanelRequest asks for the caption and image prompt of one panel.
type PanelRequest struct {
	Scene      string             `json:"scene"`
	Characters []schema.Character `json:"characters,omitempty"`
	Style      schema.Style       `json:"style,omitempty"`
	Language   schema.Language    `json:"language,omitempty"`
}

// CharacterLines renders one "name: description" line per character.
func CharacterLines(chars []schema.Character) string {
	lines := make([]string, 0, len(chars))
	for _, c := range chars {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, strings.TrimSpace(c.Description)))
	}
	return strings.Join(lines, "\n")
}

// GeneratePanelText produces the caption and image prompt for a scene in a
// single text call.
func (p *Pipeline) GeneratePanelText(ctx context.Context, req PanelRequest) (schema.PanelData, error) {
	scene := strings.TrimSpace(req.Scene)
	if scene == "" {
		return schema.PanelData{}, ErrEmptyInput
	}
	style := schema.ParseStyle(string(req.Style))
	lang := schema.ParseLanguage(string(req.Language))

	chars := CharacterLines(req.Characters)
	if chars == "" {
		chars = "(none)"
	}

	out, err := p.text.GenerateText(ctx, inference.Request{
		System: fmt.Sprintf(panelPrompt, style, lang.Name(), style.Prompt(), chars),
		User:   fmt.Sprintf(panelCharacters, chars, scene),
		JSON:   true,
		Format: schema.PanelDataFormat,
	})
	if err != nil {
		return schema.PanelData{}, fmt.Errorf("panel text: %w", err)
	}

	data, err := utils.ParseJSON[schema.PanelData](out)
	if err != nil {
		return schema.PanelData{}, fmt.Errorf("panel text: %w", err)
	}
	data.Caption = strings.TrimSpace(data.Caption)
	data.ImagePrompt = strings.TrimSpace(data.ImagePrompt)
	if data.Caption == "" || data.ImagePrompt == "" {
		return schema.PanelData{}, fmt.Errorf("panel text: %w", utils.NewFormatError(out, errors.New("caption and imagePrompt are required")))
	}
	return data, nil
}

// ScriptRequest asks for a multi-panel script.
type ScriptRequest struct {
	Story      string             `json:"story"`
	NumPanels  int                `json:"numPanels,omitempty"`
	Language   schema.Language    `json:"language,omitempty"`
	Persona    string             `json:"persona,omitempty"`
	Style      schema.Style       `json:"style,omitempty"`
	Characters []schema.Character `json:"characters,omitempty"`
}

// GenerateScript breaks a story into an ordered script of NumPanels units.
func (p *Pipeline) GenerateScript(ctx context.Context, req ScriptRequest) (schema.Script, error) {
	story := strings.TrimSpace(req.Story)
	if story == "" {
		return nil, ErrEmptyInput
	}
	n := cmp.Or(max(req.NumPanels, 0), p.defaultPanels)
	lang := schema.ParseLanguage(string(req.Language))

	persona := cmp.Or(strings.TrimSpace(req.Persona), defaultPersona)
	var extra []string
	if req.Style != "" {
		style := schema.ParseStyle(string(req.Style))
		extra = append(extra, fmt.Sprintf(scriptStyle, style.Prompt()))
	}
	extra = append(extra, fmt.Sprintf(languageContract, lang.Name()))
	system := persona + "\n\n" + fmt.Sprintf(scriptPrompt, n, n, utils.Lines(extra...))

	user := story
	if chars := CharacterLines(req.Characters); chars != "" {
		user = "Characters:\n" + chars + "\n\nStory:\n" + story
	}

	out, err := p.text.GenerateText(ctx, inference.Request{
		System: system,
		User:   user,
		JSON:   true,
		Format: schema.ScriptFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}

	script, err := decodeScript(out)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	for i, unit := range script {
		if strings.TrimSpace(unit.Description) == "" {
			return nil, fmt.Errorf("script: %w", utils.NewFormatError(out, fmt.Errorf("panel %d has no description", i+1)))
		}
	}
	switch {
	case len(script) > n:
		log.Warn("script longer than requested, truncating", "requested", n, "returned", len(script))
		script = script[:n]
	case len(script) < n:
		return nil, fmt.Errorf("script: %w", utils.NewFormatError(out, fmt.Errorf("expected %d panels, got %d", n, len(script))))
	}
	return script, nil
}

// decodeScript accepts either a bare array or an object wrapping one array.
// Providers forced into JSON object mode cannot return a top-level array.
// Unknown wrapper keys are tried in document order and only an array of units
// that all carry a description is taken.
func decodeScript(text string) (schema.Script, error) {
	raw, err := utils.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var script schema.Script
	if err := json.Unmarshal(raw, &script); err == nil {
		return script, nil
	}

	var envelope schema.ScriptEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Panels) > 0 {
		return envelope.Panels, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, utils.NewFormatError(text, errors.New("expected a JSON object or array"))
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, utils.NewFormatError(text, err)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, utils.NewFormatError(text, err)
		}
		var candidate schema.Script
		if err := json.Unmarshal(value, &candidate); err == nil && describedUnits(candidate) {
			return candidate, nil
		}
	}
	return nil, utils.NewFormatError(text, errors.New("no panel array found"))
}

func describedUnits(script schema.Script) bool {
	if len(script) == 0 {
		return false
	}
	for _, unit := range script {
		if strings.TrimSpace(unit.Description) == "" {
			return false
		}
	}
	return true
}

// AnalyzeCharacter describes the physical appearance of the character in an image.
func (p *Pipeline) AnalyzeCharacter(ctx context.Context, image []byte, mime string) (string, error) {
	if p.describer == nil {
		return "", fmt.Errorf("analyze character: %w", inference.ErrMissingCredential)
	}
	if len(image) == 0 {
		return "", ErrEmptyInput
	}
	out, err := p.describer.Describe(ctx, image, mime, analyzePrompt)
	if err != nil {
		return "", fmt.Errorf("analyze character: %w", err)
	}
	return out, nil
}
