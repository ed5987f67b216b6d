package server

import (
	"cmp"
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"panelsmith/pkg/creative"
	"panelsmith/pkg/schema"
	"panelsmith/pkg/synth"
	"panelsmith/pkg/utils"
)

type imageReq struct {
	Prompt     string             `json:"prompt"`
	Characters []schema.Character `json:"characters,omitempty"`
	synth.Options
}

type imageResp struct {
	URL      string `json:"url"`
	MIMEType string `json:"mimeType"`
	Model    string `json:"model"`
}

func newImageResp(img schema.GeneratedImage, model string) imageResp {
	return imageResp{URL: img.DataURL(), MIMEType: img.MIMEType, Model: model}
}

// POST /api/image
func (s *Server) handlePostImage(c echo.Context) error {
	var req imageReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/image", "error", err)
		return badRequest("invalid json")
	}
	img, err := s.Studio.Synth.Synthesize(c.Request().Context(), req.Prompt, req.Characters, req.Options)
	if err != nil {
		log.Error("image generation failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newImageResp(img, cmp.Or(req.Model, s.Studio.ImageModel())))
}

type storyReq struct {
	creative.ScriptRequest
	// Script skips text generation when the caller already has one.
	Script schema.Script `json:"script,omitempty"`
	Image  synth.Options `json:"image,omitempty"`
}

type panelEvent struct {
	Index       int    `json:"index"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
	imageResp
}

type panelErrorEvent struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// POST /api/story
func (s *Server) handlePostStory(c echo.Context) error {
	var req storyReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/story", "error", err)
		return badRequest("invalid json")
	}
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	stop := context.AfterFunc(s.Ctx, cancel)
	defer stop()
	if s.Ctx.Err() != nil {
		cancel()
	}

	script := req.Script
	if len(script) == 0 {
		var err error
		script, err = s.Studio.Pipeline.GenerateScript(ctx, req.ScriptRequest)
		if err != nil {
			log.Error("story script failed", "error", err)
			return httpError(err)
		}
	}

	w, err := utils.NewSSEWriter(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, utils.ErrJSON(err.Error()))
	}
	defer w.Close()

	if err := w.Event("script", schema.ScriptEnvelope{Panels: script}); err != nil {
		return nil
	}

	opts := req.Image
	opts.Model = cmp.Or(opts.Model, s.Studio.ImageModel())

	results, err := s.Studio.Story.Render(ctx, script, req.Characters, opts, func(r creative.PanelResult) {
		if !r.OK() {
			_ = w.Event("panel_error", panelErrorEvent{Index: r.Index, Error: r.Err.Error()})
			return
		}
		_ = w.Event("panel", panelEvent{
			Index:       r.Index,
			Caption:     r.Unit.Caption,
			Description: r.Unit.Description,
			imageResp:   newImageResp(*r.Image, r.Model),
		})
	})
	if err != nil {
		log.Warn("story cancelled", "rendered", len(results), "error", err)
		return nil
	}

	var failed int
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	return w.Event("done", map[string]int{"rendered": len(results) - failed, "failed": failed})
}
