package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"panelsmith/pkg/creative"
	"panelsmith/pkg/provider"
	"panelsmith/pkg/schema"
	"panelsmith/pkg/utils"
)

// PUT /api/credentials
func (s *Server) handlePutCredentials(c echo.Context) error {
	var req map[string]string
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/credentials", "error", err)
		return badRequest("invalid json")
	}
	update := make(map[provider.ID]string, len(req))
	for name, key := range req {
		id, err := provider.Parse(name)
		if err != nil {
			return badRequest(err.Error())
		}
		update[id] = key
	}
	s.Studio.Registry.SetCredentials(update)
	log.Info("credentials updated", "providers", len(update), "hybrid", s.Studio.Registry.IsHybridEligible())
	return c.JSON(http.StatusOK, s.providers())
}

type validateReq struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
}

// POST /api/validate
func (s *Server) handlePostValidate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid json")
	}
	id, err := provider.Parse(req.Provider)
	if err != nil {
		return badRequest(err.Error())
	}
	valid := s.Studio.Validator.Validate(c.Request().Context(), id, strings.TrimSpace(req.Key))
	return c.JSON(http.StatusOK, map[string]any{"provider": id, "valid": valid})
}

type enhanceReq struct {
	Idea     string          `json:"idea"`
	Language schema.Language `json:"language,omitempty"`
}

type enhanceResp struct {
	Prompt string            `json:"prompt"`
	Delta  []utils.WordDelta `json:"delta"`
}

// POST /api/enhance
func (s *Server) handlePostEnhance(c echo.Context) error {
	var req enhanceReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid json")
	}
	out, err := s.Studio.Pipeline.EnhancePrompt(c.Request().Context(), req.Idea, schema.ParseLanguage(string(req.Language)))
	if err != nil {
		log.Error("enhance failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, enhanceResp{Prompt: out, Delta: utils.DiffWords(req.Idea, out)})
}

// POST /api/panel
func (s *Server) handlePostPanel(c echo.Context) error {
	var req creative.PanelRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/panel", "error", err)
		return badRequest("invalid json")
	}
	data, err := s.Studio.Pipeline.GeneratePanelText(c.Request().Context(), req)
	if err != nil {
		log.Error("panel text failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, data)
}

// POST /api/script
func (s *Server) handlePostScript(c echo.Context) error {
	var req creative.ScriptRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid json")
	}
	script, err := s.Studio.Pipeline.GenerateScript(c.Request().Context(), req)
	if err != nil {
		log.Error("script failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, schema.ScriptEnvelope{Panels: script})
}
