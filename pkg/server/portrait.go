package server

import (
	"cmp"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"panelsmith/pkg/schema"
	"panelsmith/pkg/synth"
	"panelsmith/pkg/utils"
)

type analyzeReq struct {
	ImageURL string `json:"imageUrl"`
}

// POST /api/characters/analyze
func (s *Server) handlePostAnalyze(c echo.Context) error {
	var req analyzeReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid json")
	}
	data, mime, err := utils.DecodeDataURL(req.ImageURL)
	if err != nil {
		return httpError(err)
	}
	desc, err := s.Studio.Pipeline.AnalyzeCharacter(c.Request().Context(), data, mime)
	if err != nil {
		log.Error("character analysis failed", "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"description": desc})
}

type avatarReq struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Style        schema.Style `json:"style,omitempty"`
	ReferenceURL string       `json:"referenceUrl,omitempty"`
	Model        string       `json:"model,omitempty"`
}

// POST /api/characters/avatar
func (s *Server) handlePostAvatar(c echo.Context) error {
	var req avatarReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid json")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest("name is required")
	}
	if req.ReferenceURL == "" && strings.TrimSpace(req.Description) == "" {
		return badRequest("description or reference image is required")
	}

	areq := synth.AvatarRequest{
		Name:        req.Name,
		Description: req.Description,
		Style:       req.Style,
		Model:       req.Model,
	}
	if req.ReferenceURL != "" {
		data, mime, err := utils.DecodeDataURL(req.ReferenceURL)
		if err != nil {
			return httpError(err)
		}
		areq.Reference, areq.ReferenceMIME = data, mime
	}

	log.Info("generating avatar", "name", req.Name, "style", req.Style, "reference", len(areq.Reference) > 0)
	img, err := s.Studio.Synth.Avatar(c.Request().Context(), areq)
	if err != nil {
		log.Error("avatar generation failed", "name", req.Name, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, newImageResp(img, cmp.Or(req.Model, s.Studio.ImageModel())))
}
