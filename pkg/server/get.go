package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"panelsmith/pkg/provider"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Panelsmith Generation API",
		"status":  "ok",
	})
}

type providerStatus struct {
	ID            provider.ID       `json:"id"`
	Visual        bool              `json:"visual"`
	Model         string            `json:"model"`
	Endpoint      string            `json:"endpoint,omitempty"`
	JSONMode      provider.JSONMode `json:"jsonMode,omitempty"`
	HasCredential bool              `json:"hasCredential"`
}

type providersResponse struct {
	Providers []providerStatus `json:"providers"`
	Hybrid    bool             `json:"hybrid"`
	Plan      []provider.ID    `json:"plan"`
}

// GET /api/providers
func (s *Server) handleGetProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, s.providers())
}

func (s *Server) providers() providersResponse {
	reg := s.Studio.Registry
	status := reg.Status()
	out := providersResponse{
		Hybrid: reg.IsHybridEligible(),
		Plan:   s.Studio.Orchestrator.Plan(),
	}
	for _, id := range provider.All {
		spec := reg.Spec(id)
		out.Providers = append(out.Providers, providerStatus{
			ID:            id,
			Visual:        id.Kind() == provider.KindVisual,
			Model:         spec.Model,
			Endpoint:      spec.Endpoint,
			JSONMode:      spec.JSONMode,
			HasCredential: status[id],
		})
	}
	if out.Plan == nil {
		out.Plan = []provider.ID{}
	}
	return out
}
