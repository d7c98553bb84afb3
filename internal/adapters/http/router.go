// Package http exposes the guest auth and room join API over gin.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/uydev/Hermes/internal/auth"
	"github.com/uydev/Hermes/internal/config"
)

func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)
	r.POST("/auth/guest", h.GuestAuth)
	r.POST("/rooms/join", h.RoomsJoin)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

// NewHandlers wires the token services from config.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{
		Issuer:   &auth.Issuer{Secret: cfg.Secret},
		Verifier: &auth.Verifier{Secret: cfg.Secret},
		Grants: &auth.GrantIssuer{
			MediaURL:  cfg.MediaURL,
			APIKey:    cfg.MediaAPIKey,
			APISecret: cfg.MediaAPISecret,
		},
	}
}
