package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/config"
)

// NewCORS builds the CORS wrapper from config. Credentials stay enabled
// because the dashboard sends the JWT in an Authorization header from a
// different origin in development.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
