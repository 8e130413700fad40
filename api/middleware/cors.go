package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/ducoin/boucherie-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local storefront dev
	"http://localhost:5173", // vite dev server
}

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(defaultCORSOrigins)+1)
	origins = append(origins, defaultCORSOrigins...)
	if client := strings.TrimSpace(cfg.ClientURL); client != "" {
		origins = append(origins, strings.TrimSuffix(client, "/"))
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
