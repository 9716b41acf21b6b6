package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// CORS returns a middleware that answers preflight requests and sets the
// CORS response headers for the configured origins.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 300
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})
}
