package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds CORS middleware configuration. The defaults allow every
// origin, method and header.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is the preflight cache lifetime in seconds; 0 omits the header.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`
}

// ApplyDefaults fills empty lists with "*".
func (c *CORSConfig) ApplyDefaults() {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"*"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"*"}
	}
}

// CORS sets CORS headers and answers OPTIONS preflight requests.
func CORS(cfg *CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := setCORSHeaders(w.Header(), r, origin, cfg)
			if allowed && r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setCORSHeaders writes CORS response headers if the origin is allowed.
// Wildcard method and header lists echo what the preflight asked for, so
// they keep working when credentials are allowed.
func setCORSHeaders(h http.Header, r *http.Request, origin string, cfg *CORSConfig) bool {
	if origin == "" || !matches(cfg.AllowedOrigins, origin) {
		return false
	}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")

	if methods := allowList(cfg.AllowedMethods, r.Header.Get("Access-Control-Request-Method")); methods != "" {
		h.Set("Access-Control-Allow-Methods", methods)
	}
	if headers := allowList(cfg.AllowedHeaders, r.Header.Get("Access-Control-Request-Headers")); headers != "" {
		h.Set("Access-Control-Allow-Headers", headers)
	}
	if cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
	return true
}

func allowList(configured []string, requested string) string {
	if slices.Contains(configured, "*") {
		if requested != "" {
			return requested
		}
		return "*"
	}
	return strings.Join(configured, ", ")
}

func matches(list []string, v string) bool {
	for _, a := range list {
		if a == v || a == "*" {
			return true
		}
	}
	return false
}
