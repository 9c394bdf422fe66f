package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/templui/gallery/internal/config"
)

// SecurityHeaders sets the response hardening headers. Inline scripts only
// run with the request nonce; images may also come from the bucket host.
func SecurityHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	imgSrc := imageSources(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scriptSrc := "'self'"
			nonce := GetNonce(r.Context())
			if nonce != "" {
				scriptSrc = fmt.Sprintf("'self' 'nonce-%s'", nonce)
			}

			csp := strings.Join([]string{
				"default-src 'self'",
				"script-src " + scriptSrc,
				"style-src 'self' 'unsafe-inline'",
				"img-src " + imgSrc,
				"connect-src 'self'",
				"frame-ancestors 'none'",
				"base-uri 'self'",
				"form-action 'self'",
			}, "; ")

			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if cfg.IsProduction() {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func imageSources(cfg *config.Config) string {
	sources := []string{"'self'", "data:", "blob:"}

	for _, raw := range []string{cfg.S3PublicURL, cfg.S3Endpoint} {
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "://") {
			scheme := "https"
			if cfg.StorageDriver == "minio" && !cfg.S3UseSSL {
				scheme = "http"
			}
			raw = scheme + "://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		sources = append(sources, u.Scheme+"://"+u.Host)
	}

	// AWS virtual-hosted style URLs
	if cfg.S3PublicURL == "" && cfg.S3Endpoint == "" && cfg.S3Bucket != "" {
		sources = append(sources, fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region))
	}

	return strings.Join(sources, " ")
}
