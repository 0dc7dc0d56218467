package util

import (
	"net/http"
	"strings"
)

// WithSecurityHeaders adds API-safe security response headers.
// Handlers that serve embeddable documents call AllowFraming.
func WithSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")

		if r.TLS != nil || strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// AllowFraming relaxes the frame headers so browsers can embed the response,
// e.g. a PDF viewer iframe on the configured origins.
func AllowFraming(w http.ResponseWriter, origins []string) {
	w.Header().Del("X-Frame-Options")
	ancestors := "'self'"
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" && o != "*" {
			ancestors += " " + o
		}
	}
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors "+ancestors)
}
