package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mossdale/dropforge/internal/logger"
)

const (
	errMsgUnauthorized    = "Unauthorized"
	errMsgTooManyRequests = "Too Many Requests"

	headerAPIKey       = "X-API-Key"
	headerForwardedFor = "X-Forwarded-For"
)

// publicPaths bypass authentication: health probes and metrics scraping.
var publicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
}

// AuthMiddleware validates the API key on every non-public route
func AuthMiddleware(apiKey string, trustedProxies []string, detector *AbuseDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range publicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			providedKey := r.Header.Get(headerAPIKey)

			// Constant time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				detector.RecordFailedAuth(ip)

				logger.FromContext(r.Context()).Warn("Authentication failed",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, errMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware limits request body size
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// AbuseDetector tracks failed auth and request rates per IP over a rolling
// five minute window.
type AbuseDetector struct {
	mu               sync.Mutex
	failedAuthByIP   map[string]int
	requestCountByIP map[string]int
	lastResetTime    time.Time
}

// NewAbuseDetector creates a new AbuseDetector
func NewAbuseDetector() *AbuseDetector {
	return &AbuseDetector{
		failedAuthByIP:   make(map[string]int),
		requestCountByIP: make(map[string]int),
		lastResetTime:    time.Now(),
	}
}

// RecordFailedAuth records a failed authentication attempt
func (d *AbuseDetector) RecordFailedAuth(ip string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetCountsIfNeeded()
	d.failedAuthByIP[ip]++

	if d.failedAuthByIP[ip] >= 5 {
		slog.Warn("Multiple failed authentication attempts",
			"ip", ip, "count", d.failedAuthByIP[ip])
	}
}

// RecordRequest counts a request and reports false once the IP exceeds the
// window limit.
func (d *AbuseDetector) RecordRequest(ip string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetCountsIfNeeded()
	d.requestCountByIP[ip]++

	if d.requestCountByIP[ip] > 1000 {
		if d.requestCountByIP[ip]%100 == 0 { // avoid log spam
			slog.Warn("Blocking high request rate",
				"ip", ip, "count_in_window", d.requestCountByIP[ip])
		}
		return false
	}
	return true
}

// Caller must hold the mutex.
func (d *AbuseDetector) resetCountsIfNeeded() {
	if time.Since(d.lastResetTime) > 5*time.Minute {
		d.requestCountByIP = make(map[string]int)
		d.failedAuthByIP = make(map[string]int)
		d.lastResetTime = time.Now()
	}
}

// RateLimitMiddleware rejects requests from IPs over the rate window
func RateLimitMiddleware(trustedProxies []string, detector *AbuseDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r, trustedProxies)
			if !detector.RecordRequest(ip) {
				http.Error(w, errMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractIP gets the client IP, honoring X-Forwarded-For only when the
// direct peer is a trusted proxy.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	isTrusted := false
	for _, proxy := range trustedProxies {
		if proxy == remoteIP {
			isTrusted = true
			break
		}
	}

	if isTrusted {
		forwarded := r.Header.Get(headerForwardedFor)
		if forwarded != "" {
			// Rightmost entry is the hop the trusted proxy saw directly.
			ips := strings.Split(forwarded, ",")
			return strings.TrimSpace(ips[len(ips)-1])
		}
	}

	return remoteIP
}

// SecurityHeadersMiddleware adds standard security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
