package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mossdale/dropforge/internal/catalog"
	"github.com/mossdale/dropforge/internal/database"
	"github.com/mossdale/dropforge/internal/drop"
	"github.com/mossdale/dropforge/internal/equip"
	"github.com/mossdale/dropforge/internal/handler"
	"github.com/mossdale/dropforge/internal/ledger"
	"github.com/mossdale/dropforge/internal/logger"
	"github.com/mossdale/dropforge/internal/metrics"
	"github.com/mossdale/dropforge/internal/reaction"
	"github.com/mossdale/dropforge/internal/repository"
	"github.com/mossdale/dropforge/internal/trade"
)

// Services bundles the economy services the router exposes
type Services struct {
	Drop     drop.Service
	Ledger   ledger.Service
	Trade    trade.Service
	Reaction reaction.Service
	Equip    equip.Service
	Catalog  catalog.Service
	Users    repository.User
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, services Services) *Server {
	r := chi.NewRouter()

	// Middleware stack, outermost to innermost
	detector := NewAbuseDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(RateLimitMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Metrics endpoint for Prometheus scraping
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Post creation runs the reward pipeline
		r.Post("/posts", handler.HandleCreatePost(services.Drop))

		// Reaction consumption
		r.Post("/reactions", handler.HandleApplyReaction(services.Reaction))

		// Ownership ledger
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", handler.HandleGetInventory(services.Ledger))
		})
		r.Route("/drops", func(r chi.Router) {
			r.Get("/{dropID}", handler.HandleGetDrop(services.Ledger))
			r.Post("/gift", handler.HandleGift(services.Ledger))
		})

		// Trade offers
		tradeHandler := handler.NewTradeHandler(services.Trade)
		r.Route("/trades", func(r chi.Router) {
			r.Post("/", tradeHandler.HandlePropose)
			r.Get("/", tradeHandler.HandleListOffers)
			r.Get("/{offerID}", tradeHandler.HandleGetOffer)
			r.Post("/{offerID}/accept", tradeHandler.HandleAccept)
			r.Post("/{offerID}/decline", tradeHandler.HandleDecline)
			r.Post("/{offerID}/rescind", tradeHandler.HandleRescind)
		})

		// Equip slots
		r.Route("/equip", func(r chi.Router) {
			r.Get("/", handler.HandleGetEquipped(services.Equip))
			r.Post("/", handler.HandleEquip(services.Equip))
			r.Post("/remove", handler.HandleUnequip(services.Equip))
		})

		// Item catalog
		catalogHandler := handler.NewCatalogHandler(services.Catalog)
		r.Route("/items", func(r chi.Router) {
			r.Get("/", catalogHandler.HandleListItems)
			r.Post("/", catalogHandler.HandleAddItem)
			r.Get("/{itemID}", catalogHandler.HandleGetItem)
			r.Put("/{itemID}/availability", catalogHandler.HandleSetAvailability)
		})

		// User economy profile
		r.Route("/users", func(r chi.Router) {
			r.Post("/", handler.HandleUpsertUser(services.Users))
			r.Get("/{userID}", handler.HandleGetUser(services.Users))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Probes and scrapes are too chatty to log
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info("Server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
