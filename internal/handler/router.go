package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/port"
	"github.com/saarthi/loan-assistant-go/internal/service"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	chatSvc *service.ChatService,
	authSvc *service.AuthService,
	docSvc *service.DocumentService,
	users port.UserStore,
	metrics *observability.Metrics,
	sanctionDir string,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(users, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		// Chat & sessions
		r.Post("/chat", chatHandler(chatSvc, logger))
		r.Get("/sessions/{sessionId}", getSessionHandler(chatSvc, logger))
		r.Delete("/sessions/{sessionId}", deleteSessionHandler(chatSvc, logger))

		// Sanction letters
		r.Get("/sanctions/{file}", sanctionDownloadHandler(sanctionDir, logger))

		// Metrics snapshot
		r.Get("/metrics/assistant", assistantMetricsHandler(metrics))

		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authSignupHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				r.Get("/profile", authProfileHandler(authSvc, logger))
			})
		})

		// Documents
		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", documentUploadHandler(docSvc, logger))
			r.Get("/", documentListHandler(docSvc, logger))
			r.Get("/{fileId}/download", documentDownloadHandler(docSvc, logger))
			r.Post("/{fileId}/verify", documentVerifyHandler(docSvc, logger))
		})
	})

	return r
}

// ============================================================
// Probes & metrics
// ============================================================

func healthzHandler(users port.UserStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "saarthi-api", Status: "healthy", LastChecked: now},
		}

		overall := "healthy"
		if users != nil {
			start := time.Now()
			status := "healthy"
			if err := users.Ping(r.Context()); err != nil {
				logger.Warn("healthz: database unreachable", zap.Error(err))
				status = "degraded"
				overall = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name:        "sqlite",
				Status:      status,
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			})
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func assistantMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetAssistantSnapshot())
	}
}

// ============================================================
// Sanction letter download
// ============================================================

func sanctionDownloadHandler(dir string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Base() prevents escaping the sanction directory.
		name := filepath.Base(chi.URLParam(r, "file"))
		if name == "." || name == "/" {
			writeError(w, http.StatusBadRequest, "invalid file name")
			return
		}

		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			writeError(w, http.StatusNotFound, "sanction letter not found")
			return
		}

		w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		http.ServeFile(w, r, path)
	}
}
