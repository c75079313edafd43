package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/api/handler"
	customMiddleware "github.com/ashishalrashid/AI-Based-Job-Portal/internal/api/middleware"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/realtime"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/repository/postgres"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	db *postgres.DB,
	gateway *ai.Gateway,
	store domain.SessionStore,
	interviewService *service.InterviewService,
	orchestrator *realtime.Orchestrator,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	interviewHandler := handler.NewInterviewHandler(interviewService, cfg.Recording.Folder)

	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(db))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.ServiceHealth(gateway, store))
		r.Route("/interviews/{interviewID}", func(r chi.Router) {
			r.Post("/start", interviewHandler.Start)
			r.Get("/data", interviewHandler.InterviewData)
			r.Get("/recording/{kind}", interviewHandler.InterviewRecording)
		})
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/status", interviewHandler.Status)
			r.Get("/data", interviewHandler.SessionData)
			r.Get("/recording/{kind}", interviewHandler.Recording)
		})
	})

	// The live interview runs over this socket. No chi middleware
	// timeout applies here; the connection is long-lived.
	r.Get("/ws/interview", orchestrator.ServeWS)

	// Finalized recordings are served statically, matching the URL
	// written to the interview record.
	fs := http.StripPrefix("/recordings/", http.FileServer(http.Dir(cfg.Recording.Folder)))
	r.Get("/recordings/*", fs.ServeHTTP)

	return r
}
