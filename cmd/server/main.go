package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai/gemini"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/api"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/cleanup"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/config"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/interview"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/realtime"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/recording"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/repository/memory"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/repository/postgres"
	redisrepo "github.com/ashishalrashid/AI-Based-Job-Portal/internal/repository/redis"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/service"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/transcribe"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/worker"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting AI interview server")

	db, err := postgres.NewDB(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	interviewRepo := postgres.NewInterviewRepository(db.Pool)

	// Sessions live in Redis so restarts do not drop live interviews;
	// the in-memory store is the fallback for single-node setups.
	var store domain.SessionStore
	if cfg.Redis.Enabled {
		redisStore, err := redisrepo.NewSessionStore(cfg.Redis, cfg.Interview.SessionTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Warn().Msg("Redis disabled, using in-memory session store")
		store = memory.NewSessionStore(cfg.Interview.SessionTTL)
	}

	provider := gemini.NewProvider(cfg.AI)
	gateway := ai.NewGateway(provider, cfg.AI)
	if !provider.IsConfigured() {
		log.Warn().Msg("No AI API key configured, interviews will use fallback questions")
	}

	questions := interview.NewQuestionEngine(gateway, cfg.Interview.MaxQuestions, cfg.AI.QuestionTimeout)
	evaluator := interview.NewEvaluator(gateway, cfg.AI.EvaluationTimeout)
	writer := recording.NewWriter(cfg.Recording)

	var transcriber *transcribe.Multiplexer
	speechProvider := "none"
	if cfg.Speech.Enabled {
		// No streaming recognizer ships in this build; the multiplexer
		// buffers audio and reports transcription as unavailable until
		// a Factory is plugged in here. Advertise a real provider name
		// only once one is.
		transcriber = transcribe.NewMultiplexer(nil)
	}

	pool := worker.NewPool(8)
	defer pool.Shutdown()

	orchestrator := realtime.NewOrchestrator(
		store,
		interviewRepo,
		questions,
		evaluator,
		writer,
		transcriber,
		pool,
		cfg.Interview,
		cfg.Speech.Enabled,
		speechProvider,
	)

	interviewService := service.NewInterviewService(store, interviewRepo, questions, cfg.Recording.Folder)

	var scheduler *cleanup.Scheduler
	if cfg.Cleanup.Enabled {
		tasks := []cleanup.Task{
			{
				Name: "expired-sessions",
				Run: func(ctx context.Context) int {
					removed := 0
					for id, s := range store.ListAll(ctx) {
						if s.InterviewEnded && time.Since(s.LastActiveAt) > cfg.Cleanup.MaxStreamIdle {
							if store.Remove(ctx, id) {
								removed++
							}
						}
					}
					return removed
				},
			},
		}
		if transcriber != nil {
			tasks = append(tasks, cleanup.Task{
				Name: "idle-transcription-streams",
				Run: func(context.Context) int {
					return transcriber.CleanupInactive(cfg.Cleanup.MaxStreamIdle)
				},
			})
		}
		scheduler = cleanup.NewScheduler(cfg.Cleanup.Interval, tasks...)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := api.NewRouter(cfg, db, gateway, store, interviewService, orchestrator)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
