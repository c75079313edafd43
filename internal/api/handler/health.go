package handler

import (
	"net/http"

	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/ai"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/api/response"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/domain"
	"github.com/ashishalrashid/AI-Based-Job-Portal/internal/repository/postgres"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database connectivity
func ReadyCheck(db *postgres.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "database not ready")
				return
			}
		}
		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ServiceHealth reports the AI gateway and session state alongside
// liveness, for dashboards and the frontend's degraded-mode banner.
func ServiceHealth(gateway *ai.Gateway, store domain.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := 0
		ended := 0
		for _, s := range store.ListAll(r.Context()) {
			if s.InterviewEnded {
				ended++
			} else {
				active++
			}
		}
		response.OK(w, map[string]any{
			"status":          "ok",
			"ai_breaker":      gateway.BreakerState().String(),
			"active_sessions": active,
			"ended_sessions":  ended,
		})
	}
}
