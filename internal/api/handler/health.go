package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/auth-service/internal/api/response"
)

// Pinger is a dependency the readiness check waits on
type Pinger interface {
	Ping(ctx context.Context) error
}

// Root answers the bare API prefix
func Root(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"message": "working",
	})
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status of every named dependency
func ReadyCheck(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  name + " not ready",
				})
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
