package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/auradecor/storefront-backend/api/responses"
	"github.com/auradecor/storefront-backend/pkg/config"
	pkgerrors "github.com/auradecor/storefront-backend/pkg/errors"
	"github.com/auradecor/storefront-backend/pkg/logger"
)

// Pinger is the health-check surface a backing dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AuraDecor-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing dependencies before reporting readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis Pinger) http.HandlerFunc {
	deps := []struct {
		name string
		dep  Pinger
	}{
		{"database", db},
		{"redis", redis},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AuraDecor-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for _, entry := range deps {
			if entry.dep == nil {
				continue
			}
			if err := entry.dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, entry.name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
