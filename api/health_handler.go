package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const healthPingTimeout = 2 * time.Second

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	repo        database.CompanyRepo
	startupTime time.Time
}

func newHealthHandler(repo database.CompanyRepo, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		repo:        repo,
		startupTime: startupTime,
	}
}

// getHealth reports whether the company store is reachable
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		uptime := time.Since(h.startupTime).Round(time.Second).String()
		if err := h.repo.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("store ping failed")
			h.responder.WriteJSONStatus(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Uptime: uptime,
				Error:  err.Error(),
			})
			return
		}

		h.responder.WriteJSON(w, HealthResponse{Status: "ok", Uptime: uptime})
	}
}
