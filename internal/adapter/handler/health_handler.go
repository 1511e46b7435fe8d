package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coinledger/internal/domain/port"
)

type HealthHandler struct {
	store  port.EntryStore
	cache  port.RateCache
	logger *slog.Logger
}

func NewHealthHandler(store port.EntryStore, cache port.RateCache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	storeStatus := "healthy"
	cacheStatus := "healthy"
	overallStatus := "healthy"

	if err := h.store.Ping(r.Context()); err != nil {
		storeStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("entry store health check failed", "error", err)
	}

	if err := h.cache.Ping(r.Context()); err != nil {
		cacheStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("rate cache health check failed", "error", err)
	}

	response := map[string]interface{}{
		"status": overallStatus,
		"checks": map[string]string{
			"store": storeStatus,
			"cache": cacheStatus,
		},
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
