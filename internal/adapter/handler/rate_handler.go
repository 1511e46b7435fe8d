package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"coinledger/internal/application/service"
)

type RateHandler struct {
	monitor *service.Monitor
	logger  *slog.Logger
}

func NewRateHandler(monitor *service.Monitor, logger *slog.Logger) *RateHandler {
	return &RateHandler{
		monitor: monitor,
		logger:  logger,
	}
}

func (h *RateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	rate, ok := h.monitor.CurrentRate(r.Context())
	if !ok {
		http.Error(w, "no rate available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rate)
}
