package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"coinledger/internal/application/service"
	"coinledger/internal/application/usecase"
	"coinledger/internal/domain/model"
)

type LedgerHandler struct {
	ledger   *service.Ledger
	useCase  *usecase.LedgerUseCase
	feed     *usecase.Feed
	pageSize int
	logger   *slog.Logger
}

func NewLedgerHandler(ledger *service.Ledger, uc *usecase.LedgerUseCase, feed *usecase.Feed, pageSize int, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger:   ledger,
		useCase:  uc,
		feed:     feed,
		pageSize: pageSize,
		logger:   logger,
	}
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Balance decimal.Decimal `json:"balance"`
	}{
		Balance: h.ledger.Balance(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type addEntryRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Type     string          `json:"type"` // "income" or "expense"
}

func (h *LedgerHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var err error
	switch req.Type {
	case "income":
		err = h.useCase.AddFunds(r.Context(), req.Amount)
	case "expense":
		category, perr := model.ParseCategory(req.Category)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		err = h.useCase.AddExpense(r.Context(), req.Amount, category)
	default:
		http.Error(w, "type must be income or expense", http.StatusBadRequest)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInsufficientBalance):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, usecase.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to add ledger entry", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "created"})
}

func (h *LedgerHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", h.pageSize)

	entries := h.ledger.Entries(r.Context(), page, size)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *LedgerHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	h.feed.LoadFirst(r.Context())
	h.writeFeed(w)
}

func (h *LedgerHandler) GetFeedMore(w http.ResponseWriter, r *http.Request) {
	h.feed.LoadMore(r.Context())
	h.writeFeed(w)
}

func (h *LedgerHandler) writeFeed(w http.ResponseWriter) {
	response := struct {
		Sections []usecase.Section `json:"sections"`
		HasMore  bool              `json:"has_more"`
	}{
		Sections: h.feed.Sections(),
		HasMore:  h.feed.HasMore(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
