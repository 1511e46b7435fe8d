package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"coinledger/internal/adapter/storage"
	"coinledger/internal/application/service"
	"coinledger/internal/application/usecase"
)

func newTestHandler(t *testing.T) (*LedgerHandler, *service.Ledger) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := service.NewLedger(storage.NewMemoryAdapter(), log)
	uc := usecase.NewLedgerUseCase(ledger)
	feed := usecase.NewFeed(ledger, 20)
	return NewLedgerHandler(ledger, uc, feed, 20, log), ledger
}

func postEntry(t *testing.T, h *LedgerHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AddEntry(rec, req)
	return rec
}

func TestAddIncomeAndReadBalance(t *testing.T) {
	h, ledger := newTestHandler(t)

	rec := postEntry(t, h, `{"amount":"150.25","type":"income"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	if !ledger.Balance().Equal(decimal.RequireFromString("150.25")) {
		t.Errorf("balance = %s, want 150.25", ledger.Balance())
	}

	out := httptest.NewRecorder()
	h.GetBalance(out, httptest.NewRequest(http.MethodGet, "/balance", nil))

	var resp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(out.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("150.25")) {
		t.Errorf("balance response = %s, want 150.25", resp.Balance)
	}
}

func TestAddExpenseRejectedWhenInsufficient(t *testing.T) {
	h, ledger := newTestHandler(t)

	postEntry(t, h, `{"amount":"50","type":"income"}`)

	rec := postEntry(t, h, `{"amount":"80","category":"taxi","type":"expense"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}
	if !ledger.Balance().Equal(decimal.RequireFromString("50")) {
		t.Errorf("balance after rejected expense = %s, want 50", ledger.Balance())
	}
}

func TestAddEntryValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown type", `{"amount":"10","type":"transfer"}`, http.StatusBadRequest},
		{"unknown category", `{"amount":"10","category":"yachts","type":"expense"}`, http.StatusBadRequest},
		{"zero amount", `{"amount":"0","type":"income"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postEntry(t, h, tc.body); rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestGetEntriesPaged(t *testing.T) {
	h, _ := newTestHandler(t)

	for i := 0; i < 25; i++ {
		postEntry(t, h, `{"amount":"1","type":"income"}`)
	}

	rec := httptest.NewRecorder()
	h.GetEntries(rec, httptest.NewRequest(http.MethodGet, "/entries?page=1&size=20", nil))

	var entries []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("page 1 has %d entries, want 5", len(entries))
	}
}

func TestFeedEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	for i := 0; i < 25; i++ {
		postEntry(t, h, `{"amount":"1","type":"income"}`)
	}

	rec := httptest.NewRecorder()
	h.GetFeed(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	var resp struct {
		Sections []usecase.Section `json:"sections"`
		HasMore  bool              `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.HasMore {
		t.Error("has_more = false after a full first page, want true")
	}

	total := 0
	for _, s := range resp.Sections {
		total += len(s.Entries)
	}
	if total != 20 {
		t.Errorf("feed holds %d entries after first page, want 20", total)
	}

	more := httptest.NewRecorder()
	h.GetFeedMore(more, httptest.NewRequest(http.MethodGet, "/feed/more", nil))
	if err := json.Unmarshal(more.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.HasMore {
		t.Error("has_more = true after the short page, want false")
	}
}
