package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"coinledger/internal/domain/model"
	"coinledger/internal/domain/port"
)

// ErrFetchFailed is returned when the primary and the fallback endpoint
// are both exhausted. The caller keeps its stale rate.
var ErrFetchFailed = errors.New("rate fetch failed")

// HTTPSource fetches the current price over HTTP. It tries the primary
// endpoint first and falls back once to the secondary endpoint, which
// speaks a different response schema. Both responses are normalized to
// model.Rate at this boundary.
type HTTPSource struct {
	primaryURL  string
	fallbackURL string
	client      *http.Client
	logger      *slog.Logger
}

func NewHTTPSource(primaryURL, fallbackURL string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) (model.Rate, error) {
	price, err := s.fetchPrimary(ctx)
	if err != nil {
		s.logger.Warn("primary rate endpoint failed, trying fallback", "error", err)
		price, err = s.fetchFallback(ctx)
		if err != nil {
			return model.Rate{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
	}
	return model.NewRate(price, time.Now()), nil
}

// primary schema: {"symbol":"BTCUSDT","price":"67012.34"}
type primaryResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (s *HTTPSource) fetchPrimary(ctx context.Context) (float64, error) {
	body, err := s.get(ctx, s.primaryURL)
	if err != nil {
		return 0, err
	}

	var resp primaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode primary response: %w", err)
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse primary price %q: %w", resp.Price, err)
	}
	return price, nil
}

// fallback schemas, tried in order:
//
//	{"bitcoin":{"usd":67012.34}}
//	{"bpi":{"USD":{"rate_float":67012.34}}}   (legacy)
type coingeckoResponse struct {
	Bitcoin struct {
		USD *float64 `json:"usd"`
	} `json:"bitcoin"`
}

type coindeskResponse struct {
	BPI struct {
		USD struct {
			RateFloat *float64 `json:"rate_float"`
		} `json:"USD"`
	} `json:"bpi"`
}

func (s *HTTPSource) fetchFallback(ctx context.Context) (float64, error) {
	body, err := s.get(ctx, s.fallbackURL)
	if err != nil {
		return 0, err
	}

	var cg coingeckoResponse
	if err := json.Unmarshal(body, &cg); err == nil && cg.Bitcoin.USD != nil {
		return *cg.Bitcoin.USD, nil
	}

	var cd coindeskResponse
	if err := json.Unmarshal(body, &cd); err == nil && cd.BPI.USD.RateFloat != nil {
		return *cd.BPI.USD.RateFloat, nil
	}

	return 0, fmt.Errorf("failed to decode fallback response")
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

var _ port.RateSource = (*HTTPSource)(nil)
