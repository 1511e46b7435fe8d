package model

import "time"

// Rate is the latest known BTC/USD price. There is at most one
// authoritative Rate at any instant; history is not kept.
type Rate struct {
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	ObservedAt time.Time `json:"observed_at"`
}

const QuoteCurrency = "USD"

func NewRate(price float64, observedAt time.Time) Rate {
	return Rate{
		Price:      price,
		Currency:   QuoteCurrency,
		ObservedAt: observedAt,
	}
}
