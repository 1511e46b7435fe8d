package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

type Category string

const (
	CategoryGroceries   Category = "groceries"
	CategoryTaxi        Category = "taxi"
	CategoryElectronics Category = "electronics"
	CategoryRestaurant  Category = "restaurant"
	CategoryOther       Category = "other"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryGroceries, CategoryTaxi, CategoryElectronics, CategoryRestaurant, CategoryOther:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Entry is one immutable ledger record. Amount is always positive;
// Direction carries the sign.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Direction Direction       `json:"direction"`
	Category  Category        `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}

// Signed returns the amount with the direction applied.
func (e Entry) Signed() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}
