package port

import (
	"time"

	"coinledger/internal/domain/model"
)

// EventFilter narrows an analytics query. Zero-value fields are ignored.
type EventFilter struct {
	Name string
	From time.Time
	To   time.Time
}

type Analytics interface {
	Track(name string, parameters map[string]string)
	Events(filter EventFilter) []model.Event
}
