package model

import "time"

// Event is one tracked analytics record.
type Event struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
	Date       time.Time         `json:"date"`
}
