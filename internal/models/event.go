package models

// RatesRefreshedEvent is published to Kafka after a successful feed refresh.
type RatesRefreshedEvent struct {
	EventID       string `json:"event_id"`
	Timestamp     int64  `json:"timestamp"`
	Stored        int    `json:"stored"`
	Skipped       int    `json:"skipped"`
	ReferenceDate string `json:"reference_date,omitempty"`
	Source        string `json:"source"`
}
