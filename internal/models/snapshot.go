package models

import "time"

// Snapshot is the full set of rates sharing one reference date. It is never
// stored as a single object; it is reconstructed from the rate table (or the
// cache) at read time. BaseCurrency is implicit and absent from Rates.
type Snapshot struct {
	ReferenceDate time.Time          `json:"reference_date"`
	Rates         map[string]float64 `json:"rates"`
	Source        string             `json:"source"`
}
