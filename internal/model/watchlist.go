package model

import "time"

// Watchlist is the persisted set of symbols to analyze.
type Watchlist struct {
	Symbols   []string  `json:"symbols"`
	MAEnabled []string  `json:"ma_enabled"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// TrendEnabled reports whether symbol is flagged for moving-average analysis.
func (w Watchlist) TrendEnabled(symbol string) bool {
	for _, s := range w.MAEnabled {
		if s == symbol {
			return true
		}
	}
	return false
}

// Contains reports whether symbol is on the list.
func (w Watchlist) Contains(symbol string) bool {
	for _, s := range w.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
