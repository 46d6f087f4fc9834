package collector

import (
	"context"

	"DrawdownSentinel/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
// Bars are returned in chronological order.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error)
	Name() string
}
