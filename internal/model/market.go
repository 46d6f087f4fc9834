package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the closing prices of bars in order.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Period is a look-back window understood by the price-history providers.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
	PeriodMax Period = "max"
)

// DefaultPeriod is used when neither the CLI nor the config names one.
const DefaultPeriod = Period1y

// ValidPeriods lists every accepted period, shortest first.
var ValidPeriods = []Period{
	Period1d, Period5d, Period1mo, Period3mo, Period6mo,
	Period1y, Period2y, Period5y, PeriodMax,
}

// ErrInvalidPeriod is wrapped by ParsePeriod for unknown values.
var ErrInvalidPeriod = errors.New("invalid period")

var periodDisplay = map[Period]string{
	Period1d:  "1 day",
	Period5d:  "5 days",
	Period1mo: "1 month",
	Period3mo: "3 months",
	Period6mo: "6 months",
	Period1y:  "1 year (52 weeks)",
	Period2y:  "2 years",
	Period5y:  "5 years",
	PeriodMax: "all time",
}

// ParsePeriod validates s against ValidPeriods.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := periodDisplay[p]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w %q, valid periods: %s", ErrInvalidPeriod, s, PeriodList())
}

// PeriodList returns the valid periods as a comma separated string.
func PeriodList() string {
	names := make([]string, len(ValidPeriods))
	for i, p := range ValidPeriods {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Display returns a human readable label, falling back to the raw value.
func (p Period) Display() string {
	if d, ok := periodDisplay[p]; ok {
		return d
	}
	return string(p)
}

// Shorter reports whether p covers less history than other.
func (p Period) Shorter(other Period) bool {
	return periodRank(p) < periodRank(other)
}

func periodRank(p Period) int {
	for i, v := range ValidPeriods {
		if v == p {
			return i
		}
	}
	return -1
}
