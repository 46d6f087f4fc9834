package watchlist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"DrawdownSentinel/internal/model"
)

var (
	ErrEmptySymbol    = errors.New("symbol is empty")
	ErrSymbolExists   = errors.New("symbol already on watchlist")
	ErrSymbolNotFound = errors.New("symbol not on watchlist")
	ErrAlreadyEnabled = errors.New("trend analysis already enabled")
	ErrNotEnabled     = errors.New("trend analysis not enabled")
)

// Store holds the watchlist with concurrency safety and persists every change.
type Store struct {
	mu       sync.Mutex
	wl       model.Watchlist
	filePath string
}

// NewStore loads the watchlist from filePath, initializing missing keys from
// the defaults. An unreadable or malformed file is replaced by the defaults.
func NewStore(filePath string, defaultSymbols, defaultMA []string) (*Store, error) {
	st, err := LoadState(filePath)
	if err != nil {
		log.Warnf("watchlist %s unreadable, resetting to defaults: %v", filePath, err)
		st = nil
	}

	wl := model.Watchlist{}
	if st != nil && st.Symbols != nil {
		wl.Symbols = normalizeAll(*st.Symbols)
	} else {
		wl.Symbols = normalizeAll(defaultSymbols)
	}
	if st != nil && st.MAEnabled != nil {
		wl.MAEnabled = normalizeAll(*st.MAEnabled)
	} else {
		wl.MAEnabled = normalizeAll(defaultMA)
	}

	s := &Store{filePath: filePath}
	if err := s.commit(wl); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns a copy of the current watchlist.
func (s *Store) Snapshot() model.Watchlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyList()
}

func (s *Store) copyList() model.Watchlist {
	return model.Watchlist{
		Symbols:   append([]string{}, s.wl.Symbols...),
		MAEnabled: append([]string{}, s.wl.MAEnabled...),
		UpdatedAt: s.wl.UpdatedAt,
	}
}

// Add appends symbol to the watchlist.
func (s *Store) Add(symbol string) (string, error) {
	sym := Normalize(symbol)
	if sym == "" {
		return "", ErrEmptySymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wl.Contains(sym) {
		return sym, fmt.Errorf("%s: %w", sym, ErrSymbolExists)
	}
	next := s.copyList()
	next.Symbols = append(next.Symbols, sym)
	return sym, s.commit(next)
}

// Remove drops symbol from the watchlist and from the trend list.
func (s *Store) Remove(symbol string) (string, error) {
	sym := Normalize(symbol)
	if sym == "" {
		return "", ErrEmptySymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.wl.Contains(sym) {
		return sym, fmt.Errorf("%s: %w", sym, ErrSymbolNotFound)
	}
	next := s.copyList()
	next.Symbols = without(next.Symbols, sym)
	next.MAEnabled = without(next.MAEnabled, sym)
	return sym, s.commit(next)
}

// SetTrend enables or disables moving-average analysis for a listed symbol.
func (s *Store) SetTrend(symbol string, enabled bool) (string, error) {
	sym := Normalize(symbol)
	if sym == "" {
		return "", ErrEmptySymbol
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.wl.Contains(sym) {
		return sym, fmt.Errorf("%s: %w", sym, ErrSymbolNotFound)
	}
	on := s.wl.TrendEnabled(sym)
	next := s.copyList()
	switch {
	case enabled && on:
		return sym, fmt.Errorf("%s: %w", sym, ErrAlreadyEnabled)
	case !enabled && !on:
		return sym, fmt.Errorf("%s: %w", sym, ErrNotEnabled)
	case enabled:
		next.MAEnabled = append(next.MAEnabled, sym)
	default:
		next.MAEnabled = without(next.MAEnabled, sym)
	}
	return sym, s.commit(next)
}

// commit persists next and makes it current only when the write succeeds.
func (s *Store) commit(next model.Watchlist) error {
	if err := SaveState(s.filePath, &next); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	s.wl = next
	return nil
}

// Normalize trims and upper-cases a ticker.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func normalizeAll(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		n := Normalize(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func without(list []string, sym string) []string {
	out := list[:0]
	for _, s := range list {
		if s != sym {
			out = append(out, s)
		}
	}
	return out
}
