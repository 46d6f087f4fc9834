package watchlist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"DrawdownSentinel/internal/model"
)

// fileState mirrors the JSON file. Nil slices mark keys missing from the file.
type fileState struct {
	Symbols   *[]string `json:"symbols"`
	MAEnabled *[]string `json:"ma_enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadState reads the watchlist file. Returns nil state if the file doesn't exist.
func LoadState(filePath string) (*fileState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveState writes the watchlist to a JSON file, creating parent directories.
func SaveState(filePath string, wl *model.Watchlist) error {
	wl.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(wl, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
