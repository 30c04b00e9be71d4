package risk

import (
	"encoding/json"
	"os"
	"time"
)

// State is the persisted form of a Manager, written as JSON so a live run
// survives restarts.
type State struct {
	InitialCapital float64       `json:"initial_capital"`
	CurrentCapital float64       `json:"current_capital"`
	PeakCapital    float64       `json:"peak_capital"`
	DailyPnL       float64       `json:"daily_pnl"`
	TotalPnL       float64       `json:"total_pnl"`
	Trades         []TradeResult `json:"trades"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// LoadState reads the risk state from a JSON file. Returns a zero state if
// the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the risk state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
