package portfolio

import (
	"encoding/json"
	"os"
	"time"

	"stockpiler/internal/model"
)

// State is the persisted portfolio: every position accumulated from applied
// alerts, plus running totals.
type State struct {
	Holdings      map[string]*model.Holding `json:"holdings"`
	TotalInvested float64                   `json:"total_invested"`
	NumPurchases  int                       `json:"num_purchases"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// LoadState reads the portfolio state from a JSON file. Returns an empty
// state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Holdings: map[string]*model.Holding{}}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Holdings == nil {
		state.Holdings = map[string]*model.Holding{}
	}
	return &state, nil
}

// SaveState writes the portfolio state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
