package fund

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"PortfolioSentinel/internal/model"
)

// ErrNoCheckpoint reports that no checkpoint document exists on disk. Its
// absence is the sole trigger for sampling a fresh one from the live
// portfolio.
var ErrNoCheckpoint = errors.New("checkpoint file does not exist")

// LoadCheckpoint reads the checkpoint from a JSON file.
func LoadCheckpoint(filePath string) (*model.Checkpoint, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCheckpoint
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp model.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	return &cp, nil
}

// SaveCheckpoint writes the checkpoint to a JSON file.
func SaveCheckpoint(filePath string, cp *model.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return os.WriteFile(filePath, data, 0644)
}
