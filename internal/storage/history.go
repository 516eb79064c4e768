package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GazzolaLab/Elastica-RL-control/internal/diagnostics"
)

// History file names inside a run directory.
const (
	ArmDataFile      = "arm_data.json"
	ActivationFile   = "arm_activation.json"
	ObstacleDataFile = "obstacle_data.json"
)

// SaveHistory writes the diagnostics of an episode as three JSON files in
// dir. The obstacle file is skipped when there are no obstacles.
func SaveHistory(dir string, h *diagnostics.History) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, ArmDataFile), h.Arm); err != nil {
		return fmt.Errorf("write %s: %w", ArmDataFile, err)
	}
	if err := writeJSON(filepath.Join(dir, ActivationFile), h.Activation); err != nil {
		return fmt.Errorf("write %s: %w", ActivationFile, err)
	}
	if h.Obstacles.NObstacles > 0 {
		if err := writeJSON(filepath.Join(dir, ObstacleDataFile), h.Obstacles); err != nil {
			return fmt.Errorf("write %s: %w", ObstacleDataFile, err)
		}
	}
	return nil
}

// LoadHistory reads what SaveHistory wrote. A missing obstacle file
// yields an empty obstacle section.
func LoadHistory(dir string) (*diagnostics.History, error) {
	h := &diagnostics.History{}
	if err := readJSON(filepath.Join(dir, ArmDataFile), &h.Arm); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ActivationFile), &h.Activation); err != nil {
		return nil, err
	}
	err := readJSON(filepath.Join(dir, ObstacleDataFile), &h.Obstacles)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return h, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
