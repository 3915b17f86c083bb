package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/akinori114514/game/internal/game"

	"gopkg.in/yaml.v3"
)

const saveFileVersion = 1

// SaveFile is a local, human-editable snapshot used by offline play.
type SaveFile struct {
	Version int            `yaml:"version"`
	SavedAt time.Time      `yaml:"saved_at"`
	Seed    int64          `yaml:"seed"`
	State   game.GameState `yaml:"state"`
}

func WriteSave(path string, seed int64, s game.GameState) error {
	raw, err := yaml.Marshal(SaveFile{
		Version: saveFileVersion,
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Seed:    seed,
		State:   s,
	})
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	return os.WriteFile(path, raw, 0o600)
}

func ReadSave(path string) (SaveFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SaveFile{}, err
	}
	var sf SaveFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return SaveFile{}, fmt.Errorf("decode save %s: %w", path, err)
	}
	if sf.Version != saveFileVersion {
		return SaveFile{}, fmt.Errorf("save %s has version %d, want %d", path, sf.Version, saveFileVersion)
	}
	return sf, nil
}
