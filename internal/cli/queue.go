package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/akinori114514/game/internal/game"
)

// QueuedAction is an action recorded while the API was unreachable.
type QueuedAction struct {
	GameID string      `json:"game_id"`
	Action game.Action `json:"action"`
}

func queuePath() (string, error) {
	dir, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func LoadQueue() ([]QueuedAction, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []QueuedAction{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []QueuedAction{}, nil
	}
	var out []QueuedAction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func SaveQueue(items []QueuedAction) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Enqueue(gameID string, a game.Action) error {
	items, err := LoadQueue()
	if err != nil {
		return err
	}
	items = append(items, QueuedAction{GameID: gameID, Action: a})
	return SaveQueue(items)
}

// TakeQueued removes and returns the actions queued for gameID, keeping the rest.
func TakeQueued(gameID string) ([]game.Action, error) {
	items, err := LoadQueue()
	if err != nil {
		return nil, err
	}
	var (
		mine []game.Action
		rest = make([]QueuedAction, 0, len(items))
	)
	for _, it := range items {
		if it.GameID == gameID {
			mine = append(mine, it.Action)
			continue
		}
		rest = append(rest, it)
	}
	if len(mine) == 0 {
		return nil, nil
	}
	return mine, SaveQueue(rest)
}
