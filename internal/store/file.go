package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promptparty/backend/internal/game"
)

// FileStore keeps the room mapping in a single JSON file, rewritten on every
// save.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(ctx context.Context) (map[string]game.State, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]game.State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	rooms := map[string]game.State{}
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return rooms, nil
}

func (f *FileStore) Save(ctx context.Context, rooms map[string]game.State) error {
	data, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("encode rooms: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot truncate the previous
	// snapshot.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(tmp), err)
	}
	return nil
}
