package companion

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/taskboard-go/internal/tasks"
)

// LoadMirror reads the local task list. A missing file yields an empty
// list. Both a bare array and a {"tasks": [...]} document are accepted.
func LoadMirror(path string) ([]tasks.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	list, err := tasks.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode mirror %s: %w", path, err)
	}
	return list, nil
}

// SaveMirror writes list to path as an indented bare array, replacing the
// file only once the new contents are on disk.
func SaveMirror(path string, list []tasks.Task) error {
	data, err := json.MarshalIndent(tasks.Records(list), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mirror: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp mirror: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp mirror: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}
