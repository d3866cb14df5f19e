package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ReadState replaces the KV with the content of the state file at path. A
// missing file leaves the builder empty.
func (b *Builder) ReadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zlog.Info("no state file, starting empty", zap.String("store", b.Name), zap.String("path", path))
			return nil
		}
		return fmt.Errorf("reading state file %s: %w", path, err)
	}

	kv := map[string]Value{}
	if err := json.Unmarshal(data, &kv); err != nil {
		return fmt.Errorf("unmarshalling kv for %s: %w", b.Name, err)
	}

	b.KV = kv
	b.Deltas = nil
	b.lastOrdinal = 0

	zlog.Info("loaded KV from disk", zap.String("store", b.Name), zap.Int("entries", len(b.KV)))
	return nil
}

// WriteState flushes pending deltas and writes the KV to path.
func (b *Builder) WriteState(path string) error {
	b.Flush()

	content, err := json.MarshalIndent(b.KV, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal kv state: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s kv to %s: %w", b.Name, path, err)
	}
	return nil
}
