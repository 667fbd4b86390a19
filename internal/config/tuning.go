package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/noelvortex/internal/interaction"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 100 * time.Millisecond

// LoadTuning reads a TOML tuning profile over the defaults. Keys absent from
// the file keep their default value. An empty path returns the defaults.
func LoadTuning(path string) (interaction.Tuning, error) {
	t := interaction.DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := DecodeTuning(data, &t); err != nil {
		return interaction.DefaultTuning(), fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DecodeTuning decodes TOML into t. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func DecodeTuning(data []byte, t *interaction.Tuning) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(t); err != nil {
		return fmt.Errorf("decode tuning: %w", err)
	}
	return nil
}

// EncodeTuning renders t as TOML.
func EncodeTuning(t interaction.Tuning) ([]byte, error) {
	data, err := toml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode tuning: %w", err)
	}
	return data, nil
}

// WatchTuning reloads the profile whenever it changes and passes it to
// onChange. Invalid files are logged and skipped. It blocks until ctx is
// done. The parent directory is watched so replaced files are seen too.
func WatchTuning(ctx context.Context, path string, onChange func(interaction.Tuning)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve tuning path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			timerCh = timer.C
		case <-timerCh:
			timerCh = nil
			t, err := LoadTuning(abs)
			if err != nil {
				slog.Warn("Tuning reload failed", "path", abs, "error", err)
				continue
			}
			slog.Info("Tuning reloaded", "path", abs)
			onChange(t)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Tuning watcher error", "error", err)
		}
	}
}
