// Package targets provides backup storage target implementations.
package targets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitecast/bitecast-go/internal/backup"
)

const localDirMode = 0o700

// LocalTarget stores backups in a directory on the local filesystem,
// each with a JSON metadata sidecar.
type LocalTarget struct {
	path string
}

// NewLocalTarget creates a local filesystem target from its settings map.
func NewLocalTarget(settings map[string]any) (*LocalTarget, error) {
	path, ok := settings["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("local: path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("local: resolve path: %w", err)
	}
	return &LocalTarget{path: abs}, nil
}

// Name returns the target name.
func (t *LocalTarget) Name() string { return "local" }

// Store copies the snapshot and writes its metadata sidecar. The copy
// goes through a temp file so a partial write never looks like a backup.
func (t *LocalTarget) Store(ctx context.Context, sourcePath string, meta *backup.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(t.path, localDirMode); err != nil {
		return fmt.Errorf("local: create directory: %w", err)
	}

	name := filepath.Base(sourcePath)
	finalPath := filepath.Join(t.path, name)
	tempPath := finalPath + ".tmp"

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("local: open snapshot: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("local: create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return fmt.Errorf("local: copy snapshot: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return fmt.Errorf("local: sync file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("local: close file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("local: finalize file: %w", err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("local: encode metadata: %w", err)
	}
	if err := os.WriteFile(finalPath+backup.MetadataExt, sidecar, 0o600); err != nil {
		return fmt.Errorf("local: write metadata: %w", err)
	}
	return nil
}

// List returns the stored backups, reading metadata from sidecars when
// present and falling back to file stats.
func (t *LocalTarget) List(ctx context.Context) ([]backup.BackupInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("local: list backups: %w", err)
	}

	var backups []backup.BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, backup.MetadataExt) || strings.HasSuffix(name, ".tmp") {
			continue
		}
		info := backup.BackupInfo{Name: name, Target: t.Name()}
		if raw, err := os.ReadFile(filepath.Join(t.path, name+backup.MetadataExt)); err == nil {
			_ = json.Unmarshal(raw, &info.Metadata)
		}
		if info.Timestamp.IsZero() {
			if fi, err := entry.Info(); err == nil {
				info.Timestamp = fi.ModTime().UTC()
				info.Size = fi.Size()
			}
		}
		backups = append(backups, info)
	}
	return backups, nil
}

// Delete removes a stored backup and its sidecar.
func (t *LocalTarget) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("local: invalid backup name %q", name)
	}
	if err := os.Remove(filepath.Join(t.path, name)); err != nil {
		return fmt.Errorf("local: delete backup: %w", err)
	}
	// Sidecar may be missing for backups made by older versions.
	_ = os.Remove(filepath.Join(t.path, name+backup.MetadataExt))
	return nil
}

// Validate checks the directory is writable.
func (t *LocalTarget) Validate() error {
	if err := os.MkdirAll(t.path, localDirMode); err != nil {
		return fmt.Errorf("local: create directory: %w", err)
	}
	probe, err := os.CreateTemp(t.path, ".write_test-*")
	if err != nil {
		return fmt.Errorf("local: directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}
