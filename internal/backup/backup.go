// Package backup copies the engine's database to one or more storage
// targets and prunes old copies according to the retention policy. A
// source produces a consistent snapshot file, targets store it together
// with a JSON metadata sidecar.
package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/logging"
)

// MetadataVersion is the current sidecar format version.
const MetadataVersion = 1

// MetadataExt is the suffix of the sidecar written next to each backup.
const MetadataExt = ".meta.json"

const defaultRunTimeout = 10 * time.Minute

// Source produces a snapshot file to back up. The returned path lives in
// a temporary directory the manager removes after the run.
type Source interface {
	Name() string
	Backup(ctx context.Context) (string, error)
	Validate() error
}

// Target stores, lists and deletes backup files.
type Target interface {
	Name() string
	Store(ctx context.Context, sourcePath string, meta *Metadata) error
	List(ctx context.Context) ([]BackupInfo, error)
	Delete(ctx context.Context, name string) error
	Validate() error
}

// Metadata describes one backup run. It is serialized as the sidecar.
type Metadata struct {
	Version    int       `json:"version"`
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Size       int64     `json:"size"`
	Source     string    `json:"source"`
	AppVersion string    `json:"app_version,omitempty"`
	Checksum   string    `json:"checksum,omitempty"`
}

// BackupInfo is a stored backup as reported by a target.
type BackupInfo struct {
	Metadata
	Name   string // file name within the target
	Target string // target that holds it
}

// Manager runs backups across registered sources and targets.
type Manager struct {
	config  *conf.BackupConfig
	version string

	mu      sync.RWMutex
	sources []Source
	targets []Target

	logger *slog.Logger
}

// NewManager creates a backup manager for the given configuration.
func NewManager(config *conf.BackupConfig, appVersion string) *Manager {
	return &Manager{
		config:  config,
		version: appVersion,
		logger:  logging.ForService("backup"),
	}
}

// RegisterSource validates and adds a backup source.
func (m *Manager) RegisterSource(source Source) error {
	if err := source.Validate(); err != nil {
		return errors.Newf("backup source %s: %v", source.Name(), err).
			Component("backup").
			Category(errors.CategoryValidation).
			Build()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
	return nil
}

// RegisterTarget validates and adds a backup target.
func (m *Manager) RegisterTarget(target Target) error {
	if err := target.Validate(); err != nil {
		return errors.Newf("backup target %s: %v", target.Name(), err).
			Component("backup").
			Category(errors.CategoryValidation).
			Build()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, target)
	return nil
}

// TargetCount reports how many targets are registered.
func (m *Manager) TargetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.targets)
}

// RunBackup snapshots every source and ships the result to every target,
// then enforces retention. Per-target failures are collected so one
// unreachable target does not abort the others.
func (m *Manager) RunBackup(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.sources) == 0 {
		return errors.Newf("no backup sources registered").
			Component("backup").
			Category(errors.CategoryValidation).
			Build()
	}
	if len(m.targets) == 0 {
		return errors.Newf("no backup targets registered").
			Component("backup").
			Category(errors.CategoryValidation).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	var errs []error
	for _, source := range m.sources {
		if err := m.backupSource(ctx, source); err != nil {
			errs = append(errs, err)
		}
	}
	for _, target := range m.targets {
		if err := m.enforceRetention(ctx, target); err != nil {
			m.logger.Warn("retention sweep failed",
				"target", target.Name(), "error", err)
		}
	}
	return combine(errs)
}

func (m *Manager) backupSource(ctx context.Context, source Source) error {
	start := time.Now()
	snapshotPath, err := source.Backup(ctx)
	if err != nil {
		return errors.New(err).
			Component("backup").
			Category(errors.CategoryBackup).
			Context("source", source.Name()).
			Build()
	}
	defer os.RemoveAll(filepath.Dir(snapshotPath))

	meta, err := m.describeSnapshot(snapshotPath, source.Name())
	if err != nil {
		return err
	}

	var errs []error
	for _, target := range m.targets {
		if err := target.Store(ctx, snapshotPath, meta); err != nil {
			m.logger.Error("backup store failed",
				"source", source.Name(), "target", target.Name(), "error", err)
			errs = append(errs, fmt.Errorf("target %s: %w", target.Name(), err))
			continue
		}
		m.logger.Info("backup stored",
			"source", source.Name(),
			"target", target.Name(),
			"file", filepath.Base(snapshotPath),
			"size_bytes", meta.Size,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return combine(errs)
}

// describeSnapshot builds the metadata record for a snapshot file,
// including its SHA-256 checksum.
func (m *Manager) describeSnapshot(path, sourceName string) (*Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("checksum snapshot: %w", err)
	}

	return &Metadata{
		Version:    MetadataVersion,
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Size:       info.Size(),
		Source:     sourceName,
		AppVersion: m.version,
		Checksum:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// enforceRetention deletes stored backups that exceed the configured
// count or age, always keeping the MinBackups newest copies.
func (m *Manager) enforceRetention(ctx context.Context, target Target) error {
	r := m.config.Retention
	if r.MaxBackups <= 0 && r.MaxAge == "" {
		return nil
	}

	stored, err := target.List(ctx)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	slices.SortFunc(stored, func(a, b BackupInfo) int {
		return b.Timestamp.Compare(a.Timestamp) // newest first
	})

	maxAge, err := ParseRetentionAge(r.MaxAge)
	if err != nil {
		return err
	}

	minKeep := max(r.MinBackups, 0)
	now := time.Now().UTC()
	for i, b := range stored {
		if i < minKeep {
			continue
		}
		tooMany := r.MaxBackups > 0 && i >= r.MaxBackups
		tooOld := maxAge > 0 && now.Sub(b.Timestamp) > maxAge
		if !tooMany && !tooOld {
			continue
		}
		if err := target.Delete(ctx, b.Name); err != nil {
			return fmt.Errorf("delete %s: %w", b.Name, err)
		}
		m.logger.Info("pruned backup",
			"target", target.Name(), "file", b.Name, "age_days", int(now.Sub(b.Timestamp).Hours()/24))
	}
	return nil
}

// ParseRetentionAge parses retention ages like "30d", "6m" or "1y".
// An empty string means no age limit.
func ParseRetentionAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid retention age %q", s)
	}
	day := 24 * time.Hour
	switch unit {
	case 'd':
		return time.Duration(n) * day, nil
	case 'w':
		return time.Duration(n) * 7 * day, nil
	case 'm':
		return time.Duration(n) * 30 * day, nil
	case 'y':
		return time.Duration(n) * 365 * day, nil
	default:
		return 0, fmt.Errorf("invalid retention age unit %q", s)
	}
}

func combine(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		parts := make([]string, len(errs))
		for i, err := range errs {
			parts[i] = err.Error()
		}
		return fmt.Errorf("%d backup errors: %s", len(errs), strings.Join(parts, "; "))
	}
}
