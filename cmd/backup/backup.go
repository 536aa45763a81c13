// Package backup provides the backup command.
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitecast/bitecast-go/internal/backup"
	"github.com/bitecast/bitecast-go/internal/backup/sources"
	"github.com/bitecast/bitecast-go/internal/backup/targets"
	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/logging"
)

const backupTimeout = 10 * time.Minute

// Command creates the backup command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the database to the configured targets",
		Long:  "Snapshot the database and ship it to every enabled backup target, then apply the retention policy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(settings)
		},
	}
}

func runBackup(settings *conf.Settings) error {
	logging.Init()

	if !settings.Backup.Enabled {
		return fmt.Errorf("backups are not enabled in the configuration")
	}

	manager := backup.NewManager(&settings.Backup, settings.Version)
	if err := manager.RegisterSource(sources.NewSQLiteSource(settings)); err != nil {
		return fmt.Errorf("failed to register backup source: %w", err)
	}
	for _, cfg := range settings.Backup.Targets {
		if !cfg.Enabled {
			continue
		}
		target, err := targets.New(cfg)
		if err != nil {
			return fmt.Errorf("backup target %s: %w", cfg.Type, err)
		}
		if err := manager.RegisterTarget(target); err != nil {
			return fmt.Errorf("failed to register backup target %s: %w", cfg.Type, err)
		}
	}
	if manager.TargetCount() == 0 {
		return fmt.Errorf("no backup targets enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if err := manager.RunBackup(ctx); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Println("Backup completed successfully")
	return nil
}
