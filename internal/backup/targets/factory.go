package targets

import (
	"fmt"

	"github.com/bitecast/bitecast-go/internal/backup"
	"github.com/bitecast/bitecast-go/internal/conf"
)

// New builds a backup target from its configuration entry.
func New(cfg conf.BackupTarget) (backup.Target, error) {
	switch cfg.Type {
	case "local":
		return NewLocalTarget(cfg.Settings)
	case "ftp":
		return NewFTPTarget(cfg.Settings)
	case "sftp":
		return NewSFTPTarget(cfg.Settings)
	case "gdrive":
		return NewGDriveTarget(cfg.Settings)
	default:
		return nil, fmt.Errorf("unknown backup target type %q", cfg.Type)
	}
}
