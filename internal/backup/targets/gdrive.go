package targets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bitecast/bitecast-go/internal/backup"
)

// GDriveTarget stores backups in a Google Drive folder using a service
// account. Backup metadata rides along as Drive appProperties instead of
// a sidecar file.
type GDriveTarget struct {
	folderID    string
	credentials string
	service     *drive.Service
}

// NewGDriveTarget creates a Google Drive target from its settings map.
func NewGDriveTarget(settings map[string]any) (*GDriveTarget, error) {
	t := &GDriveTarget{}

	folderID, ok := settings["folder_id"].(string)
	if !ok || folderID == "" {
		return nil, fmt.Errorf("gdrive: folder_id is required")
	}
	t.folderID = folderID

	credentials, ok := settings["credentials"].(string)
	if !ok || credentials == "" {
		return nil, fmt.Errorf("gdrive: credentials file path is required")
	}
	t.credentials = credentials

	svc, err := drive.NewService(context.Background(),
		option.WithCredentialsFile(credentials),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("gdrive: create client: %w", err)
	}
	t.service = svc
	return t, nil
}

// Name returns the target name.
func (t *GDriveTarget) Name() string { return "gdrive" }

// Store uploads the snapshot into the configured folder.
func (t *GDriveTarget) Store(ctx context.Context, sourcePath string, meta *backup.Metadata) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("gdrive: open snapshot: %w", err)
	}
	defer src.Close()

	file := &drive.File{
		Name:    filepath.Base(sourcePath),
		Parents: []string{t.folderID},
		AppProperties: map[string]string{
			"backup_id": meta.ID,
			"timestamp": meta.Timestamp.Format(time.RFC3339),
			"source":    meta.Source,
			"checksum":  meta.Checksum,
		},
	}
	if _, err := t.service.Files.Create(file).Media(src).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gdrive: upload: %w", err)
	}
	return nil
}

// List returns the stored backups in the folder.
func (t *GDriveTarget) List(ctx context.Context) ([]backup.BackupInfo, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", t.folderID)
	var backups []backup.BackupInfo
	pageToken := ""
	for {
		call := t.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, size, createdTime, appProperties)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("gdrive: list backups: %w", err)
		}
		for _, f := range page.Files {
			info := backup.BackupInfo{Name: f.Name, Target: t.Name()}
			info.Size = f.Size
			if props := f.AppProperties; props != nil {
				info.ID = props["backup_id"]
				info.Source = props["source"]
				info.Checksum = props["checksum"]
				info.Timestamp, _ = time.Parse(time.RFC3339, props["timestamp"])
			}
			if info.Timestamp.IsZero() {
				info.Timestamp, _ = time.Parse(time.RFC3339, f.CreatedTime)
			}
			backups = append(backups, info)
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			return backups, nil
		}
	}
}

// Delete removes a stored backup by name.
func (t *GDriveTarget) Delete(ctx context.Context, name string) error {
	if strings.ContainsAny(name, "'\\") {
		return fmt.Errorf("gdrive: invalid backup name %q", name)
	}
	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false", t.folderID, name)
	page, err := t.service.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gdrive: find backup: %w", err)
	}
	if len(page.Files) == 0 {
		return fmt.Errorf("gdrive: backup %q not found", name)
	}
	for _, f := range page.Files {
		if err := t.service.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("gdrive: delete backup: %w", err)
		}
	}
	return nil
}

// Validate checks the credentials file and folder access.
func (t *GDriveTarget) Validate() error {
	if _, err := os.Stat(t.credentials); err != nil {
		return fmt.Errorf("gdrive: credentials file not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := t.service.Files.Get(t.folderID).Fields("id, mimeType").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 404 {
			return fmt.Errorf("gdrive: folder %q not found or not shared with the service account", t.folderID)
		}
		return fmt.Errorf("gdrive: access folder: %w", err)
	}
	return nil
}
