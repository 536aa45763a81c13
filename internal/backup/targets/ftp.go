package targets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/bitecast/bitecast-go/internal/backup"
)

// FTPTarget stores backups on an FTP server. Uploads go through a
// temporary name so a dropped connection never leaves a partial file
// that looks like a complete backup.
type FTPTarget struct {
	host     string
	port     int
	username string
	password string
	basePath string
	timeout  time.Duration
}

// NewFTPTarget creates an FTP target from its settings map.
func NewFTPTarget(settings map[string]any) (*FTPTarget, error) {
	t := &FTPTarget{port: 21, basePath: "backups", timeout: 30 * time.Second}

	host, ok := settings["host"].(string)
	if !ok || host == "" {
		return nil, fmt.Errorf("ftp: host is required")
	}
	t.host = host

	if port, ok := settings["port"].(int); ok {
		t.port = port
	}
	if username, ok := settings["username"].(string); ok {
		t.username = username
	}
	if password, ok := settings["password"].(string); ok {
		t.password = password
	}
	if p, ok := settings["path"].(string); ok && p != "" {
		t.basePath = strings.TrimRight(p, "/")
	}
	if raw, ok := settings["timeout"].(string); ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("ftp: invalid timeout: %w", err)
		}
		t.timeout = d
	}
	return t, nil
}

// Name returns the target name.
func (t *FTPTarget) Name() string { return "ftp" }

func (t *FTPTarget) connect(ctx context.Context) (*ftp.ServerConn, error) {
	addr := fmt.Sprintf("%s:%d", t.host, t.port)
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(t.timeout))
	if err != nil {
		return nil, fmt.Errorf("ftp: connect: %w", err)
	}
	if err := conn.Login(t.username, t.password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("ftp: login: %w", err)
	}
	return conn, nil
}

// ensureBasePath creates the base directory tree if it does not exist.
func (t *FTPTarget) ensureBasePath(conn *ftp.ServerConn) error {
	if err := conn.ChangeDir(t.basePath); err == nil {
		return nil
	}
	built := ""
	for _, part := range strings.Split(t.basePath, "/") {
		if part == "" {
			continue
		}
		built = path.Join(built, part)
		// MakeDir fails if the directory exists; ChangeDir decides.
		_ = conn.MakeDir(built)
	}
	if err := conn.ChangeDir(t.basePath); err != nil {
		return fmt.Errorf("ftp: create base path: %w", err)
	}
	return nil
}

// Store uploads the snapshot under a temp name, renames it into place,
// then uploads the metadata sidecar.
func (t *FTPTarget) Store(ctx context.Context, sourcePath string, meta *backup.Metadata) error {
	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Quit() }()

	if err := t.ensureBasePath(conn); err != nil {
		return err
	}

	name := path.Base(sourcePath)
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("ftp: open snapshot: %w", err)
	}
	defer src.Close()

	tempName := name + ".tmp"
	if err := conn.Stor(tempName, src); err != nil {
		_ = conn.Delete(tempName)
		return fmt.Errorf("ftp: upload: %w", err)
	}
	if err := conn.Rename(tempName, name); err != nil {
		_ = conn.Delete(tempName)
		return fmt.Errorf("ftp: finalize upload: %w", err)
	}

	sidecar, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("ftp: encode metadata: %w", err)
	}
	if err := conn.Stor(name+backup.MetadataExt, bytes.NewReader(sidecar)); err != nil {
		return fmt.Errorf("ftp: upload metadata: %w", err)
	}
	return nil
}

// List returns the stored backups.
func (t *FTPTarget) List(ctx context.Context) ([]backup.BackupInfo, error) {
	conn, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Quit() }()

	entries, err := conn.List(t.basePath)
	if err != nil {
		return nil, fmt.Errorf("ftp: list backups: %w", err)
	}

	var backups []backup.BackupInfo
	for _, entry := range entries {
		name := entry.Name
		if entry.Type != ftp.EntryTypeFile ||
			strings.HasSuffix(name, backup.MetadataExt) ||
			strings.HasSuffix(name, ".tmp") {
			continue
		}
		info := backup.BackupInfo{Name: name, Target: t.Name()}
		if raw, err := t.retrieve(conn, path.Join(t.basePath, name+backup.MetadataExt)); err == nil {
			_ = json.Unmarshal(raw, &info.Metadata)
		}
		if info.Timestamp.IsZero() {
			info.Timestamp = entry.Time.UTC()
			info.Size = int64(entry.Size)
		}
		backups = append(backups, info)
	}
	return backups, nil
}

func (t *FTPTarget) retrieve(conn *ftp.ServerConn, remotePath string) ([]byte, error) {
	resp, err := conn.Retr(remotePath)
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	return io.ReadAll(resp)
}

// Delete removes a stored backup and its sidecar.
func (t *FTPTarget) Delete(ctx context.Context, name string) error {
	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Delete(path.Join(t.basePath, name)); err != nil {
		return fmt.Errorf("ftp: delete backup: %w", err)
	}
	_ = conn.Delete(path.Join(t.basePath, name+backup.MetadataExt))
	return nil
}

// Validate connects and checks the base path can be entered or created.
func (t *FTPTarget) Validate() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Quit() }()

	return t.ensureBasePath(conn)
}
