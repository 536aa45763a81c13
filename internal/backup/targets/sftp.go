package targets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/bitecast/bitecast-go/internal/backup"
)

// SFTPTarget stores backups on a remote host over SFTP.
type SFTPTarget struct {
	host     string
	port     int
	username string
	password string
	keyFile  string
	basePath string
	timeout  time.Duration
}

// NewSFTPTarget creates an SFTP target from its settings map.
func NewSFTPTarget(settings map[string]any) (*SFTPTarget, error) {
	t := &SFTPTarget{port: 22, basePath: "backups", timeout: 30 * time.Second}

	host, ok := settings["host"].(string)
	if !ok || host == "" {
		return nil, fmt.Errorf("sftp: host is required")
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
	if keyFile, ok := settings["key_file"].(string); ok {
		t.keyFile = keyFile
	}
	if p, ok := settings["path"].(string); ok && p != "" {
		t.basePath = strings.TrimRight(p, "/")
	}
	if raw, ok := settings["timeout"].(string); ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("sftp: invalid timeout: %w", err)
		}
		t.timeout = d
	}
	return t, nil
}

// Name returns the target name.
func (t *SFTPTarget) Name() string { return "sftp" }

type sftpConn struct {
	ssh    *ssh.Client
	client *sftp.Client
}

func (c *sftpConn) close() {
	if c.client != nil {
		c.client.Close()
	}
	if c.ssh != nil {
		c.ssh.Close()
	}
}

// connect dials in a goroutine so context cancellation is honored.
func (t *SFTPTarget) connect(ctx context.Context) (*sftpConn, error) {
	auth, err := t.authMethods()
	if err != nil {
		return nil, err
	}

	type result struct {
		conn *sftpConn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		config := &ssh.ClientConfig{
			User: t.username,
			Auth: auth,
			// TODO: support known_hosts pinning via a host_key setting.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
			Timeout:         t.timeout,
		}
		sshConn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", t.host, t.port), config)
		if err != nil {
			done <- result{nil, fmt.Errorf("sftp: connect: %w", err)}
			return
		}
		client, err := sftp.NewClient(sshConn)
		if err != nil {
			sshConn.Close()
			done <- result{nil, fmt.Errorf("sftp: create client: %w", err)}
			return
		}
		done <- result{&sftpConn{ssh: sshConn, client: client}, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.conn, r.err
	}
}

func (t *SFTPTarget) authMethods() ([]ssh.AuthMethod, error) {
	switch {
	case t.keyFile != "":
		key, err := os.ReadFile(t.keyFile)
		if err != nil {
			return nil, fmt.Errorf("sftp: read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("sftp: parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	case t.password != "":
		return []ssh.AuthMethod{ssh.Password(t.password)}, nil
	default:
		return nil, fmt.Errorf("sftp: no authentication method configured")
	}
}

// Store uploads the snapshot and its metadata sidecar.
func (t *SFTPTarget) Store(ctx context.Context, sourcePath string, meta *backup.Metadata) error {
	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.close()

	if err := conn.client.MkdirAll(t.basePath); err != nil {
		return fmt.Errorf("sftp: create directory: %w", err)
	}

	name := path.Base(sourcePath)
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("sftp: open snapshot: %w", err)
	}
	defer src.Close()

	dst, err := conn.client.Create(path.Join(t.basePath, name))
	if err != nil {
		return fmt.Errorf("sftp: create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("sftp: write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("sftp: close file: %w", err)
	}

	sidecar, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("sftp: encode metadata: %w", err)
	}
	metaFile, err := conn.client.Create(path.Join(t.basePath, name+backup.MetadataExt))
	if err != nil {
		return fmt.Errorf("sftp: create metadata: %w", err)
	}
	if _, err := metaFile.Write(sidecar); err != nil {
		metaFile.Close()
		return fmt.Errorf("sftp: write metadata: %w", err)
	}
	return metaFile.Close()
}

// List returns the stored backups.
func (t *SFTPTarget) List(ctx context.Context) ([]backup.BackupInfo, error) {
	conn, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.close()

	entries, err := conn.client.ReadDir(t.basePath)
	if err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return nil, nil
		}
		return nil, fmt.Errorf("sftp: list backups: %w", err)
	}

	var backups []backup.BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, backup.MetadataExt) {
			continue
		}
		info := backup.BackupInfo{Name: name, Target: t.Name()}
		if raw, err := t.readFile(conn.client, path.Join(t.basePath, name+backup.MetadataExt)); err == nil {
			_ = json.Unmarshal(raw, &info.Metadata)
		}
		if info.Timestamp.IsZero() {
			info.Timestamp = entry.ModTime().UTC()
			info.Size = entry.Size()
		}
		backups = append(backups, info)
	}
	return backups, nil
}

func (t *SFTPTarget) readFile(client *sftp.Client, remotePath string) ([]byte, error) {
	f, err := client.Open(remotePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Delete removes a stored backup and its sidecar.
func (t *SFTPTarget) Delete(ctx context.Context, name string) error {
	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.close()

	if err := conn.client.Remove(path.Join(t.basePath, name)); err != nil {
		return fmt.Errorf("sftp: delete backup: %w", err)
	}
	_ = conn.client.Remove(path.Join(t.basePath, name+backup.MetadataExt))
	return nil
}

// Validate connects and checks the base path is writable.
func (t *SFTPTarget) Validate() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	conn, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.close()

	testDir := path.Join(t.basePath, ".write_test")
	if err := conn.client.MkdirAll(testDir); err != nil {
		return fmt.Errorf("sftp: base path not writable: %w", err)
	}
	return conn.client.RemoveDirectory(testDir)
}
