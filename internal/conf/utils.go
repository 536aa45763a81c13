// conf/utils.go filesystem helpers for config handling
package conf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bitecast/bitecast-go/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns OS specific config paths in lookup order.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "bitecast"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "bitecast"),
			"/etc/bitecast",
			exeDir,
		}
	}

	return configPaths, nil
}

// FindConfigFile locates the active config.yaml on disk.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		configPath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", errors.Newf("config.yaml not found in any config path").
		Component("conf").
		Category(errors.CategoryNotFound).
		Build()
}

// moveFile copies src to dst and removes src. Used when rename fails
// across filesystems.
func moveFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("error copying file contents: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("error closing destination file: %w", err)
	}

	return os.Remove(src)
}
