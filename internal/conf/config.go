// config.go: loading, saving and access to the runtime settings
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bitecast/bitecast-go/internal/errors"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the root of the runtime configuration.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // Version from build
	BuildDate string `yaml:"-"` // Build date from build

	Main struct {
		Name      string    // instance name, shows up in the health endpoint
		Timezone  string    // IANA timezone for display formatting
		TimeAs24h bool      // true 24-hour time format, false 12-hour time format
		Log       LogConfig // logging configuration
	}

	Location LocationSettings // dock coordinates

	Tide      TideSettings      // NOAA CO-OPS tide stations and stage thresholds
	Weather   WeatherSettings   // NWS / CO-OPS weather sources
	Marine    MarineSettings    // NWS marine zone products
	Scheduler SchedulerSettings // background job intervals
	Alerts    AlertSettings     // hot-bite alert thresholds

	WebServer struct {
		Debug   bool      // true to enable debug mode
		Enabled bool      // true to enable web server
		Port    string    // port for web server
		Log     LogConfig // logging configuration for web server
	}

	Output struct {
		Database DatabaseSettings
	}

	Telemetry struct {
		Enabled bool   // true to expose the Prometheus endpoint
		Listen  string // host:port for the metrics endpoint
	}

	Sentry struct {
		Enabled bool   // opt-in error reporting
		DSN     string // Sentry project DSN
	}

	Backup BackupConfig // backup configuration
}

// LocationSettings pins the engine to a single dock.
type LocationSettings struct {
	Latitude  float64 // dock latitude
	Longitude float64 // dock longitude
	Name      string  // display name, e.g. "Dauphin Island, AL"
}

// TideSettings selects the NOAA CO-OPS stations and stage thresholds.
type TideSettings struct {
	PredictionStation string  // station for tide predictions
	RealtimeStation   string  // station for water temp / met observations
	HighThresholdFt   float64 // at or above: "high" when movement is flat
	LowThresholdFt    float64 // at or below: "low" when movement is flat
}

// WeatherSettings configures the NWS forecast and CO-OPS observation sources.
type WeatherSettings struct {
	UserAgent     string // identification string NWS asks API users to send
	BackupStation string // fallback CO-OPS station for observations
}

// MarineSettings configures the NWS marine zone products.
type MarineSettings struct {
	Enabled   bool            // fetch marine forecast + alerts
	Zone      string          // NWS marine zone, e.g. AMZ650
	Penalties MarinePenalties // bite score deductions per safety level
}

// MarinePenalties are the bite score deductions applied per marine safety
// level.
type MarinePenalties struct {
	Unsafe  float64 // flat score deduction when conditions are UNSAFE
	Caution float64 // maximum deduction, scaled by safety score
}

// SchedulerSettings holds the background job intervals.
type SchedulerSettings struct {
	FetchIntervalMinutes    int // environment ingest + window rebuild
	SnapshotIntervalMinutes int // environment snapshot capture
	RecalcIntervalMinutes   int // periodic score recalculation
	SnapshotRetentionDays   int // snapshot retention sweep horizon
}

// AlertSettings controls hot-bite alert generation.
type AlertSettings struct {
	Enabled        bool               // evaluate alerts after window rebuilds
	LookaheadHours int                // scan horizon for upcoming windows
	Species        map[string]float64 // species key -> score threshold
}

// DatabaseSettings selects and configures the datastore backend.
type DatabaseSettings struct {
	Type     string // "sqlite" or "mysql"
	Path     string // sqlite database path
	TempDir  string // temporary directory for sqlite backups
	Username string // mysql username
	Password string // mysql password
	Database string // mysql database name
	Host     string // mysql host
	Port     string // mysql port
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled     bool         // true to enable this log
	Path        string       // Path to the log file
	Rotation    RotationType // Type of log rotation
	MaxSize     int64        // Max size in bytes for RotationSize
	RotationDay string       // Day of the week for RotationWeekly
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// BackupRetention defines backup retention policy
type BackupRetention struct {
	MaxAge     string `yaml:"maxage"`     // Duration string like "30d", "6m", "1y"
	MaxBackups int    `yaml:"maxbackups"` // Maximum number of backups to keep
	MinBackups int    `yaml:"minbackups"` // Minimum number of backups to keep regardless of age
}

// BackupTarget defines settings for a backup target
type BackupTarget struct {
	Type     string         `yaml:"type"`     // "local", "ftp", "sftp", "gdrive"
	Enabled  bool           `yaml:"enabled"`  // true to enable this target
	Settings map[string]any `yaml:"settings"` // Target-specific settings
}

// BackupConfig defines the configuration for backups
type BackupConfig struct {
	Enabled   bool            `yaml:"enabled"`   // true to enable backup functionality
	Debug     bool            `yaml:"debug"`     // true to enable debug logging
	Retention BackupRetention `yaml:"retention"` // Backup retention settings
	Targets   []BackupTarget  `yaml:"targets"`   // List of backup targets
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex

	timeLocation     *time.Location
	timeLocationOnce sync.Once
)

// Load reads the configuration file and environment variables into the settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// SyncViper re-unmarshals viper into the settings struct after cobra has
// parsed the command line, so flag values override the config file.
func SyncViper(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := viper.Unmarshal(settings); err != nil {
		log.Printf("error syncing flags into settings: %v", err)
	}
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading embedded config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveSettings saves the current settings to the configuration file atomically.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	settingsCopy := *settingsInstance

	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	if err := SaveYAMLConfig(configPath, &settingsCopy); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	log.Printf("Settings saved successfully to %s", configPath)
	return nil
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig overwrites the YAML configuration file with new settings.
// Comments and key ordering of the original file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first so the replace is atomic
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		// Rename can fail across filesystems, fall back to copy & delete
		if err := moveFile(tempFileName, configPath); err != nil {
			return fmt.Errorf("error copying config file: %w", err)
		}
	}

	return nil
}

// TimeLocation returns the configured display timezone, falling back to UTC
// when the configured name does not resolve.
func TimeLocation() *time.Location {
	timeLocationOnce.Do(func() {
		name := Setting().Main.Timezone
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("Unknown timezone %q, falling back to UTC: %v", name, err)
			loc = time.UTC
		}
		timeLocation = loc
	})
	return timeLocation
}

// ValidateSettings rejects configurations the engine cannot run with.
func ValidateSettings(settings *Settings) error {
	if settings.Location.Latitude < -90 || settings.Location.Latitude > 90 {
		return errors.Newf("location.latitude %f out of range", settings.Location.Latitude).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Location.Longitude < -180 || settings.Location.Longitude > 180 {
		return errors.Newf("location.longitude %f out of range", settings.Location.Longitude).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Tide.PredictionStation == "" {
		return errors.Newf("tide.predictionstation must be set").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Tide.HighThresholdFt <= settings.Tide.LowThresholdFt {
		return errors.Newf("tide.highthresholdft must exceed tide.lowthresholdft").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	switch settings.Output.Database.Type {
	case "sqlite", "mysql":
	default:
		return errors.Newf("output.database.type %q not supported", settings.Output.Database.Type).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	if settings.Scheduler.FetchIntervalMinutes <= 0 ||
		settings.Scheduler.SnapshotIntervalMinutes <= 0 ||
		settings.Scheduler.RecalcIntervalMinutes <= 0 {
		return errors.Newf("scheduler intervals must be positive").
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}
	for species, threshold := range settings.Alerts.Species {
		if threshold < 0 || threshold > 100 {
			return errors.Newf("alerts.species.%s threshold %f out of range", species, threshold).
				Component("conf").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return nil
}
