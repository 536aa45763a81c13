// Package cmd assembles the bitecast command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	backupcmd "github.com/bitecast/bitecast-go/cmd/backup"
	"github.com/bitecast/bitecast-go/cmd/fetch"
	"github.com/bitecast/bitecast-go/cmd/serve"
	"github.com/bitecast/bitecast-go/internal/conf"
)

var configFile string

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bitecast",
		Short: "BiteCast inshore bite forecasting engine",
		Long: "BiteCast scores fishing conditions for the dock zones at Dauphin Island:\n" +
			"it ingests tides, weather and marine forecasts, learns from logged catches,\n" +
			"and serves bite scores, tips and alerts over an HTTP API.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		fetch.Command(settings),
		backupcmd.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
		}
		// Command-line flags take precedence over the config file.
		conf.SyncViper(settings)
		return nil
	}

	return rootCmd
}

// setupFlags defines the global flags and binds them into viper.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to an alternate config file")
	rootCmd.PersistentFlags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "HTTP API port")
	rootCmd.PersistentFlags().StringVar(&settings.Output.Database.Path, "db-path", viper.GetString("output.database.path"), "Path to the sqlite database")
	rootCmd.PersistentFlags().Float64Var(&settings.Location.Latitude, "latitude", viper.GetFloat64("location.latitude"), "Dock latitude")
	rootCmd.PersistentFlags().Float64Var(&settings.Location.Longitude, "longitude", viper.GetFloat64("location.longitude"), "Dock longitude")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
