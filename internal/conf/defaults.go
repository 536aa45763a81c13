// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BiteCast")
	viper.SetDefault("main.timezone", "America/Chicago")
	viper.SetDefault("main.timeas24h", false)
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "bitecast.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", time.Sunday)

	viper.SetDefault("location.latitude", 30.2550)
	viper.SetDefault("location.longitude", -88.0800)
	viper.SetDefault("location.name", "Dauphin Island, AL")

	viper.SetDefault("tide.predictionstation", "8735180")
	viper.SetDefault("tide.realtimestation", "8735180")
	viper.SetDefault("tide.highthresholdft", 1.2)
	viper.SetDefault("tide.lowthresholdft", 0.4)

	viper.SetDefault("weather.useragent", "bitecast-go (github.com/bitecast/bitecast-go)")
	viper.SetDefault("weather.backupstation", "8736897")

	viper.SetDefault("marine.enabled", true)
	viper.SetDefault("marine.zone", "AMZ650")
	viper.SetDefault("marine.penalties.unsafe", 25.0)
	viper.SetDefault("marine.penalties.caution", 30.0)

	viper.SetDefault("scheduler.fetchintervalminutes", 30)
	viper.SetDefault("scheduler.snapshotintervalminutes", 10)
	viper.SetDefault("scheduler.recalcintervalminutes", 30)
	viper.SetDefault("scheduler.snapshotretentiondays", 30)

	viper.SetDefault("alerts.enabled", true)
	viper.SetDefault("alerts.lookaheadhours", 12)
	viper.SetDefault("alerts.species", map[string]float64{
		"speckled_trout": 75,
		"redfish":        75,
		"flounder":       78,
		"sheepshead":     80,
		"black_drum":     82,
	})

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "webui.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 1048576)
	viper.SetDefault("webserver.log.rotationday", time.Sunday)

	viper.SetDefault("output.database.type", "sqlite")
	viper.SetDefault("output.database.path", "bitecast.db")
	viper.SetDefault("output.database.tempdir", "")
	viper.SetDefault("output.database.host", "localhost")
	viper.SetDefault("output.database.port", "3306")
	viper.SetDefault("output.database.username", "bitecast")
	viper.SetDefault("output.database.password", "")
	viper.SetDefault("output.database.database", "bitecast")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")

	viper.SetDefault("backup.enabled", false)
	viper.SetDefault("backup.debug", false)
	viper.SetDefault("backup.retention.maxage", "30d")
	viper.SetDefault("backup.retention.maxbackups", 14)
	viper.SetDefault("backup.retention.minbackups", 3)
	viper.SetDefault("backup.targets", []BackupTarget{})
}
