package datastore

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/rules"
)

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlogger.Warn,
			Colorful:      true,
		},
	)
}

// performAutoMigration migrates all tables and seeds the static zone and
// species rows.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&TideData{},
		&WeatherData{},
		&AstronomicalData{},
		&MarineCondition{},
		&ForecastWindow{},
		&SpeciesForecast{},
		&Alert{},
		&Catch{},
		&BaitLog{},
		&PredatorLog{},
		&EnvironmentSnapshot{},
		&LearningBucket{},
		&CachedBiteScore{},
		&CachedBaitScore{},
		&RigEffect{},
		&ZoneConditionEffect{},
		&RigConditionEffect{},
		&SpeciesZoneTip{},
		&Zone{},
		&Species{},
	); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Context("db_type", dbType).
			Build()
	}

	if err := seedStaticRows(db); err != nil {
		return err
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// seedStaticRows inserts the five zones and the species catalog when
// missing. Existing rows are left alone.
func seedStaticRows(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, z := range rules.Zones() {
			row := Zone{
				ID:               zoneID(z.ID),
				Name:             z.Name,
				DepthBand:        depthBand(z),
				HasPilings:       z.HasPilings(),
				HasCenterPilings: z.Structure == "dual_pilings",
				HasRubble:        len(z.Features) > 0 && z.Features[0] == "concrete_rubble",
				HasLight:         z.Lights,
				Description:      z.Description,
			}
			if err := tx.Where(Zone{ID: row.ID}).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}

		for _, key := range rules.AllSpecies {
			row := Species{
				ID:       key,
				Name:     rules.DisplayName(key),
				Tier:     rules.SpeciesTier(key),
				Category: speciesCategory(key),
			}
			if err := tx.Where(Species{ID: row.ID}).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func zoneID(n int) string {
	return strconv.Itoa(n)
}

func depthBand(z rules.DockZone) string {
	switch {
	case z.MaxDepthFt <= 4:
		return "shallow"
	case z.MaxDepthFt <= 6:
		return "medium"
	default:
		return "deep"
	}
}

func speciesCategory(key string) string {
	switch {
	case rules.IsBaitSpecies(key):
		return "bait"
	case rules.SpeciesTier(key) == 1:
		return "tier1_full"
	default:
		return "tier2_simplified"
	}
}
