// environment.go: accessors for tide, weather, astronomy and marine rows
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReplaceTidePredictions swaps out all tide rows in [start, end) for the
// freshly fetched set, in one transaction.
func (ds *DataStore) ReplaceTidePredictions(start, end time.Time, rows []TideData) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timestamp >= ? AND timestamp < ? AND is_prediction = ?", start, end, true).
			Delete(&TideData{}).Error; err != nil {
			return fmt.Errorf("deleting stale tide predictions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("saving tide predictions: %w", err)
		}
		return nil
	})
}

// GetTideRange returns tide rows in [start, end) ordered by time.
func (ds *DataStore) GetTideRange(start, end time.Time) ([]TideData, error) {
	var rows []TideData
	err := ds.DB.Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting tide range: %w", err)
	}
	return rows, nil
}

// GetTideAround returns tide rows within the window around t.
func (ds *DataStore) GetTideAround(t time.Time, window time.Duration) ([]TideData, error) {
	return ds.GetTideRange(t.Add(-window), t.Add(window))
}

// NextTideExtremes returns upcoming high/low events after the given time.
func (ds *DataStore) NextTideExtremes(after time.Time, limit int) ([]TideData, error) {
	var rows []TideData
	err := ds.DB.Where("timestamp > ? AND tide_type IN ?", after, []string{"H", "L"}).
		Order("timestamp ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting next tide extremes: %w", err)
	}
	return rows, nil
}

// SaveWeatherData upserts hourly weather rows keyed on timestamp.
func (ds *DataStore) SaveWeatherData(rows []WeatherData) error {
	if len(rows) == 0 {
		return nil
	}
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			row := &rows[i]
			var existing WeatherData
			err := tx.Where("timestamp = ? AND is_forecast = ?", row.Timestamp, row.IsForecast).
				First(&existing).Error
			switch {
			case err == nil:
				row.ID = existing.ID
				if err := tx.Save(row).Error; err != nil {
					return fmt.Errorf("updating weather row: %w", err)
				}
			case err == gorm.ErrRecordNotFound:
				if err := tx.Create(row).Error; err != nil {
					return fmt.Errorf("saving weather row: %w", err)
				}
			default:
				return fmt.Errorf("looking up weather row: %w", err)
			}
		}
		return nil
	})
}

// WeatherForTime returns the weather row closest to t.
func (ds *DataStore) WeatherForTime(t time.Time) (WeatherData, error) {
	var before, after WeatherData
	errBefore := ds.DB.Where("timestamp <= ?", t).Order("timestamp DESC").First(&before).Error
	errAfter := ds.DB.Where("timestamp > ?", t).Order("timestamp ASC").First(&after).Error

	switch {
	case errBefore == nil && errAfter == nil:
		if t.Sub(before.Timestamp) <= after.Timestamp.Sub(t) {
			return before, nil
		}
		return after, nil
	case errBefore == nil:
		return before, nil
	case errAfter == nil:
		return after, nil
	default:
		return WeatherData{}, fmt.Errorf("no weather data near %s: %w", t, errBefore)
	}
}

// LatestWeather returns the most recently fetched weather row.
func (ds *DataStore) LatestWeather() (WeatherData, error) {
	var row WeatherData
	if err := ds.DB.Order("fetched_at DESC").First(&row).Error; err != nil {
		return WeatherData{}, err
	}
	return row, nil
}

// UpsertAstronomicalData writes the day's sun and moon data, replacing any
// existing row for the date.
func (ds *DataStore) UpsertAstronomicalData(day *AstronomicalData) error {
	return ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(day).Error
}

// GetAstronomicalData returns the sun/moon row for a date.
func (ds *DataStore) GetAstronomicalData(date time.Time) (AstronomicalData, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var row AstronomicalData
	if err := ds.DB.Where("date = ?", day).First(&row).Error; err != nil {
		return AstronomicalData{}, err
	}
	return row, nil
}

// SaveMarineCondition stores a marine forecast/safety row.
func (ds *DataStore) SaveMarineCondition(mc *MarineCondition) error {
	if err := ds.DB.Create(mc).Error; err != nil {
		return fmt.Errorf("saving marine condition: %w", err)
	}
	return nil
}

// LatestMarineCondition returns the most recent marine row.
func (ds *DataStore) LatestMarineCondition() (MarineCondition, error) {
	var row MarineCondition
	if err := ds.DB.Order("fetched_at DESC").First(&row).Error; err != nil {
		return MarineCondition{}, err
	}
	return row, nil
}
