// forecast.go: accessors for forecast windows and hot-bite alerts
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ReplaceForecastWindows replaces the whole forecast set. Windows are
// always recomputed together, so the simple delete-and-insert keeps the
// table consistent.
func (ds *DataStore) ReplaceForecastWindows(windows []ForecastWindow) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&SpeciesForecast{}).Error; err != nil {
			return fmt.Errorf("deleting species forecasts: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&ForecastWindow{}).Error; err != nil {
			return fmt.Errorf("deleting forecast windows: %w", err)
		}
		for i := range windows {
			if err := tx.Create(&windows[i]).Error; err != nil {
				return fmt.Errorf("saving forecast window: %w", err)
			}
		}
		return nil
	})
}

// GetForecastWindows returns windows overlapping [from, to), species
// forecasts preloaded.
func (ds *DataStore) GetForecastWindows(from, to time.Time) ([]ForecastWindow, error) {
	var windows []ForecastWindow
	err := ds.DB.Preload("SpeciesForecasts").
		Where("end_time > ? AND start_time < ?", from, to).
		Order("start_time ASC").
		Find(&windows).Error
	if err != nil {
		return nil, fmt.Errorf("getting forecast windows: %w", err)
	}
	return windows, nil
}

// LatestForecastWindow returns the most recently computed window, for
// freshness checks.
func (ds *DataStore) LatestForecastWindow() (ForecastWindow, error) {
	var window ForecastWindow
	err := ds.DB.Order("computed_at DESC").First(&window).Error
	if err != nil {
		return ForecastWindow{}, err
	}
	return window, nil
}

// ActiveAlerts returns undismissed alerts whose window has not ended.
func (ds *DataStore) ActiveAlerts(now time.Time) ([]Alert, error) {
	var alerts []Alert
	err := ds.DB.Where("is_active = ? AND window_end > ?", true, now).
		Order("window_start ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("getting active alerts: %w", err)
	}
	return alerts, nil
}

// FindActiveAlert looks up an existing active alert for the same species
// and window start, for dedupe on refresh.
func (ds *DataStore) FindActiveAlert(species string, windowStart time.Time) (Alert, error) {
	var alert Alert
	err := ds.DB.Where("species = ? AND window_start = ? AND is_active = ?",
		species, windowStart, true).First(&alert).Error
	if err != nil {
		return Alert{}, err
	}
	return alert, nil
}

// SaveAlert creates or updates an alert row.
func (ds *DataStore) SaveAlert(alert *Alert) error {
	if err := ds.DB.Save(alert).Error; err != nil {
		return fmt.Errorf("saving alert: %w", err)
	}
	return nil
}

// DismissAlert marks the alert inactive and records when.
func (ds *DataStore) DismissAlert(alertID string) error {
	now := time.Now()
	result := ds.DB.Model(&Alert{}).
		Where("alert_id = ? AND is_active = ?", alertID, true).
		Updates(map[string]any{"is_active": false, "dismissed_at": &now})
	if result.Error != nil {
		return fmt.Errorf("dismissing alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateExpiredAlerts marks alerts whose window has passed as inactive
// and reports how many were touched.
func (ds *DataStore) DeactivateExpiredAlerts(now time.Time) (int64, error) {
	result := ds.DB.Model(&Alert{}).
		Where("is_active = ? AND window_end <= ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("deactivating expired alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
