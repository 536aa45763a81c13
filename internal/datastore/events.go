// events.go: accessors for catches, bait logs and predator sightings
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SaveCatch stores a catch record.
func (ds *DataStore) SaveCatch(c *Catch) error {
	if err := ds.DB.Save(c).Error; err != nil {
		return fmt.Errorf("saving catch: %w", err)
	}
	return nil
}

// GetCatch returns a catch by ID.
func (ds *DataStore) GetCatch(id uint) (Catch, error) {
	var c Catch
	if err := ds.DB.First(&c, id).Error; err != nil {
		return Catch{}, err
	}
	return c, nil
}

// GetCatches returns recent catches, newest first, optionally filtered by
// species and zone. Empty filter strings match everything.
func (ds *DataStore) GetCatches(species, zoneID string, limit int) ([]Catch, error) {
	query := ds.DB.Order("timestamp DESC")
	if species != "" {
		query = query.Where("species = ?", species)
	}
	if zoneID != "" {
		query = query.Where("zone_id = ?", zoneID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var catches []Catch
	if err := query.Find(&catches).Error; err != nil {
		return nil, fmt.Errorf("getting catches: %w", err)
	}
	return catches, nil
}

// DeleteCatch removes a catch record. Returns gorm.ErrRecordNotFound when
// no row matched.
func (ds *DataStore) DeleteCatch(id uint) error {
	result := ds.DB.Delete(&Catch{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting catch: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountCatches counts catches for a species and zone. Empty filter strings
// match everything.
func (ds *DataStore) CountCatches(species, zoneID string) (int64, error) {
	query := ds.DB.Model(&Catch{})
	if species != "" {
		query = query.Where("species = ?", species)
	}
	if zoneID != "" {
		query = query.Where("zone_id = ?", zoneID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting catches: %w", err)
	}
	return count, nil
}

// RecentCatches returns catches since a time, newest first.
func (ds *DataStore) RecentCatches(species, zoneID string, since time.Time) ([]Catch, error) {
	query := ds.DB.Where("timestamp >= ?", since).Order("timestamp DESC")
	if species != "" {
		query = query.Where("species = ?", species)
	}
	if zoneID != "" {
		query = query.Where("zone_id = ?", zoneID)
	}
	var catches []Catch
	if err := query.Find(&catches).Error; err != nil {
		return nil, fmt.Errorf("getting recent catches: %w", err)
	}
	return catches, nil
}

// SaveBaitLog stores a bait catching session.
func (ds *DataStore) SaveBaitLog(b *BaitLog) error {
	if err := ds.DB.Save(b).Error; err != nil {
		return fmt.Errorf("saving bait log: %w", err)
	}
	return nil
}

// GetBaitLogs returns recent bait logs, newest first, optionally filtered.
func (ds *DataStore) GetBaitLogs(baitSpecies, zoneID string, limit int) ([]BaitLog, error) {
	query := ds.DB.Order("timestamp DESC")
	if baitSpecies != "" {
		query = query.Where("bait_species = ?", baitSpecies)
	}
	if zoneID != "" {
		query = query.Where("zone_id = ?", zoneID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []BaitLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("getting bait logs: %w", err)
	}
	return logs, nil
}

// DeleteBaitLog removes a bait log record.
func (ds *DataStore) DeleteBaitLog(id uint) error {
	result := ds.DB.Delete(&BaitLog{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting bait log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecentBaitLogs returns bait logs since a time, newest first.
func (ds *DataStore) RecentBaitLogs(baitSpecies, zoneID string, since time.Time) ([]BaitLog, error) {
	query := ds.DB.Where("timestamp >= ?", since).Order("timestamp DESC")
	if baitSpecies != "" {
		query = query.Where("bait_species = ?", baitSpecies)
	}
	if zoneID != "" {
		query = query.Where("zone_id = ?", zoneID)
	}
	var logs []BaitLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("getting recent bait logs: %w", err)
	}
	return logs, nil
}

// SavePredatorLog stores a predator sighting.
func (ds *DataStore) SavePredatorLog(p *PredatorLog) error {
	if err := ds.DB.Save(p).Error; err != nil {
		return fmt.Errorf("saving predator log: %w", err)
	}
	return nil
}

// GetPredatorLogs returns predator sightings, newest first.
func (ds *DataStore) GetPredatorLogs(limit int) ([]PredatorLog, error) {
	query := ds.DB.Order("time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var logs []PredatorLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("getting predator logs: %w", err)
	}
	return logs, nil
}

// DeletePredatorLog removes a predator sighting.
func (ds *DataStore) DeletePredatorLog(id uint) error {
	result := ds.DB.Delete(&PredatorLog{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting predator log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LatestPredatorSince returns the most recent sighting in the zone at or
// after the given time, gorm.ErrRecordNotFound when there was none.
// Predator suppression is hyperlocal: a dolphin in one zone says nothing
// about the others.
func (ds *DataStore) LatestPredatorSince(zone string, since time.Time) (PredatorLog, error) {
	var p PredatorLog
	if err := ds.DB.Where("zone = ? AND time >= ?", zone, since).Order("time DESC").First(&p).Error; err != nil {
		return PredatorLog{}, err
	}
	return p, nil
}
