// snapshots.go: accessors for periodic environment snapshots
package datastore

import (
	"fmt"
	"time"
)

// SaveEnvironmentSnapshot stores a periodic snapshot row.
func (ds *DataStore) SaveEnvironmentSnapshot(s *EnvironmentSnapshot) error {
	if err := ds.DB.Create(s).Error; err != nil {
		return fmt.Errorf("saving environment snapshot: %w", err)
	}
	return nil
}

// LatestEnvironmentSnapshot returns the most recent snapshot.
func (ds *DataStore) LatestEnvironmentSnapshot() (EnvironmentSnapshot, error) {
	var s EnvironmentSnapshot
	if err := ds.DB.Order("timestamp DESC").First(&s).Error; err != nil {
		return EnvironmentSnapshot{}, err
	}
	return s, nil
}

// HasSnapshotSince reports whether any snapshot exists at or after t. Used
// to skip near-duplicate captures.
func (ds *DataStore) HasSnapshotSince(t time.Time) (bool, error) {
	var count int64
	err := ds.DB.Model(&EnvironmentSnapshot{}).
		Where("timestamp >= ?", t).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking for recent snapshot: %w", err)
	}
	return count > 0, nil
}

// DeleteSnapshotsBefore removes snapshots older than t and reports how
// many were deleted.
func (ds *DataStore) DeleteSnapshotsBefore(t time.Time) (int64, error) {
	result := ds.DB.Where("timestamp < ?", t).Delete(&EnvironmentSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("deleting old snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}
