// learning.go: accessors for the learned adjustment state
package datastore

import (
	"fmt"
)

// GetOrCreateLearningBucket returns the bucket for the key, creating it
// with zero delta when missing.
func (ds *DataStore) GetOrCreateLearningBucket(species, zone, tideStage, timeBlock string) (LearningBucket, error) {
	bucket := LearningBucket{
		Species:        species,
		Zone:           zone,
		TideStage:      tideStage,
		TimeOfDayBlock: timeBlock,
	}
	err := ds.DB.Where(LearningBucket{
		Species:        species,
		Zone:           zone,
		TideStage:      tideStage,
		TimeOfDayBlock: timeBlock,
	}).FirstOrCreate(&bucket).Error
	if err != nil {
		return LearningBucket{}, fmt.Errorf("getting learning bucket: %w", err)
	}
	return bucket, nil
}

// SaveLearningBucket persists an updated bucket.
func (ds *DataStore) SaveLearningBucket(b *LearningBucket) error {
	if err := ds.DB.Save(b).Error; err != nil {
		return fmt.Errorf("saving learning bucket: %w", err)
	}
	return nil
}

// GetLearningBuckets returns the buckets for a species and zone.
func (ds *DataStore) GetLearningBuckets(species, zone string) ([]LearningBucket, error) {
	var buckets []LearningBucket
	err := ds.DB.Where("species = ? AND zone = ?", species, zone).Find(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("getting learning buckets: %w", err)
	}
	return buckets, nil
}

// AllLearningBuckets returns every bucket, for the decay sweep.
func (ds *DataStore) AllLearningBuckets() ([]LearningBucket, error) {
	var buckets []LearningBucket
	if err := ds.DB.Find(&buckets).Error; err != nil {
		return nil, fmt.Errorf("getting all learning buckets: %w", err)
	}
	return buckets, nil
}

// GetOrCreateRigEffect returns the rig effect row for the key, creating it
// when missing.
func (ds *DataStore) GetOrCreateRigEffect(species, zoneID, rigType string) (RigEffect, error) {
	effect := RigEffect{Species: species, ZoneID: zoneID, RigType: rigType}
	err := ds.DB.Where(RigEffect{Species: species, ZoneID: zoneID, RigType: rigType}).
		FirstOrCreate(&effect).Error
	if err != nil {
		return RigEffect{}, fmt.Errorf("getting rig effect: %w", err)
	}
	return effect, nil
}

// SaveRigEffect persists an updated rig effect.
func (ds *DataStore) SaveRigEffect(e *RigEffect) error {
	if err := ds.DB.Save(e).Error; err != nil {
		return fmt.Errorf("saving rig effect: %w", err)
	}
	return nil
}

// GetRigEffects returns rig effects for a species and zone, strongest
// first. Equal weights break toward the rig used most recently.
func (ds *DataStore) GetRigEffects(species, zoneID string) ([]RigEffect, error) {
	var effects []RigEffect
	err := ds.DB.Where("species = ? AND zone_id = ?", species, zoneID).
		Order("weight DESC, last_used DESC").
		Find(&effects).Error
	if err != nil {
		return nil, fmt.Errorf("getting rig effects: %w", err)
	}
	return effects, nil
}

// GetOrCreateZoneConditionEffect returns the zone condition row for the
// key, creating it when missing.
func (ds *DataStore) GetOrCreateZoneConditionEffect(key ZoneConditionKey) (ZoneConditionEffect, error) {
	effect := ZoneConditionEffect{
		Species:     key.Species,
		ZoneID:      key.ZoneID,
		TideBand:    key.TideBand,
		ClarityBand: key.ClarityBand,
		WindBand:    key.WindBand,
		CurrentBand: key.CurrentBand,
	}
	err := ds.DB.Where(ZoneConditionEffect{
		Species:     key.Species,
		ZoneID:      key.ZoneID,
		TideBand:    key.TideBand,
		ClarityBand: key.ClarityBand,
		WindBand:    key.WindBand,
		CurrentBand: key.CurrentBand,
	}).FirstOrCreate(&effect).Error
	if err != nil {
		return ZoneConditionEffect{}, fmt.Errorf("getting zone condition effect: %w", err)
	}
	return effect, nil
}

// SaveZoneConditionEffect persists an updated zone condition effect.
func (ds *DataStore) SaveZoneConditionEffect(e *ZoneConditionEffect) error {
	if err := ds.DB.Save(e).Error; err != nil {
		return fmt.Errorf("saving zone condition effect: %w", err)
	}
	return nil
}

// GetZoneConditionEffects returns zone condition effects for a species and
// zone, strongest first.
func (ds *DataStore) GetZoneConditionEffects(species, zoneID string) ([]ZoneConditionEffect, error) {
	var effects []ZoneConditionEffect
	err := ds.DB.Where("species = ? AND zone_id = ?", species, zoneID).
		Order("weight DESC").
		Find(&effects).Error
	if err != nil {
		return nil, fmt.Errorf("getting zone condition effects: %w", err)
	}
	return effects, nil
}

// GetOrCreateRigConditionEffect returns the rig condition row for the key,
// creating it when missing.
func (ds *DataStore) GetOrCreateRigConditionEffect(key RigConditionKey) (RigConditionEffect, error) {
	effect := RigConditionEffect{
		Species:     key.Species,
		RigType:     key.RigType,
		TideBand:    key.TideBand,
		ClarityBand: key.ClarityBand,
	}
	err := ds.DB.Where(RigConditionEffect{
		Species:     key.Species,
		RigType:     key.RigType,
		TideBand:    key.TideBand,
		ClarityBand: key.ClarityBand,
	}).FirstOrCreate(&effect).Error
	if err != nil {
		return RigConditionEffect{}, fmt.Errorf("getting rig condition effect: %w", err)
	}
	return effect, nil
}

// SaveRigConditionEffect persists an updated rig condition effect.
func (ds *DataStore) SaveRigConditionEffect(e *RigConditionEffect) error {
	if err := ds.DB.Save(e).Error; err != nil {
		return fmt.Errorf("saving rig condition effect: %w", err)
	}
	return nil
}

// GetRigConditionEffects returns rig condition effects for a species,
// strongest first.
func (ds *DataStore) GetRigConditionEffects(species string) ([]RigConditionEffect, error) {
	var effects []RigConditionEffect
	err := ds.DB.Where("species = ?", species).
		Order("weight DESC").
		Find(&effects).Error
	if err != nil {
		return nil, fmt.Errorf("getting rig condition effects: %w", err)
	}
	return effects, nil
}
