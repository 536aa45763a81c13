// scores.go: accessors for cached scores, tips and static configuration
package datastore

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetBiteScore returns the cached bite score for a species and zone.
func (ds *DataStore) GetBiteScore(species, zoneID string) (CachedBiteScore, error) {
	var score CachedBiteScore
	err := ds.DB.Where("species = ? AND zone_id = ?", species, zoneID).First(&score).Error
	if err != nil {
		return CachedBiteScore{}, err
	}
	return score, nil
}

// UpsertBiteScore writes the cached bite score for its species/zone key.
func (ds *DataStore) UpsertBiteScore(s *CachedBiteScore) error {
	err := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "species"}, {Name: "zone_id"}},
		UpdateAll: true,
	}).Create(s).Error
	if err != nil {
		return fmt.Errorf("upserting bite score: %w", err)
	}
	return nil
}

// AllBiteScores returns every cached bite score.
func (ds *DataStore) AllBiteScores() ([]CachedBiteScore, error) {
	var scores []CachedBiteScore
	if err := ds.DB.Order("species, zone_id").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("getting bite scores: %w", err)
	}
	return scores, nil
}

// GetBaitScore returns the cached bait score for a bait species and zone.
func (ds *DataStore) GetBaitScore(baitSpecies, zoneID string) (CachedBaitScore, error) {
	var score CachedBaitScore
	err := ds.DB.Where("bait_species = ? AND zone_id = ?", baitSpecies, zoneID).First(&score).Error
	if err != nil {
		return CachedBaitScore{}, err
	}
	return score, nil
}

// UpsertBaitScore writes the cached bait score for its key.
func (ds *DataStore) UpsertBaitScore(s *CachedBaitScore) error {
	err := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bait_species"}, {Name: "zone_id"}},
		UpdateAll: true,
	}).Create(s).Error
	if err != nil {
		return fmt.Errorf("upserting bait score: %w", err)
	}
	return nil
}

// AllBaitScores returns every cached bait score.
func (ds *DataStore) AllBaitScores() ([]CachedBaitScore, error) {
	var scores []CachedBaitScore
	if err := ds.DB.Order("bait_species, zone_id").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("getting bait scores: %w", err)
	}
	return scores, nil
}

// GetTip returns the tip for a species and zone.
func (ds *DataStore) GetTip(species, zoneID string) (SpeciesZoneTip, error) {
	var tip SpeciesZoneTip
	err := ds.DB.Where("species = ? AND zone_id = ?", species, zoneID).First(&tip).Error
	if err != nil {
		return SpeciesZoneTip{}, err
	}
	return tip, nil
}

// UpsertTip writes the tip for its species/zone key.
func (ds *DataStore) UpsertTip(t *SpeciesZoneTip) error {
	err := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "species"}, {Name: "zone_id"}},
		UpdateAll: true,
	}).Create(t).Error
	if err != nil {
		return fmt.Errorf("upserting tip: %w", err)
	}
	return nil
}

// DeleteTip removes the tip for a species and zone. Missing rows are not
// an error.
func (ds *DataStore) DeleteTip(species, zoneID string) error {
	err := ds.DB.Where("species = ? AND zone_id = ?", species, zoneID).
		Delete(&SpeciesZoneTip{}).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("deleting tip: %w", err)
	}
	return nil
}

// AllTips returns every stored tip.
func (ds *DataStore) AllTips() ([]SpeciesZoneTip, error) {
	var tips []SpeciesZoneTip
	if err := ds.DB.Order("species, zone_id").Find(&tips).Error; err != nil {
		return nil, fmt.Errorf("getting tips: %w", err)
	}
	return tips, nil
}

// GetZones returns the static zone rows.
func (ds *DataStore) GetZones() ([]Zone, error) {
	var zones []Zone
	if err := ds.DB.Order("id").Find(&zones).Error; err != nil {
		return nil, fmt.Errorf("getting zones: %w", err)
	}
	return zones, nil
}

// GetSpecies returns the species catalog rows.
func (ds *DataStore) GetSpecies() ([]Species, error) {
	var species []Species
	if err := ds.DB.Order("id").Find(&species).Error; err != nil {
		return nil, fmt.Errorf("getting species: %w", err)
	}
	return species, nil
}
