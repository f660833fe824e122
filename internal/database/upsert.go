package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"homeyield/server/internal/models"
)

// OpenGorm opens a gorm handle on the same sqlite file used by the
// read-side Database. The ingest pipeline is the only writer.
func OpenGorm(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// UpsertProperties inserts or replaces catalog rows keyed by zpid.
func UpsertProperties(tx *gorm.DB, properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "zpid"}},
		UpdateAll: true,
	}).Create(properties).Error
}

// UpsertValuations inserts or replaces valuation observations keyed by
// (zpid, date).
func UpsertValuations(tx *gorm.DB, observations []*models.ValuationObservation) error {
	if len(observations) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "zpid"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(observations).Error
}
