package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentradar/server/internal/models"
)

// listingColumns are refreshed when an already-known URL is ingested again.
var listingColumns = []string{
	"title", "street", "neighborhood", "property_type", "city", "postal_code",
	"monthly_rent", "bedrooms", "bathrooms", "living_area", "status",
	"listed_at", "scraped_at",
}

// UpsertProperties inserts a batch of listings, updating rows whose URL is
// already present. Used by the batch processor inside a transaction.
func UpsertProperties(tx *gorm.DB, batch []*models.Property) error {
	if len(batch) == 0 {
		return nil
	}

	return tx.Table("properties").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns(listingColumns),
	}).Create(&batch).Error
}
