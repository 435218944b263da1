package gorm

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "001_travel_preferences",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&PreferenceRecord{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("travel_preferences")
			},
		},
		{
			ID: "002_ratings",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&RatingRecord{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("ratings")
			},
		},
		{
			ID: "003_recommendation_items",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&RecommendationItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("recommendation_items")
			},
		},
	})
	return m.Migrate()
}
