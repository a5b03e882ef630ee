package models

import (
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// All lists every persisted model. Join tables are created from the many2many tags.
func All() []interface{} {
	return []interface{}{
		&TechCategory{},
		&Technology{},
		&Project{},
		&ProjectDetail{},
		&BlogPost{},
		&CareerHighlight{},
		&SiteConfiguration{},
		&ContactSubmission{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return eris.Wrap(err, "auto-migrating models")
	}
	return nil
}
