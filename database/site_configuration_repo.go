package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const siteConfigurationEntity = "site configuration"

// SiteConfigurationRepo guards the single site configuration row.
type SiteConfigurationRepo struct {
	db *gorm.DB
}

func NewSiteConfigurationRepo(db *gorm.DB) *SiteConfigurationRepo {
	return &SiteConfigurationRepo{db}
}

// Get returns the stored configuration or a not-found error when none exists.
func (r *SiteConfigurationRepo) Get(ctx context.Context) (*models.SiteConfiguration, error) {
	var cfg models.SiteConfiguration
	if err := r.db.WithContext(ctx).First(&cfg, "singleton_key = ?", 1).Error; err != nil {
		return nil, errs.NewDatabaseError("find", siteConfigurationEntity, err)
	}
	return &cfg, nil
}

// GetOrDefault returns the stored configuration, or the fully populated default when none exists.
func (r *SiteConfigurationRepo) GetOrDefault(ctx context.Context) (*models.SiteConfiguration, error) {
	cfg, err := r.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if errs.IsNotFound(err) {
		def := models.DefaultSiteConfiguration()
		return &def, nil
	}
	return nil, err
}

// Create stores the configuration. It fails with a singleton violation when one already exists.
func (r *SiteConfigurationRepo) Create(ctx context.Context, cfg *models.SiteConfiguration) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.SiteConfiguration{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewSingletonViolation(siteConfigurationEntity)
		}
		return tx.Create(cfg).Error
	})
	if err != nil {
		if errs.IsUniqueViolation(err) && !errs.IsSingletonViolation(err) {
			return errs.NewSingletonViolation(siteConfigurationEntity)
		}
		return errs.NewDatabaseError("create", siteConfigurationEntity, err)
	}
	return nil
}

// Update overwrites the stored configuration's editable fields.
func (r *SiteConfigurationRepo) Update(ctx context.Context, cfg *models.SiteConfiguration) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SiteConfiguration
		if err := tx.First(&existing, "singleton_key = ?", 1).Error; err != nil {
			return err
		}
		cfg.ID = existing.ID
		cfg.SingletonKey = existing.SingletonKey
		cfg.CreatedAt = existing.CreatedAt
		return tx.Select("*").Omit("id", "singleton_key", "created_at").Updates(cfg).Error
	})
	if err != nil {
		return errs.NewDatabaseError("update", siteConfigurationEntity, err)
	}
	return nil
}

// Delete always fails: the configuration can be edited but never removed.
func (r *SiteConfigurationRepo) Delete(ctx context.Context) error {
	return errs.NewOperationNotPermitted("delete", siteConfigurationEntity)
}
