package database

import (
	"fmt"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const (
	maxSlugLength   = 250
	maxSlugAttempts = 1000
)

// resolveSlug fills in a free slug for model. A blank slug is derived from title and
// suffixed with -2, -3, ... until free; a supplied slug must already be free.
func resolveSlug(tx *gorm.DB, model interface{}, entity, slug, title, fallback string) (string, error) {
	if slug != "" {
		taken, err := slugTaken(tx, model, slug)
		if err != nil {
			return "", errs.NewDatabaseError("check slug of", entity, err)
		}
		if taken {
			return "", errs.NewUniquenessViolation(entity, "slug", slug)
		}
		return slug, nil
	}

	base := models.Slugify(title)
	if base == "" {
		base = fallback
	}
	if len(base) > maxSlugLength-5 {
		base = trimSlug(base[:maxSlugLength-5])
	}

	candidate := base
	for n := 2; n <= maxSlugAttempts; n++ {
		taken, err := slugTaken(tx, model, candidate)
		if err != nil {
			return "", errs.NewDatabaseError("check slug of", entity, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", errs.NewStorageError("derive slug for", entity, eris.Errorf("no free slug for %q", base))
}

func slugTaken(tx *gorm.DB, model interface{}, slug string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func trimSlug(s string) string {
	for len(s) > 0 && s[len(s)-1] == '-' {
		s = s[:len(s)-1]
	}
	return s
}
