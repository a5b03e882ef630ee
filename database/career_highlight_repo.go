package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const careerHighlightEntity = "career highlight"

type CareerHighlightRepo struct {
	db *gorm.DB
}

func NewCareerHighlightRepo(db *gorm.DB) *CareerHighlightRepo {
	return &CareerHighlightRepo{db}
}

// FindAll returns the timeline: current roles first, then higher order, then newest.
func (r *CareerHighlightRepo) FindAll(ctx context.Context) ([]models.CareerHighlight, error) {
	highlights := []models.CareerHighlight{}
	err := r.db.WithContext(ctx).
		Preload("Technologies", orderTechnologies).
		Order("is_current DESC").Order("display_order DESC").Order("created_at DESC").Order("id ASC").
		Find(&highlights).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", careerHighlightEntity, err)
	}
	return highlights, nil
}

func (r *CareerHighlightRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CareerHighlight, error) {
	var highlight models.CareerHighlight
	err := r.db.WithContext(ctx).Preload("Technologies", orderTechnologies).First(&highlight, "id = ?", id).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", careerHighlightEntity, err)
	}
	return &highlight, nil
}

func (r *CareerHighlightRepo) Add(ctx context.Context, highlight *models.CareerHighlight, technologyIDs []uuid.UUID) error {
	if problems := highlight.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		techs, err := findTechnologies(tx, technologyIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(highlight).Error; err != nil {
			return err
		}
		highlight.Technologies = []models.Technology{}
		if len(techs) > 0 {
			return tx.Model(highlight).Omit("Technologies.*").Association("Technologies").Replace(techs)
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("create", careerHighlightEntity, err)
	}
	return nil
}

// Update writes every editable field. technologyIDs replaces the technology set when non-nil.
func (r *CareerHighlightRepo) Update(ctx context.Context, highlight *models.CareerHighlight, technologyIDs []uuid.UUID) error {
	if problems := highlight.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Select("*").Omit("id", "created_at", clause.Associations).Updates(highlight)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if technologyIDs == nil {
			return nil
		}
		techs, err := findTechnologies(tx, technologyIDs)
		if err != nil {
			return err
		}
		return tx.Model(highlight).Omit("Technologies.*").Association("Technologies").Replace(techs)
	})
	if err != nil {
		return errs.NewDatabaseError("update", careerHighlightEntity, err)
	}
	return nil
}

func (r *CareerHighlightRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM career_highlight_technologies WHERE career_highlight_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CareerHighlight{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", careerHighlightEntity, err)
	}
	return nil
}
