package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const (
	techCategoryEntity = "tech category"
	technologyEntity   = "technology"
)

func orderTechnologies(tx *gorm.DB) *gorm.DB {
	return tx.Order("technologies.name ASC").Order("technologies.id ASC")
}

type TechCategoryRepo struct {
	db *gorm.DB
}

func NewTechCategoryRepo(db *gorm.DB) *TechCategoryRepo {
	return &TechCategoryRepo{db}
}

// FindAll returns every category ordered by display order then name.
func (r *TechCategoryRepo) FindAll(ctx context.Context) ([]models.TechCategory, error) {
	categories := []models.TechCategory{}
	err := r.db.WithContext(ctx).
		Order("display_order ASC").Order("name ASC").Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", techCategoryEntity, err)
	}
	return categories, nil
}

// TechStack returns the categories that have at least one technology, each with its technologies.
func (r *TechCategoryRepo) TechStack(ctx context.Context) ([]models.TechCategory, error) {
	categories := []models.TechCategory{}
	err := r.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM technologies t WHERE t.category_id = tech_categories.id)").
		Preload("Technologies", orderTechnologies).
		Order("display_order ASC").Order("name ASC").Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", techCategoryEntity, err)
	}
	return categories, nil
}

func (r *TechCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.TechCategory, error) {
	var category models.TechCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", techCategoryEntity, err)
	}
	return &category, nil
}

func (r *TechCategoryRepo) Add(ctx context.Context, category *models.TechCategory) error {
	if problems := category.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}
	err := r.db.WithContext(ctx).Omit("Technologies").Create(category).Error
	if err != nil {
		if errs.IsUniqueViolation(err) {
			return errs.NewUniquenessViolation(techCategoryEntity, "name", category.Name)
		}
		return errs.NewDatabaseError("create", techCategoryEntity, err)
	}
	return nil
}

func (r *TechCategoryRepo) Update(ctx context.Context, category *models.TechCategory) error {
	if problems := category.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}
	res := r.db.WithContext(ctx).Model(&models.TechCategory{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{"name": category.Name, "display_order": category.Order})
	if res.Error != nil {
		if errs.IsUniqueViolation(res.Error) {
			return errs.NewUniquenessViolation(techCategoryEntity, "name", category.Name)
		}
		return errs.NewDatabaseError("update", techCategoryEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound(techCategoryEntity)
	}
	return nil
}

// Delete removes the category together with every technology in it, detaching those
// technologies from projects and career highlights. It returns the names of the deleted technologies.
func (r *TechCategoryRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	removed := []string{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.TechCategory
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}

		var techs []models.Technology
		if err := tx.Where("category_id = ?", id).Order("name ASC").Find(&techs).Error; err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(techs))
		for _, t := range techs {
			ids = append(ids, t.ID)
			removed = append(removed, t.Name)
		}

		if len(ids) > 0 {
			if err := detachTechnologies(tx, ids); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.Technology{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", techCategoryEntity, err)
	}
	return removed, nil
}

func detachTechnologies(tx *gorm.DB, ids []uuid.UUID) error {
	if err := tx.Exec("DELETE FROM project_technologies WHERE technology_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Exec("DELETE FROM career_highlight_technologies WHERE technology_id IN ?", ids).Error
}

type TechnologyRepo struct {
	db *gorm.DB
}

func NewTechnologyRepo(db *gorm.DB) *TechnologyRepo {
	return &TechnologyRepo{db}
}

// FindAll returns every technology with its category, ordered by name.
func (r *TechnologyRepo) FindAll(ctx context.Context) ([]models.Technology, error) {
	techs := []models.Technology{}
	err := orderTechnologies(r.db.WithContext(ctx).Preload("Category")).Find(&techs).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", technologyEntity, err)
	}
	return techs, nil
}

func (r *TechnologyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Technology, error) {
	var tech models.Technology
	if err := r.db.WithContext(ctx).Preload("Category").First(&tech, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", technologyEntity, err)
	}
	return &tech, nil
}

func (r *TechnologyRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Technology{}).Count(&count).Error; err != nil {
		return 0, errs.NewDatabaseError("count", technologyEntity, err)
	}
	return count, nil
}

func (r *TechnologyRepo) Add(ctx context.Context, tech *models.Technology) error {
	if problems := tech.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}
	if err := r.requireCategory(ctx, tech.CategoryID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(tech).Error; err != nil {
		return errs.NewDatabaseError("create", technologyEntity, err)
	}
	return nil
}

func (r *TechnologyRepo) Update(ctx context.Context, tech *models.Technology) error {
	if problems := tech.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}
	if err := r.requireCategory(ctx, tech.CategoryID); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Select("*").Omit("id", "created_at", "Category").Updates(tech)
	if res.Error != nil {
		return errs.NewDatabaseError("update", technologyEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound(technologyEntity)
	}
	return nil
}

func (r *TechnologyRepo) requireCategory(ctx context.Context, categoryID uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TechCategory{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return errs.NewDatabaseError("find", techCategoryEntity, err)
	}
	if count == 0 {
		return errs.NewInvalidFieldError("category_id", "references an unknown category")
	}
	return nil
}

// Delete removes the technology and its project and career highlight links.
func (r *TechnologyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := detachTechnologies(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		res := tx.Delete(&models.Technology{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NewNotFound(technologyEntity)
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", technologyEntity, err)
	}
	return nil
}

// findTechnologies loads the technologies with the given ids and fails validation if any is unknown.
func findTechnologies(tx *gorm.DB, ids []uuid.UUID) ([]models.Technology, error) {
	techs := []models.Technology{}
	if len(ids) == 0 {
		return techs, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if err := tx.Where("id IN ?", ids).Find(&techs).Error; err != nil {
		return nil, err
	}
	if len(techs) != len(unique) {
		return nil, errs.NewInvalidFieldError("technology_ids", "references an unknown technology")
	}
	return techs, nil
}
