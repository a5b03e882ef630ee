package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const (
	projectEntity       = "project"
	projectDetailEntity = "project detail"

	// FeaturedProjectsLimit caps the featured projects listing.
	FeaturedProjectsLimit = 3
)

// ProjectFilter narrows the public project listing. Zero values do not filter.
type ProjectFilter struct {
	Featured *bool
	Tech     string
	Search   string
	Page     int
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func publishedProjects(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Project{}).Where("projects.is_published = ?", true)
}

func orderProjects(tx *gorm.DB) *gorm.DB {
	return tx.Order("projects.priority DESC").Order("projects.created_at DESC").Order("projects.id ASC")
}

func withTechnologies(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Technologies", orderTechnologies)
}

// ListPublished returns one page of published projects. The tech filter matches projects
// linked to any technology whose name contains the value; a project appears once however
// many of its technologies match.
func (r *ProjectRepo) ListPublished(ctx context.Context, filter ProjectFilter) (Page[models.Project], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		q := publishedProjects(tx)
		if filter.Featured != nil {
			q = q.Where("projects.is_featured = ?", *filter.Featured)
		}
		if filter.Tech != "" {
			q = q.Where(`EXISTS (SELECT 1 FROM project_technologies pt
				JOIN technologies t ON t.id = pt.technology_id
				WHERE pt.project_id = projects.id AND LOWER(t.name) LIKE ? ESCAPE '\')`, containsPattern(filter.Tech))
		}
		if filter.Search != "" {
			q = matchAny(q, filter.Search, "projects.title", "projects.tagline")
		}
		return q
	}
	shape := func(tx *gorm.DB) *gorm.DB {
		return withTechnologies(orderProjects(tx))
	}
	return paginate[models.Project](ctx, r.db, filter.Page, projectEntity, scope, shape)
}

// ListAll returns one page of every project, drafts included.
func (r *ProjectRepo) ListAll(ctx context.Context, page int) (Page[models.Project], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Project{})
	}
	shape := func(tx *gorm.DB) *gorm.DB {
		return withTechnologies(orderProjects(tx))
	}
	return paginate[models.Project](ctx, r.db, page, projectEntity, scope, shape)
}

func (r *ProjectRepo) Featured(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := withTechnologies(orderProjects(publishedProjects(r.db.WithContext(ctx)))).
		Where("projects.is_featured = ?", true).
		Limit(FeaturedProjectsLimit).
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list featured", projectEntity, err)
	}
	return projects, nil
}

// ViewBySlug counts one view of the published project with slug and returns it with its
// technologies and detail. The increment is a single UPDATE so concurrent views are never lost.
func (r *ProjectRepo) ViewBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).
			Where("slug = ? AND is_published = ?", slug, true).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return withTechnologies(tx).Preload("Detail").First(&project, "slug = ?", slug).Error
	})
	if err != nil {
		return nil, errs.NewDatabaseError("view", projectEntity, err)
	}
	return &project, nil
}

// FindByID returns any project, published or not.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := withTechnologies(r.db.WithContext(ctx)).Preload("Detail").First(&project, "id = ?", id).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", projectEntity, err)
	}
	return &project, nil
}

func (r *ProjectRepo) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	if err := publishedProjects(r.db.WithContext(ctx)).Count(&count).Error; err != nil {
		return 0, errs.NewDatabaseError("count", projectEntity, err)
	}
	return count, nil
}

// Add inserts the project and links technologyIDs. A blank slug is derived from the title.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project, technologyIDs []uuid.UUID) error {
	if problems := project.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		techs, err := findTechnologies(tx, technologyIDs)
		if err != nil {
			return err
		}

		slug, err := resolveSlug(tx, &models.Project{}, projectEntity, project.Slug, project.Title, projectEntity)
		if err != nil {
			return err
		}
		project.Slug = slug

		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			if errs.IsUniqueViolation(err) {
				return errs.NewUniquenessViolation(projectEntity, "slug", project.Slug)
			}
			return err
		}

		if len(techs) > 0 {
			if err := tx.Model(project).Omit("Technologies.*").Association("Technologies").Replace(techs); err != nil {
				return err
			}
		} else {
			project.Technologies = []models.Technology{}
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("create", projectEntity, err)
	}
	return nil
}

// Update writes every editable field of project. The slug, creation time and view count are
// never overwritten. technologyIDs replaces the technology set when non-nil.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project, technologyIDs []uuid.UUID) error {
	if problems := project.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Select("*").Omit("id", "slug", "views", "created_at", clause.Associations).Updates(project)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if technologyIDs != nil {
			techs, err := findTechnologies(tx, technologyIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(project).Omit("Technologies.*").Association("Technologies").Replace(techs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("update", projectEntity, err)
	}
	return nil
}

// Delete removes the project, its detail and its technology links.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM project_technologies WHERE project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectDetail{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", projectEntity, err)
	}
	return nil
}

// UpsertDetail creates or replaces the detail of the project with projectID.
func (r *ProjectRepo) UpsertDetail(ctx context.Context, projectID uuid.UUID, detail *models.ProjectDetail) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewNotFound(projectEntity)
		}

		detail.ProjectID = projectID
		var existing models.ProjectDetail
		err := tx.Where("project_id = ?", projectID).First(&existing).Error
		switch {
		case err == nil:
			detail.ID = existing.ID
			detail.CreatedAt = existing.CreatedAt
			return tx.Select("*").Omit("id", "project_id", "created_at").Updates(detail).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			detail.ID = uuid.Nil
			return tx.Create(detail).Error
		default:
			return err
		}
	})
	if err != nil {
		return errs.NewDatabaseError("save", projectDetailEntity, err)
	}
	return nil
}
