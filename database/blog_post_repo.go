package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const (
	blogPostEntity = "blog post"

	// RecentPostsLimit caps the recent posts listing.
	RecentPostsLimit = 3
)

// BlogPostFilter narrows the public post listing. Zero values do not filter. An unknown
// category matches nothing.
type BlogPostFilter struct {
	Category string
	Featured *bool
	Search   string
	Page     int
}

type CategoryCount struct {
	Category models.BlogCategory `json:"category"`
	Label    string              `json:"label"`
	Count    int64               `json:"count"`
}

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

func publishedPosts(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.BlogPost{}).Where("blog_posts.is_published = ?", true)
}

func orderPosts(tx *gorm.DB) *gorm.DB {
	return tx.Order("blog_posts.published_date DESC").Order("blog_posts.id ASC")
}

func (r *BlogPostRepo) ListPublished(ctx context.Context, filter BlogPostFilter) (Page[models.BlogPost], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		q := publishedPosts(tx)
		if filter.Category != "" {
			q = q.Where("blog_posts.category = ?", filter.Category)
		}
		if filter.Featured != nil {
			q = q.Where("blog_posts.is_featured = ?", *filter.Featured)
		}
		if filter.Search != "" {
			q = matchAny(q, filter.Search, "blog_posts.title", "blog_posts.excerpt", "blog_posts.content")
		}
		return q
	}
	return paginate[models.BlogPost](ctx, r.db, filter.Page, blogPostEntity, scope, orderPosts)
}

// ListAll returns one page of every post, drafts included.
func (r *BlogPostRepo) ListAll(ctx context.Context, page int) (Page[models.BlogPost], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.BlogPost{})
	}
	return paginate[models.BlogPost](ctx, r.db, page, blogPostEntity, scope, orderPosts)
}

func (r *BlogPostRepo) Recent(ctx context.Context) ([]models.BlogPost, error) {
	posts := []models.BlogPost{}
	err := orderPosts(publishedPosts(r.db.WithContext(ctx))).Limit(RecentPostsLimit).Find(&posts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list recent", blogPostEntity, err)
	}
	return posts, nil
}

// CategoryCounts returns the number of published posts in every category, zero counts included.
func (r *BlogPostRepo) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := publishedPosts(r.db.WithContext(ctx)).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.NewDatabaseError("count categories of", blogPostEntity, err)
	}

	byCategory := make(map[string]int64, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row.Count
	}

	counts := make([]CategoryCount, 0, len(models.BlogCategories))
	for _, c := range models.BlogCategories {
		counts = append(counts, CategoryCount{Category: c, Label: c.Label(), Count: byCategory[string(c)]})
	}
	return counts, nil
}

// ViewBySlug counts one view of the published post with slug and returns it.
func (r *BlogPostRepo) ViewBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BlogPost{}).
			Where("slug = ? AND is_published = ?", slug, true).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&post, "slug = ?", slug).Error
	})
	if err != nil {
		return nil, errs.NewDatabaseError("view", blogPostEntity, err)
	}
	return &post, nil
}

func (r *BlogPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", blogPostEntity, err)
	}
	return &post, nil
}

func (r *BlogPostRepo) CountPublished(ctx context.Context) (int64, error) {
	var count int64
	if err := publishedPosts(r.db.WithContext(ctx)).Count(&count).Error; err != nil {
		return 0, errs.NewDatabaseError("count", blogPostEntity, err)
	}
	return count, nil
}

// TotalViews sums the view counters of published posts.
func (r *BlogPostRepo) TotalViews(ctx context.Context) (int64, error) {
	var total int64
	err := publishedPosts(r.db.WithContext(ctx)).Select("COALESCE(SUM(views), 0)").Scan(&total).Error
	if err != nil {
		return 0, errs.NewDatabaseError("sum views of", blogPostEntity, err)
	}
	return total, nil
}

// Add inserts the post. A blank slug is derived from the title; derived fields are computed by the model hooks.
func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	if problems := post.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := resolveSlug(tx, &models.BlogPost{}, blogPostEntity, post.Slug, post.Title, "post")
		if err != nil {
			return err
		}
		post.Slug = slug

		if err := tx.Create(post).Error; err != nil {
			if errs.IsUniqueViolation(err) {
				return errs.NewUniquenessViolation(blogPostEntity, "slug", post.Slug)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("create", blogPostEntity, err)
	}
	return nil
}

// Update writes every editable field of post and recomputes its derived fields. The slug and
// view count are never overwritten.
func (r *BlogPostRepo) Update(ctx context.Context, post *models.BlogPost) error {
	if problems := post.Validate(); len(problems) > 0 {
		return errs.NewValidationError(problems)
	}
	post.ApplyDerivedFields()

	res := r.db.WithContext(ctx).Select("*").Omit("id", "slug", "views").Updates(post)
	if res.Error != nil {
		return errs.NewDatabaseError("update", blogPostEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound(blogPostEntity)
	}
	return nil
}

func (r *BlogPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	if res.Error != nil {
		return errs.NewDatabaseError("delete", blogPostEntity, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound(blogPostEntity)
	}
	return nil
}
