package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const contactSubmissionEntity = "contact submission"

// ContactFlags carries the operator-controlled flags of a submission. Nil fields are left as they are.
type ContactFlags struct {
	IsRead  *bool `json:"is_read"`
	Replied *bool `json:"replied"`
}

type ContactSubmissionRepo struct {
	db *gorm.DB
}

func NewContactSubmissionRepo(db *gorm.DB) *ContactSubmissionRepo {
	return &ContactSubmissionRepo{db}
}

func (r *ContactSubmissionRepo) Add(ctx context.Context, submission *models.ContactSubmission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		return errs.NewDatabaseError("create", contactSubmissionEntity, err)
	}
	return nil
}

// List returns one page of submissions, newest first. unreadOnly hides submissions already read.
func (r *ContactSubmissionRepo) List(ctx context.Context, page int, unreadOnly bool) (Page[models.ContactSubmission], error) {
	scope := func(tx *gorm.DB) *gorm.DB {
		q := tx.Model(&models.ContactSubmission{})
		if unreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}
	shape := func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at DESC").Order("id ASC")
	}
	return paginate[models.ContactSubmission](ctx, r.db, page, contactSubmissionEntity, scope, shape)
}

func (r *ContactSubmissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ContactSubmission, error) {
	var submission models.ContactSubmission
	if err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", contactSubmissionEntity, err)
	}
	return &submission, nil
}

// SetFlags updates the read and replied flags and returns the updated submission.
func (r *ContactSubmissionRepo) SetFlags(ctx context.Context, id uuid.UUID, flags ContactFlags) (*models.ContactSubmission, error) {
	updates := map[string]interface{}{}
	if flags.IsRead != nil {
		updates["is_read"] = *flags.IsRead
	}
	if flags.Replied != nil {
		updates["replied"] = *flags.Replied
	}
	if len(updates) == 0 {
		return nil, errs.NewValidationError(map[string]string{"is_read": "is_read or replied is required"})
	}

	var submission models.ContactSubmission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ContactSubmission{}).Where("id = ?", id).UpdateColumns(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&submission, "id = ?", id).Error
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", contactSubmissionEntity, err)
	}
	return &submission, nil
}
