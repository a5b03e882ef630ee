package database

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-content-backend/errs"
)

// PageSize is the fixed number of results per listing page.
const PageSize = 20

type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

// ValidatePage rejects page numbers below 1.
func ValidatePage(page int) error {
	if page < 1 {
		return errs.NewInvalidFieldError("page", "must be a positive integer")
	}
	return nil
}

// paginate counts and fetches one page inside a single read transaction. filter scopes the
// model and its WHERE clauses and is applied to both queries; shape adds ordering and preloads
// to the page query only.
func paginate[T any](ctx context.Context, db *gorm.DB, page int, entity string, filter, shape func(tx *gorm.DB) *gorm.DB) (Page[T], error) {
	if err := ValidatePage(page); err != nil {
		return Page[T]{}, err
	}

	result := Page[T]{Page: page, PageSize: PageSize, Results: []T{}}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := filter(tx).Count(&result.Count).Error; err != nil {
			return err
		}
		// Compare in pages so a huge page number cannot overflow the offset
		if int64(page-1) >= (result.Count+PageSize-1)/PageSize {
			return nil
		}
		return shape(filter(tx)).Offset((page - 1) * PageSize).Limit(PageSize).Find(&result.Results).Error
	}, readTxOptions(db))
	if err != nil {
		return Page[T]{}, errs.NewDatabaseError("list", entity, err)
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching s anywhere, with wildcards in s escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// matchAny ORs a case-insensitive substring match over columns.
func matchAny(tx *gorm.DB, search string, columns ...string) *gorm.DB {
	pattern := containsPattern(search)
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
