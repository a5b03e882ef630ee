package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PerformanceMetric struct {
	Metric      string `json:"metric"`
	Improvement string `json:"improvement"`
}

// ProjectDetail holds the long-form case study of a project. A project has at most one.
type ProjectDetail struct {
	ID                      uuid.UUID                              `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID               uuid.UUID                              `json:"project_id" gorm:"type:uuid;not null;uniqueIndex"`
	ProblemStatement        string                                 `json:"problem_statement" gorm:"type:text;not null"`
	SolutionApproach        string                                 `json:"solution_approach" gorm:"type:text;not null"`
	TechnologyJustification string                                 `json:"technology_justification" gorm:"type:text;not null"`
	TechnicalArchitecture   *string                                `json:"technical_architecture" gorm:"type:text"`
	KeyFeatures             datatypes.JSONSlice[string]            `json:"key_features" gorm:"not null"`
	PerformanceMetrics      datatypes.JSONSlice[PerformanceMetric] `json:"performance_metrics" gorm:"not null"`
	ChallengesSolved        string                                 `json:"challenges_solved" gorm:"type:text;not null"`
	DemoVideoURL            string                                 `json:"demo_video_url" gorm:"type:text;not null"`
	LessonsLearned          string                                 `json:"lessons_learned" gorm:"type:text;not null"`
	CreatedAt               time.Time                              `json:"created_at"`
	UpdatedAt               time.Time                              `json:"updated_at"`
}

func (d *ProjectDetail) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

func (d *ProjectDetail) BeforeSave(tx *gorm.DB) error {
	if d.KeyFeatures == nil {
		d.KeyFeatures = datatypes.JSONSlice[string]{}
	}
	if d.PerformanceMetrics == nil {
		d.PerformanceMetrics = datatypes.JSONSlice[PerformanceMetric]{}
	}
	return nil
}
