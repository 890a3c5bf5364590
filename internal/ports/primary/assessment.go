package primary

import (
	"context"
	"time"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/core/scoring"
)

// AssessmentService defines the primary port for country assessment operations.
type AssessmentService interface {
	// SaveAssessment validates and upserts an assessment by name.
	SaveAssessment(ctx context.Context, req SaveAssessmentRequest) (*Assessment, error)

	// GetAssessment retrieves an assessment by name (nil if none).
	GetAssessment(ctx context.Context, name string) (*Assessment, error)

	// ListAssessments lists all assessments ordered by name.
	ListAssessments(ctx context.Context) ([]*AssessmentSummary, error)

	// DeleteAssessment deletes an assessment. Returns false if it did not exist.
	DeleteAssessment(ctx context.Context, name string) (bool, error)

	// CountAssessments returns the number of stored assessments.
	CountAssessments(ctx context.Context) (int, error)

	// GetReport builds the report view of a stored assessment (nil if none).
	GetReport(ctx context.Context, name string) (*Report, error)

	// BuildReport builds the report view of an assessment without storing it.
	BuildReport(a *Assessment) (*Report, error)

	// ImportAssessments validates every request, then saves them all.
	// Nothing is saved if any request is invalid.
	ImportAssessments(ctx context.Context, reqs []SaveAssessmentRequest) (*ImportResult, error)
}

// SaveAssessmentRequest contains the full input for one assessment.
type SaveAssessmentRequest struct {
	Name    string
	Ratings assessment.Ratings
	Notes   assessment.Notes
}

// Assessment represents an assessment at the port boundary.
type Assessment struct {
	Name      string
	Ratings   assessment.Ratings
	Notes     assessment.Notes
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssessmentSummary is one row of the assessment list.
type AssessmentSummary struct {
	Name       string
	TotalScore float64
	Level      scoring.Level
	UpdatedAt  time.Time
}

// ImportResult reports what an import did.
type ImportResult struct {
	Created []string
	Updated []string
}

// Report is the read-only view handed to renderers. Renderers format it
// but never recompute any of its scores.
type Report struct {
	Name        string
	TotalScore  float64
	Level       scoring.Level
	Color       scoring.Color
	Description string
	Categories  []CategoryReport
	Notes       assessment.Notes
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryReport is the breakdown of one category in a Report.
type CategoryReport struct {
	Category   assessment.Category
	Label      string
	Weight     float64
	Score      float64
	Weighted   float64
	Indicators []IndicatorReport
}

// IndicatorReport is one rated indicator in a Report.
type IndicatorReport struct {
	ID    assessment.IndicatorID
	Label string
	Value int
}
