package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/core/scoring"
	"github.com/example/riskledger/internal/ports/primary"
	"github.com/example/riskledger/internal/ports/secondary"
)

// AssessmentServiceImpl implements the AssessmentService interface.
type AssessmentServiceImpl struct {
	repo    secondary.AssessmentRepository
	engine  *scoring.Engine
	metrics secondary.MetricsRecorder
	logger  *zap.Logger
}

// NewAssessmentService creates a new AssessmentService with injected dependencies.
func NewAssessmentService(
	repo secondary.AssessmentRepository,
	engine *scoring.Engine,
	metrics secondary.MetricsRecorder,
	logger *zap.Logger,
) *AssessmentServiceImpl {
	return &AssessmentServiceImpl{
		repo:    repo,
		engine:  engine,
		metrics: metrics,
		logger:  logger.Named("assessment"),
	}
}

// SaveAssessment validates the request and upserts it by name.
// Invalid input returns *assessment.ValidationError and the store is not touched.
func (s *AssessmentServiceImpl) SaveAssessment(ctx context.Context, req primary.SaveAssessmentRequest) (*primary.Assessment, error) {
	name := assessment.NormalizeName(req.Name)
	if err := assessment.Validate(name, req.Ratings); err != nil {
		s.metrics.ObserveOperation("save", "invalid")
		return nil, err
	}

	a, _, err := s.save(ctx, name, req)
	return a, err
}

func (s *AssessmentServiceImpl) save(ctx context.Context, name string, req primary.SaveAssessmentRequest) (*primary.Assessment, bool, error) {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.metrics.ObserveOperation("save", "error")
		return nil, false, fmt.Errorf("failed to save assessment: %w", err)
	}

	saved, err := s.repo.Save(ctx, &secondary.AssessmentRecord{
		Name:    name,
		Ratings: req.Ratings.Clone(),
		Notes:   req.Notes,
	})
	if err != nil {
		s.metrics.ObserveOperation("save", "error")
		s.logger.Error("save failed", zap.String("name", name), zap.Error(err))
		return nil, false, fmt.Errorf("failed to save assessment: %w", err)
	}

	created := existing == nil
	outcome := "updated"
	if created {
		outcome = "created"
	}
	s.metrics.ObserveOperation("save", outcome)

	if res, err := s.engine.Evaluate(saved.Ratings); err == nil {
		s.metrics.ObserveScore(string(res.Level), res.Total)
		s.logger.Info("assessment saved",
			zap.String("name", name),
			zap.String("outcome", outcome),
			zap.Float64("total_score", res.Total),
			zap.String("threat_level", string(res.Level)),
		)
	}

	return s.recordToAssessment(saved), created, nil
}

// GetAssessment retrieves an assessment by name (nil if none).
func (s *AssessmentServiceImpl) GetAssessment(ctx context.Context, name string) (*primary.Assessment, error) {
	name = assessment.NormalizeName(name)
	record, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.metrics.ObserveOperation("load", "error")
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	if record == nil {
		s.metrics.ObserveOperation("load", "not_found")
		s.logger.Debug("assessment not found", zap.String("name", name))
		return nil, nil
	}
	s.metrics.ObserveOperation("load", "found")
	return s.recordToAssessment(record), nil
}

// ListAssessments lists all assessments ordered by name, each scored on demand.
func (s *AssessmentServiceImpl) ListAssessments(ctx context.Context) ([]*primary.AssessmentSummary, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.metrics.ObserveOperation("list", "error")
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	s.metrics.ObserveOperation("list", "ok")

	summaries := make([]*primary.AssessmentSummary, len(records))
	for i, r := range records {
		total, err := s.engine.TotalScore(r.Ratings)
		if err != nil {
			return nil, fmt.Errorf("failed to score assessment %q: %w", r.Name, err)
		}
		summaries[i] = &primary.AssessmentSummary{
			Name:       r.Name,
			TotalScore: total,
			Level:      s.engine.LevelFor(total),
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return summaries, nil
}

// DeleteAssessment deletes an assessment. Returns false if it did not exist.
func (s *AssessmentServiceImpl) DeleteAssessment(ctx context.Context, name string) (bool, error) {
	name = assessment.NormalizeName(name)
	deleted, err := s.repo.Delete(ctx, name)
	if err != nil {
		s.metrics.ObserveOperation("delete", "error")
		s.logger.Error("delete failed", zap.String("name", name), zap.Error(err))
		return false, fmt.Errorf("failed to delete assessment: %w", err)
	}
	if !deleted {
		s.metrics.ObserveOperation("delete", "not_found")
		return false, nil
	}
	s.metrics.ObserveOperation("delete", "deleted")
	s.logger.Info("assessment deleted", zap.String("name", name))
	return true, nil
}

// CountAssessments returns the number of stored assessments.
func (s *AssessmentServiceImpl) CountAssessments(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return n, nil
}

// GetReport builds the report view of a stored assessment (nil if none).
func (s *AssessmentServiceImpl) GetReport(ctx context.Context, name string) (*primary.Report, error) {
	a, err := s.GetAssessment(ctx, name)
	if err != nil || a == nil {
		return nil, err
	}
	return s.BuildReport(a)
}

// BuildReport assembles the read-only report view from an assessment and
// the engine's outputs.
func (s *AssessmentServiceImpl) BuildReport(a *primary.Assessment) (*primary.Report, error) {
	res, err := s.engine.Evaluate(a.Ratings)
	if err != nil {
		return nil, fmt.Errorf("failed to score assessment %q: %w", a.Name, err)
	}

	report := &primary.Report{
		Name:        a.Name,
		TotalScore:  res.Total,
		Level:       res.Level,
		Color:       res.Color,
		Description: scoring.Description(res.Level),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	for _, c := range res.Categories {
		spec, _ := assessment.LookupCategory(c.Category)
		cr := primary.CategoryReport{
			Category: c.Category,
			Label:    c.Label,
			Weight:   c.Weight,
			Score:    c.Score,
			Weighted: c.Weighted,
		}
		for _, ind := range spec.Indicators {
			cr.Indicators = append(cr.Indicators, primary.IndicatorReport{
				ID:    ind.ID,
				Label: ind.Label,
				Value: a.Ratings[ind.ID],
			})
		}
		report.Categories = append(report.Categories, cr)
	}

	return report, nil
}

// ImportAssessments validates every request, then saves them in order.
// Nothing is saved if any request is invalid. A storage failure part way
// through leaves the earlier saves in place; each save is atomic on its own.
func (s *AssessmentServiceImpl) ImportAssessments(ctx context.Context, reqs []primary.SaveAssessmentRequest) (*primary.ImportResult, error) {
	names := make([]string, len(reqs))
	for i, req := range reqs {
		names[i] = assessment.NormalizeName(req.Name)
		if err := assessment.Validate(names[i], req.Ratings); err != nil {
			s.metrics.ObserveOperation("import", "invalid")
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	result := &primary.ImportResult{}
	for i, req := range reqs {
		_, created, err := s.save(ctx, names[i], req)
		if err != nil {
			return result, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if created {
			result.Created = append(result.Created, names[i])
		} else {
			result.Updated = append(result.Updated, names[i])
		}
	}

	s.logger.Info("import finished",
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
	)
	return result, nil
}

// Helper methods

func (s *AssessmentServiceImpl) recordToAssessment(r *secondary.AssessmentRecord) *primary.Assessment {
	return &primary.Assessment{
		Name:      r.Name,
		Ratings:   r.Ratings.Clone(),
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Ensure AssessmentServiceImpl implements the interface.
var _ primary.AssessmentService = (*AssessmentServiceImpl)(nil)
