package app

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/core/scoring"
	"github.com/example/riskledger/internal/ports/primary"
	"github.com/example/riskledger/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockAssessmentRepository implements secondary.AssessmentRepository for testing.
type mockAssessmentRepository struct {
	records   map[string]*secondary.AssessmentRecord
	now       time.Time
	saveCalls int
	saveErr   error
	getErr    error
	listErr   error
	deleteErr error
}

func newMockAssessmentRepository() *mockAssessmentRepository {
	return &mockAssessmentRepository{
		records: make(map[string]*secondary.AssessmentRecord),
		now:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockAssessmentRepository) Save(ctx context.Context, record *secondary.AssessmentRecord) (*secondary.AssessmentRecord, error) {
	m.saveCalls++
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.now = m.now.Add(time.Second)

	stored := *record
	stored.Ratings = record.Ratings.Clone()
	if prev, ok := m.records[record.Name]; ok {
		stored.ID = prev.ID
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.ID = "id-" + record.Name
		stored.CreatedAt = m.now
	}
	stored.UpdatedAt = m.now
	m.records[record.Name] = &stored

	out := stored
	return &out, nil
}

func (m *mockAssessmentRepository) Insert(ctx context.Context, record *secondary.AssessmentRecord) error {
	if _, ok := m.records[record.Name]; ok {
		return secondary.ErrDuplicateName
	}
	m.records[record.Name] = record
	return nil
}

func (m *mockAssessmentRepository) GetByName(ctx context.Context, name string) (*secondary.AssessmentRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.records[name]; ok {
		out := *r
		return &out, nil
	}
	return nil, nil
}

func (m *mockAssessmentRepository) List(ctx context.Context) ([]*secondary.AssessmentRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.AssessmentRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockAssessmentRepository) Delete(ctx context.Context, name string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.records[name]; !ok {
		return false, nil
	}
	delete(m.records, name)
	return true, nil
}

func (m *mockAssessmentRepository) Count(ctx context.Context) (int, error) {
	return len(m.records), nil
}

// mockMetrics records every observation.
type mockMetrics struct {
	ops    []string
	scores []float64
}

func (m *mockMetrics) ObserveOperation(op, outcome string) {
	m.ops = append(m.ops, op+":"+outcome)
}

func (m *mockMetrics) ObserveScore(level string, score float64) {
	m.scores = append(m.scores, score)
}

// ============================================================================
// Test Helper
// ============================================================================

func newTestAssessmentService(t *testing.T) (*AssessmentServiceImpl, *mockAssessmentRepository, *mockMetrics) {
	t.Helper()
	repo := newMockAssessmentRepository()
	metrics := &mockMetrics{}
	service := NewAssessmentService(repo, scoring.Default(), metrics, zaptest.NewLogger(t))
	return service, repo, metrics
}

// scenarioRequest is the worked example that totals 6.05.
func scenarioRequest(name string) primary.SaveAssessmentRequest {
	r := assessment.Ratings{}
	values := map[assessment.Category][]int{
		assessment.PoliticalStability:  {7, 8, 6, 7},
		assessment.SecurityEnvironment: {5, 6, 5, 6},
		assessment.EconomicStability:   {6, 6, 6, 6},
		assessment.SocialIndicators:    {4, 4, 4, 4},
		assessment.IllicitMarkets:      {7, 7, 7, 7, 7, 7},
	}
	for _, c := range assessment.Categories() {
		for i, ind := range c.Indicators {
			r[ind.ID] = values[c.ID][i]
		}
	}
	return primary.SaveAssessmentRequest{
		Name:    name,
		Ratings: r,
		Notes: assessment.Notes{
			KeyRiskFactors:  "cartel activity",
			TrendAnalysis:   "worsening",
			Recommendations: "increase monitoring",
		},
	}
}

// ============================================================================
// SaveAssessment Tests
// ============================================================================

func TestSaveAssessment_Create(t *testing.T) {
	service, repo, metrics := newTestAssessmentService(t)
	ctx := context.Background()

	a, err := service.SaveAssessment(ctx, scenarioRequest("Colombia"))
	require.NoError(t, err)

	assert.Equal(t, "Colombia", a.Name)
	assert.Equal(t, 7, a.Ratings["government_legitimacy"])
	assert.Equal(t, "worsening", a.Notes.TrendAnalysis)
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Len(t, repo.records, 1)
	assert.Equal(t, []string{"save:created"}, metrics.ops)
	require.Len(t, metrics.scores, 1)
	assert.InDelta(t, 6.05, metrics.scores[0], 1e-9)
}

func TestSaveAssessment_UpdateKeepsCreatedAt(t *testing.T) {
	service, repo, metrics := newTestAssessmentService(t)
	ctx := context.Background()

	first, err := service.SaveAssessment(ctx, primary.SaveAssessmentRequest{
		Name:    "Colombia",
		Ratings: assessment.UniformRatings(2),
	})
	require.NoError(t, err)

	second, err := service.SaveAssessment(ctx, scenarioRequest("Colombia"))
	require.NoError(t, err)

	assert.Len(t, repo.records, 1, "same name must map to one record")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	assert.Equal(t, 8, second.Ratings["political_violence"])
	assert.Equal(t, []string{"save:created", "save:updated"}, metrics.ops)
}

func TestSaveAssessment_TrimsName(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)

	a, err := service.SaveAssessment(context.Background(), scenarioRequest("  Peru  "))
	require.NoError(t, err)

	assert.Equal(t, "Peru", a.Name)
	assert.Contains(t, repo.records, "Peru")
}

func TestSaveAssessment_ValidationLeavesStoreUntouched(t *testing.T) {
	service, repo, metrics := newTestAssessmentService(t)
	ctx := context.Background()

	_, err := service.SaveAssessment(ctx, scenarioRequest("Ecuador"))
	require.NoError(t, err)
	calls := repo.saveCalls

	for _, bad := range []int{0, 11} {
		req := scenarioRequest("Ecuador")
		req.Ratings["drug_trade"] = bad

		_, err := service.SaveAssessment(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, assessment.ErrValidation)

		var verr *assessment.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "drug_trade", verr.Problems[0].Field)
	}

	assert.Equal(t, calls, repo.saveCalls, "invalid input must not reach the repository")

	prior, err := service.GetAssessment(ctx, "Ecuador")
	require.NoError(t, err)
	assert.Equal(t, 7, prior.Ratings["drug_trade"])
	assert.Contains(t, metrics.ops, "save:invalid")
}

func TestSaveAssessment_EmptyName(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)

	req := scenarioRequest("   ")
	_, err := service.SaveAssessment(context.Background(), req)

	assert.ErrorIs(t, err, assessment.ErrValidation)
	assert.Zero(t, repo.saveCalls)
}

func TestSaveAssessment_MissingIndicator(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)

	req := scenarioRequest("Bhutan")
	delete(req.Ratings, "leadership_stability")
	_, err := service.SaveAssessment(context.Background(), req)

	assert.ErrorIs(t, err, assessment.ErrValidation)
	assert.Zero(t, repo.saveCalls)
}

func TestSaveAssessment_StorageFault(t *testing.T) {
	service, repo, metrics := newTestAssessmentService(t)
	repo.saveErr = &secondary.StorageError{Op: "save", Name: "Iran", Err: errors.New("disk full")}

	_, err := service.SaveAssessment(context.Background(), scenarioRequest("Iran"))

	var storageErr *secondary.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "Iran", storageErr.Name)
	assert.Contains(t, metrics.ops, "save:error")
}

func TestSaveAssessment_DoesNotAliasRequestRatings(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)
	req := scenarioRequest("Fiji")

	_, err := service.SaveAssessment(context.Background(), req)
	require.NoError(t, err)

	req.Ratings["drug_trade"] = 1
	assert.Equal(t, 7, repo.records["Fiji"].Ratings["drug_trade"])
}

// ============================================================================
// Get / List / Delete Tests
// ============================================================================

func TestGetAssessment_NotFound(t *testing.T) {
	service, _, metrics := newTestAssessmentService(t)

	a, err := service.GetAssessment(context.Background(), "Atlantis")

	require.NoError(t, err)
	assert.Nil(t, a)
	assert.Equal(t, []string{"load:not_found"}, metrics.ops)
}

func TestGetAssessment_StorageFault(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)
	repo.getErr = errors.New("database is locked")

	_, err := service.GetAssessment(context.Background(), "Oman")
	assert.Error(t, err)
}

func TestListAssessments(t *testing.T) {
	service, _, _ := newTestAssessmentService(t)
	ctx := context.Background()

	_, err := service.SaveAssessment(ctx, scenarioRequest("Mexico"))
	require.NoError(t, err)
	_, err = service.SaveAssessment(ctx, primary.SaveAssessmentRequest{Name: "Iceland", Ratings: assessment.UniformRatings(1)})
	require.NoError(t, err)

	list, err := service.ListAssessments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Iceland", list[0].Name)
	assert.Equal(t, scoring.LevelLow, list[0].Level)
	assert.InDelta(t, 1.0, list[0].TotalScore, 1e-9)

	assert.Equal(t, "Mexico", list[1].Name)
	assert.Equal(t, scoring.LevelHigh, list[1].Level)
	assert.InDelta(t, 6.05, list[1].TotalScore, 1e-9)
}

func TestListAssessments_StorageFault(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)
	repo.listErr = errors.New("disk I/O error")

	_, err := service.ListAssessments(context.Background())
	assert.Error(t, err)
}

func TestDeleteAssessment(t *testing.T) {
	service, _, metrics := newTestAssessmentService(t)
	ctx := context.Background()

	_, err := service.SaveAssessment(ctx, scenarioRequest("Sudan"))
	require.NoError(t, err)

	deleted, err := service.DeleteAssessment(ctx, "Sudan")
	require.NoError(t, err)
	assert.True(t, deleted)

	a, err := service.GetAssessment(ctx, "Sudan")
	require.NoError(t, err)
	assert.Nil(t, a)

	deleted, err = service.DeleteAssessment(ctx, "Sudan")
	require.NoError(t, err, "deleting an absent name is not a fault")
	assert.False(t, deleted)

	assert.Contains(t, metrics.ops, "delete:deleted")
	assert.Contains(t, metrics.ops, "delete:not_found")
}

func TestDeleteAssessment_StorageFault(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)
	repo.deleteErr = errors.New("readonly database")

	_, err := service.DeleteAssessment(context.Background(), "Chad")
	assert.Error(t, err)
}

func TestCountAssessments(t *testing.T) {
	service, _, _ := newTestAssessmentService(t)
	ctx := context.Background()

	_, err := service.SaveAssessment(ctx, scenarioRequest("Togo"))
	require.NoError(t, err)

	n, err := service.CountAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// ============================================================================
// Report Tests
// ============================================================================

func TestGetReport(t *testing.T) {
	service, _, _ := newTestAssessmentService(t)
	ctx := context.Background()

	_, err := service.SaveAssessment(ctx, scenarioRequest("Venezuela"))
	require.NoError(t, err)

	report, err := service.GetReport(ctx, "Venezuela")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "Venezuela", report.Name)
	assert.InDelta(t, 6.05, report.TotalScore, 1e-9)
	assert.Equal(t, scoring.LevelHigh, report.Level)
	assert.Equal(t, "orange", report.Color.Token)
	assert.Equal(t, "Serious threats with potential for instability", report.Description)
	assert.Equal(t, "cartel activity", report.Notes.KeyRiskFactors)

	require.Len(t, report.Categories, 5)
	ps := report.Categories[0]
	assert.Equal(t, assessment.PoliticalStability, ps.Category)
	assert.InDelta(t, 7.0, ps.Score, 1e-9)
	assert.InDelta(t, 0.25, ps.Weight, 1e-9)
	assert.InDelta(t, 1.75, ps.Weighted, 1e-9)
	require.Len(t, ps.Indicators, 4)
	assert.Equal(t, "Government Legitimacy", ps.Indicators[0].Label)
	assert.Equal(t, 7, ps.Indicators[0].Value)

	im := report.Categories[4]
	assert.Len(t, im.Indicators, 6)
}

func TestGetReport_NotFound(t *testing.T) {
	service, _, _ := newTestAssessmentService(t)

	report, err := service.GetReport(context.Background(), "Narnia")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestBuildReport_IncompleteRatings(t *testing.T) {
	service, _, _ := newTestAssessmentService(t)

	ratings := assessment.UniformRatings(5)
	delete(ratings, "cybercrime_operations")

	_, err := service.BuildReport(&primary.Assessment{Name: "Draft", Ratings: ratings})
	assert.ErrorIs(t, err, scoring.ErrPrecondition)
}

// ============================================================================
// ImportAssessments Tests
// ============================================================================

func TestImportAssessments(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)
	ctx := context.Background()

	_, err := service.SaveAssessment(ctx, scenarioRequest("Brazil"))
	require.NoError(t, err)

	result, err := service.ImportAssessments(ctx, []primary.SaveAssessmentRequest{
		{Name: "Argentina", Ratings: assessment.UniformRatings(4)},
		{Name: "Brazil", Ratings: assessment.UniformRatings(6)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Argentina"}, result.Created)
	assert.Equal(t, []string{"Brazil"}, result.Updated)
	assert.Len(t, repo.records, 2)
	assert.Equal(t, 6, repo.records["Brazil"].Ratings["drug_trade"])
}

func TestImportAssessments_InvalidEntrySavesNothing(t *testing.T) {
	service, repo, _ := newTestAssessmentService(t)

	bad := assessment.UniformRatings(4)
	bad["fiscal_health"] = 12

	_, err := service.ImportAssessments(context.Background(), []primary.SaveAssessmentRequest{
		{Name: "Argentina", Ratings: assessment.UniformRatings(4)},
		{Name: "Uruguay", Ratings: bad},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, assessment.ErrValidation)
	assert.Contains(t, err.Error(), "entry 2")
	assert.Zero(t, repo.saveCalls)
}
