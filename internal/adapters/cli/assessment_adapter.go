// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/example/riskledger/internal/adapters/filesystem"
	"github.com/example/riskledger/internal/core/scoring"
	"github.com/example/riskledger/internal/ports/primary"
)

// ErrNotFound is returned when a named assessment does not exist.
var ErrNotFound = errors.New("assessment not found")

// Report output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

const rule = "============================================================"

// AssessmentAdapter is a thin adapter that translates CLI operations to
// AssessmentService calls.
type AssessmentAdapter struct {
	service primary.AssessmentService
	out     io.Writer
}

// NewAssessmentAdapter creates a new AssessmentAdapter with the given service.
func NewAssessmentAdapter(service primary.AssessmentService, out io.Writer) *AssessmentAdapter {
	return &AssessmentAdapter{
		service: service,
		out:     out,
	}
}

// Save saves one assessment and prints its resulting level.
func (a *AssessmentAdapter) Save(ctx context.Context, req primary.SaveAssessmentRequest) error {
	saved, err := a.service.SaveAssessment(ctx, req)
	if err != nil {
		return err
	}

	report, err := a.service.BuildReport(saved)
	if err != nil {
		return err
	}

	verb := "Updated"
	if saved.CreatedAt.Equal(saved.UpdatedAt) {
		verb = "Created"
	}
	fmt.Fprintf(a.out, "✓ %s assessment %s: %s (%s/10)\n",
		verb, saved.Name, levelColor(report.Level).Sprint(report.Level), fixed(report.TotalScore, 2))
	return nil
}

// Import saves a batch of assessments.
func (a *AssessmentAdapter) Import(ctx context.Context, reqs []primary.SaveAssessmentRequest) error {
	if len(reqs) == 0 {
		fmt.Fprintln(a.out, "No assessments to import")
		return nil
	}

	result, err := a.service.ImportAssessments(ctx, reqs)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Imported %d assessments (%d created, %d updated)\n",
		len(result.Created)+len(result.Updated), len(result.Created), len(result.Updated))
	return nil
}

// List prints every assessment as "Name - LEVEL (score)".
func (a *AssessmentAdapter) List(ctx context.Context) error {
	summaries, err := a.service.ListAssessments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(a.out, "No assessments saved")
		return nil
	}

	for _, s := range summaries {
		fmt.Fprintf(a.out, "%s - %s (%s)\n", s.Name, levelColor(s.Level).Sprint(s.Level), fixed(s.TotalScore, 1))
	}
	fmt.Fprintf(a.out, "\nTotal assessments: %d\n", len(summaries))
	return nil
}

// Show prints the text report for a stored assessment.
func (a *AssessmentAdapter) Show(ctx context.Context, name string) error {
	return a.Report(ctx, name, FormatText)
}

// Report prints the report for a stored assessment in the given format.
func (a *AssessmentAdapter) Report(ctx context.Context, name, format string) error {
	if format != FormatText && format != FormatYAML {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatText, FormatYAML)
	}

	report, err := a.service.GetReport(ctx, name)
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if format == FormatYAML {
		return a.RenderYAML(report)
	}
	a.RenderText(report)
	return nil
}

// Delete removes an assessment. Deleting an absent name is not an error.
func (a *AssessmentAdapter) Delete(ctx context.Context, name string) error {
	deleted, err := a.service.DeleteAssessment(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(a.out, "No assessment named %s\n", name)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Deleted assessment %s\n", name)
	return nil
}

// Export writes the named assessments (all when names is empty) as YAML,
// to path or to the adapter's writer when path is empty.
func (a *AssessmentAdapter) Export(ctx context.Context, names []string, path string) error {
	if len(names) == 0 {
		summaries, err := a.service.ListAssessments(ctx)
		if err != nil {
			return fmt.Errorf("failed to list assessments: %w", err)
		}
		for _, s := range summaries {
			names = append(names, s.Name)
		}
	}

	docs := make([]filesystem.AssessmentDocument, 0, len(names))
	for _, name := range names {
		assessment, err := a.service.GetAssessment(ctx, name)
		if err != nil {
			return err
		}
		if assessment == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		docs = append(docs, filesystem.DocumentFromAssessment(assessment))
	}

	if path == "" {
		return filesystem.EncodeAssessments(a.out, docs)
	}
	if err := filesystem.WriteAssessments(path, docs); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Exported %d assessments to %s\n", len(docs), path)
	return nil
}

// RenderText writes the human-readable report.
func (a *AssessmentAdapter) RenderText(r *primary.Report) {
	fmt.Fprintln(a.out, "COUNTRY THREAT ASSESSMENT")
	fmt.Fprintln(a.out, rule)
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Country:      %s\n", r.Name)
	if !r.UpdatedAt.IsZero() {
		fmt.Fprintf(a.out, "Updated:      %s\n", r.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(a.out, "Threat Level: %s\n", levelColor(r.Level).Add(color.Bold).Sprint(r.Level))
	fmt.Fprintf(a.out, "Score:        %s/10\n", fixed(r.TotalScore, 2))
	fmt.Fprintf(a.out, "Description:  %s\n", r.Description)
	fmt.Fprintln(a.out)

	fmt.Fprintln(a.out, "CATEGORY SCORES")
	fmt.Fprintln(a.out, rule)
	for _, c := range r.Categories {
		fmt.Fprintf(a.out, "%-36s %4s/10  (Weight: %s%%)  → %s\n",
			c.Label+":", fixed(c.Score, 1), percent(c.Weight), fixed(c.Weighted, 2))
		for _, ind := range c.Indicators {
			fmt.Fprintf(a.out, "    %-32s %2d\n", ind.Label, ind.Value)
		}
	}

	for _, section := range []struct{ title, body string }{
		{"KEY RISK FACTORS", r.Notes.KeyRiskFactors},
		{"TREND ANALYSIS", r.Notes.TrendAnalysis},
		{"RECOMMENDATIONS", r.Notes.Recommendations},
	} {
		if strings.TrimSpace(section.body) == "" {
			continue
		}
		fmt.Fprintf(a.out, "\n%s:\n%s\n", section.title, section.body)
	}
}

type reportDocument struct {
	Name        string             `yaml:"name"`
	TotalScore  float64            `yaml:"total_score"`
	ThreatLevel string             `yaml:"threat_level"`
	Color       string             `yaml:"color"`
	Description string             `yaml:"description"`
	Categories  []categoryDocument `yaml:"categories"`
	Notes       map[string]string  `yaml:"notes,omitempty"`
	CreatedAt   *time.Time         `yaml:"created_at,omitempty"`
	UpdatedAt   *time.Time         `yaml:"updated_at,omitempty"`
}

type categoryDocument struct {
	Category   string         `yaml:"category"`
	Label      string         `yaml:"label"`
	Weight     float64        `yaml:"weight"`
	Score      float64        `yaml:"score"`
	Weighted   float64        `yaml:"weighted"`
	Indicators map[string]int `yaml:"indicators"`
}

// RenderYAML writes the report as a YAML document with rounded scores.
func (a *AssessmentAdapter) RenderYAML(r *primary.Report) error {
	doc := reportDocument{
		Name:        r.Name,
		TotalScore:  rounded(r.TotalScore, 2),
		ThreatLevel: string(r.Level),
		Color:       r.Color.Hex,
		Description: r.Description,
	}
	for _, c := range r.Categories {
		cd := categoryDocument{
			Category:   string(c.Category),
			Label:      c.Label,
			Weight:     c.Weight,
			Score:      rounded(c.Score, 2),
			Weighted:   rounded(c.Weighted, 2),
			Indicators: make(map[string]int, len(c.Indicators)),
		}
		for _, ind := range c.Indicators {
			cd.Indicators[string(ind.ID)] = ind.Value
		}
		doc.Categories = append(doc.Categories, cd)
	}

	notes := map[string]string{
		"key_risk_factors": r.Notes.KeyRiskFactors,
		"trend_analysis":   r.Notes.TrendAnalysis,
		"recommendations":  r.Notes.Recommendations,
	}
	for k, v := range notes {
		if v == "" {
			delete(notes, k)
		}
	}
	if len(notes) > 0 {
		doc.Notes = notes
	}
	if !r.CreatedAt.IsZero() {
		created, updated := r.CreatedAt, r.UpdatedAt
		doc.CreatedAt, doc.UpdatedAt = &created, &updated
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// Helper functions

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func rounded(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func percent(weight float64) string {
	return decimal.NewFromFloat(weight).Shift(2).StringFixed(0)
}

// levelColor maps a level's color token to a terminal color.
// Orange has no basic ANSI code, so it uses the 256-color palette.
func levelColor(level scoring.Level) *color.Color {
	switch scoring.DisplayColor(level).Token {
	case "green":
		return color.New(color.FgGreen)
	case "yellow":
		return color.New(color.FgYellow)
	case "blue":
		return color.New(color.FgCyan)
	case "orange":
		return color.New(color.Attribute(38), color.Attribute(5), color.Attribute(208))
	case "red":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgHiBlack)
	}
}
