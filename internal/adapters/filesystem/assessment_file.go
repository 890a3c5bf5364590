// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/ports/primary"
)

// AssessmentDocument is the YAML form of one assessment. Ratings are grouped
// by category:
//
//	name: Colombia
//	ratings:
//	  political_stability:
//	    government_legitimacy: 7
//	    ...
//	notes:
//	  key_risk_factors: ...
type AssessmentDocument struct {
	Name      string          `yaml:"name"`
	Ratings   RatingsDocument `yaml:"ratings"`
	Notes     NotesDocument   `yaml:"notes,omitempty"`
	CreatedAt *time.Time      `yaml:"created_at,omitempty"`
	UpdatedAt *time.Time      `yaml:"updated_at,omitempty"`
}

// RatingsDocument maps category -> indicator -> value.
type RatingsDocument map[string]map[string]int

// NotesDocument holds the free-text notes.
type NotesDocument struct {
	KeyRiskFactors  string `yaml:"key_risk_factors,omitempty"`
	TrendAnalysis   string `yaml:"trend_analysis,omitempty"`
	Recommendations string `yaml:"recommendations,omitempty"`
}

// MarshalYAML emits categories and indicators in catalog order rather than
// the alphabetical order yaml.v3 uses for maps.
func (r RatingsDocument) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range assessment.Categories() {
		values, ok := r[string(c.ID)]
		if !ok {
			continue
		}
		inner := &yaml.Node{Kind: yaml.MappingNode}
		for _, ind := range c.Indicators {
			v, ok := values[string(ind.ID)]
			if !ok {
				continue
			}
			inner.Content = append(inner.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: string(ind.ID)},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)},
			)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(c.ID)},
			inner,
		)
	}
	return root, nil
}

// DocumentFromAssessment converts an assessment for export.
func DocumentFromAssessment(a *primary.Assessment) AssessmentDocument {
	doc := AssessmentDocument{
		Name:    a.Name,
		Ratings: RatingsDocument{},
		Notes: NotesDocument{
			KeyRiskFactors:  a.Notes.KeyRiskFactors,
			TrendAnalysis:   a.Notes.TrendAnalysis,
			Recommendations: a.Notes.Recommendations,
		},
	}
	for _, c := range assessment.Categories() {
		values := make(map[string]int, len(c.Indicators))
		for _, ind := range c.Indicators {
			if v, ok := a.Ratings[ind.ID]; ok {
				values[string(ind.ID)] = v
			}
		}
		doc.Ratings[string(c.ID)] = values
	}
	if !a.CreatedAt.IsZero() {
		created, updated := a.CreatedAt, a.UpdatedAt
		doc.CreatedAt, doc.UpdatedAt = &created, &updated
	}
	return doc
}

// ToRequest converts a document into a save request. Unknown categories
// and indicators filed under the wrong category are rejected here; missing
// or out-of-range values are left for validation.
func (d AssessmentDocument) ToRequest() (primary.SaveAssessmentRequest, error) {
	req := primary.SaveAssessmentRequest{
		Name:    d.Name,
		Ratings: assessment.Ratings{},
		Notes: assessment.Notes{
			KeyRiskFactors:  d.Notes.KeyRiskFactors,
			TrendAnalysis:   d.Notes.TrendAnalysis,
			Recommendations: d.Notes.Recommendations,
		},
	}

	for catName, values := range d.Ratings {
		spec, ok := assessment.LookupCategory(assessment.Category(catName))
		if !ok {
			return req, fmt.Errorf("assessment %q: unknown category %q", d.Name, catName)
		}
		members := make(map[string]bool, len(spec.Indicators))
		for _, ind := range spec.Indicators {
			members[string(ind.ID)] = true
		}
		for indName, v := range values {
			if !members[indName] {
				return req, fmt.Errorf("assessment %q: %q is not an indicator of %s", d.Name, indName, catName)
			}
			req.Ratings[assessment.IndicatorID(indName)] = v
		}
	}

	return req, nil
}

// DecodeAssessments reads every assessment from r. The stream may hold a
// single document, a list of documents, or several YAML documents
// separated by "---".
func DecodeAssessments(r io.Reader) ([]AssessmentDocument, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var docs []AssessmentDocument
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse assessments: %w", err)
		}
		if len(node.Content) == 0 {
			continue
		}

		body := node.Content[0]
		switch body.Kind {
		case yaml.SequenceNode:
			var list []AssessmentDocument
			if err := decodeStrict(body, &list); err != nil {
				return nil, err
			}
			docs = append(docs, list...)
		case yaml.MappingNode:
			var doc AssessmentDocument
			if err := decodeStrict(body, &doc); err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		default:
			return nil, fmt.Errorf("failed to parse assessments: line %d: expected a mapping or a list", body.Line)
		}
	}

	return docs, nil
}

// decodeStrict re-encodes a node and decodes it with unknown fields
// rejected; yaml.Node.Decode does not honour KnownFields.
func decodeStrict(node *yaml.Node, out any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("failed to parse assessments: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to parse assessments (line %d): %w", node.Line, err)
	}
	return nil
}

// ReadAssessments reads assessment documents from a YAML file and converts
// them to save requests.
func ReadAssessments(path string) ([]primary.SaveAssessmentRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := DecodeAssessments(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	reqs := make([]primary.SaveAssessmentRequest, 0, len(docs))
	for _, d := range docs {
		req, err := d.ToRequest()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// EncodeAssessments writes documents to w as a YAML list.
func EncodeAssessments(w io.Writer, docs []AssessmentDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode assessments: %w", err)
	}
	return enc.Close()
}

// WriteAssessments writes documents to path, replacing it atomically.
func WriteAssessments(path string, docs []AssessmentDocument) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".riskledger-export-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeAssessments(tmp, docs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
