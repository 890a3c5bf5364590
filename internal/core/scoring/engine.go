// Package scoring turns indicator ratings into a weighted threat score and
// a threat level. This is part of the Functional Core - no I/O, only pure functions.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/example/riskledger/internal/core/assessment"
)

// ErrPrecondition is matched by every *PreconditionError via errors.Is.
var ErrPrecondition = errors.New("scoring precondition violated")

// ErrInvalidConfig is returned by NewEngine for unusable weight or band tables.
var ErrInvalidConfig = errors.New("invalid scoring config")

// PreconditionError reports a rating set the engine refuses to score.
type PreconditionError struct {
	Indicator assessment.IndicatorID
	Value     int
	Missing   bool
}

func (e *PreconditionError) Error() string {
	if e.Missing {
		return fmt.Sprintf("indicator %s is missing", e.Indicator)
	}
	return fmt.Sprintf("indicator %s has value %d outside [%d, %d]",
		e.Indicator, e.Value, assessment.MinRating, assessment.MaxRating)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// Config holds the weight and band tables. It is copied into the Engine.
type Config struct {
	Weights map[assessment.Category]float64
	Bands   []Band
	// Tolerance absorbs floating-point summation noise at band edges:
	// a score within Tolerance above an upper bound counts as on the bound.
	Tolerance float64
}

// weightSumTolerance bounds how far weights may drift from 1.0.
const weightSumTolerance = 1e-9

// DefaultConfig returns the catalog weights and the five default bands.
func DefaultConfig() Config {
	weights := make(map[assessment.Category]float64)
	for _, c := range assessment.Categories() {
		weights[c.ID] = c.DefaultWeight
	}
	return Config{
		Weights:   weights,
		Bands:     DefaultBands(),
		Tolerance: 1e-9,
	}
}

// Engine scores rating sets. It is immutable after construction and safe
// to share.
type Engine struct {
	categories []assessment.CategorySpec
	weights    map[assessment.Category]float64
	bands      []Band
	tolerance  float64
}

// NewEngine validates cfg and builds an Engine from a private copy of it.
func NewEngine(cfg Config) (*Engine, error) {
	cats := assessment.Categories()

	if len(cfg.Weights) != len(cats) {
		return nil, fmt.Errorf("%w: expected %d category weights, got %d", ErrInvalidConfig, len(cats), len(cfg.Weights))
	}
	weights := make(map[assessment.Category]float64, len(cats))
	sum := 0.0
	for _, c := range cats {
		w, ok := cfg.Weights[c.ID]
		if !ok {
			return nil, fmt.Errorf("%w: missing weight for %s", ErrInvalidConfig, c.ID)
		}
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: weight for %s must be non-negative", ErrInvalidConfig, c.ID)
		}
		weights[c.ID] = w
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("%w: weights sum to %g, want 1.0", ErrInvalidConfig, sum)
	}

	if len(cfg.Bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidConfig)
	}
	for i := 1; i < len(cfg.Bands); i++ {
		if cfg.Bands[i].Upper <= cfg.Bands[i-1].Upper {
			return nil, fmt.Errorf("%w: band upper bounds must be strictly ascending", ErrInvalidConfig)
		}
	}
	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must be non-negative", ErrInvalidConfig)
	}

	return &Engine{
		categories: cats,
		weights:    weights,
		bands:      append([]Band(nil), cfg.Bands...),
		tolerance:  cfg.Tolerance,
	}, nil
}

// Default returns an Engine over DefaultConfig.
func Default() *Engine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(err) // DefaultConfig is static
	}
	return e
}

// Weight returns the configured weight of a category.
func (e *Engine) Weight(category assessment.Category) float64 {
	return e.weights[category]
}

// CategoryScore is the arithmetic mean of the category's indicators.
func (e *Engine) CategoryScore(ratings assessment.Ratings, category assessment.Category) (float64, error) {
	spec, ok := e.lookup(category)
	if !ok {
		return 0, fmt.Errorf("unknown category %q", category)
	}
	return meanOf(ratings, spec)
}

// WeightedCategoryScore is CategoryScore multiplied by the category weight.
func (e *Engine) WeightedCategoryScore(ratings assessment.Ratings, category assessment.Category) (float64, error) {
	score, err := e.CategoryScore(ratings, category)
	if err != nil {
		return 0, err
	}
	return score * e.weights[category], nil
}

// TotalScore sums the weighted category scores. With ratings in [1, 10]
// and weights summing to 1 the result lies in [1, 10].
func (e *Engine) TotalScore(ratings assessment.Ratings) (float64, error) {
	total := 0.0
	for _, c := range e.categories {
		mean, err := meanOf(ratings, c)
		if err != nil {
			return 0, err
		}
		total += mean * e.weights[c.ID]
	}
	return total, nil
}

// ThreatLevel classifies the total score of a rating set.
func (e *Engine) ThreatLevel(ratings assessment.Ratings) (Level, error) {
	total, err := e.TotalScore(ratings)
	if err != nil {
		return "", err
	}
	return e.LevelFor(total), nil
}

// LevelFor maps a score to its band: upper bounds inclusive, lower bounds
// exclusive. Scores past the last bound take the last level.
func (e *Engine) LevelFor(score float64) Level {
	for _, b := range e.bands {
		if score <= b.Upper+e.tolerance {
			return b.Level
		}
	}
	return e.bands[len(e.bands)-1].Level
}

// CategoryResult is the breakdown for one category.
type CategoryResult struct {
	Category assessment.Category
	Label    string
	Weight   float64
	Score    float64 // mean of indicators
	Weighted float64 // Score * Weight
}

// Result is the complete scoring output for one rating set.
type Result struct {
	Categories []CategoryResult
	Total      float64
	Level      Level
	Color      Color
}

// Evaluate computes the per-category breakdown, total, level and color.
func (e *Engine) Evaluate(ratings assessment.Ratings) (Result, error) {
	res := Result{Categories: make([]CategoryResult, 0, len(e.categories))}
	for _, c := range e.categories {
		mean, err := meanOf(ratings, c)
		if err != nil {
			return Result{}, err
		}
		w := e.weights[c.ID]
		res.Categories = append(res.Categories, CategoryResult{
			Category: c.ID,
			Label:    c.Label,
			Weight:   w,
			Score:    mean,
			Weighted: mean * w,
		})
		res.Total += mean * w
	}
	res.Level = e.LevelFor(res.Total)
	res.Color = DisplayColor(res.Level)
	return res, nil
}

func (e *Engine) lookup(category assessment.Category) (assessment.CategorySpec, bool) {
	for _, c := range e.categories {
		if c.ID == category {
			return c, true
		}
	}
	return assessment.CategorySpec{}, false
}

func meanOf(ratings assessment.Ratings, spec assessment.CategorySpec) (float64, error) {
	sum := 0
	for _, ind := range spec.Indicators {
		v, ok := ratings[ind.ID]
		if !ok {
			return 0, &PreconditionError{Indicator: ind.ID, Missing: true}
		}
		if v < assessment.MinRating || v > assessment.MaxRating {
			return 0, &PreconditionError{Indicator: ind.ID, Value: v}
		}
		sum += v
	}
	return float64(sum) / float64(len(spec.Indicators)), nil
}
