package assessment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength caps the country name, in characters.
const MaxNameLength = 100

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Reason)
}

// ValidationError reports every problem found in an assessment input.
// It is returned before any persistence is attempted.
type ValidationError struct {
	Name     string
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	if e.Name == "" {
		return fmt.Sprintf("invalid assessment: %s", strings.Join(parts, "; "))
	}
	return fmt.Sprintf("invalid assessment %q: %s", e.Name, strings.Join(parts, "; "))
}

// Is lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NormalizeName trims surrounding whitespace. Names are otherwise compared
// exactly (case-sensitive) everywhere.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// CheckName returns the problems with a (normalized) name, if any.
// Allowed: letters, digits, space, hyphen, apostrophe, period.
func CheckName(name string) []FieldError {
	if name == "" {
		return []FieldError{{Field: "name", Reason: "must not be empty"}}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return []FieldError{{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLength)}}
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '-', '\'', '.':
			continue
		}
		return []FieldError{{Field: "name", Reason: fmt.Sprintf("contains invalid character %q", r)}}
	}
	return nil
}

// CheckRatings returns one problem per missing, out-of-range or unknown
// indicator. Problems are ordered by catalog position, unknown keys last.
func CheckRatings(ratings Ratings) []FieldError {
	var problems []FieldError
	known := make(map[IndicatorID]bool, IndicatorCount())

	for _, ind := range Indicators() {
		known[ind.ID] = true
		v, ok := ratings[ind.ID]
		if !ok {
			problems = append(problems, FieldError{Field: string(ind.ID), Reason: "missing"})
			continue
		}
		if v < MinRating || v > MaxRating {
			problems = append(problems, FieldError{
				Field:  string(ind.ID),
				Reason: fmt.Sprintf("value %d outside [%d, %d]", v, MinRating, MaxRating),
			})
		}
	}

	var unknown []string
	for id := range ratings {
		if !known[id] {
			unknown = append(unknown, string(id))
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		problems = append(problems, FieldError{Field: id, Reason: "unknown indicator"})
	}

	return problems
}

// Validate checks a name and rating set together.
// Returns nil or a *ValidationError carrying every problem.
func Validate(name string, ratings Ratings) error {
	problems := append(CheckName(name), CheckRatings(ratings)...)
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Name: name, Problems: problems}
}
