// Package assessment contains the pure business logic for country assessments.
// This is part of the Functional Core - no I/O, only pure functions.
package assessment

// Category identifies one of the five fixed indicator groups.
type Category string

const (
	PoliticalStability  Category = "political_stability"
	SecurityEnvironment Category = "security_environment"
	EconomicStability   Category = "economic_stability"
	SocialIndicators    Category = "social_indicators"
	IllicitMarkets      Category = "illicit_markets"
)

// IndicatorID identifies a single rated facet (e.g. "government_legitimacy").
type IndicatorID string

// Indicator describes one rated facet and where it lives in storage.
type Indicator struct {
	ID       IndicatorID
	Category Category
	Label    string
	Column   string // persisted column name, category prefix + ID
}

// CategorySpec is one variant of the category enumeration: its indicators,
// in display order, and its default weight in the total score.
type CategorySpec struct {
	ID            Category
	Label         string
	Prefix        string
	DefaultWeight float64
	Indicators    []Indicator
}

// MinRating and MaxRating bound every indicator value (inclusive).
const (
	MinRating = 1
	MaxRating = 10
)

var catalog = buildCatalog()

func buildCatalog() []CategorySpec {
	specs := []struct {
		id     Category
		label  string
		prefix string
		weight float64
		items  [][2]string
	}{
		{PoliticalStability, "Political Stability", "ps_", 0.25, [][2]string{
			{"government_legitimacy", "Government Legitimacy"},
			{"political_violence", "Political Violence"},
			{"institutional_strength", "Institutional Strength"},
			{"leadership_stability", "Leadership Stability"},
		}},
		{SecurityEnvironment, "Security Environment", "se_", 0.20, [][2]string{
			{"internal_conflict", "Internal Conflict"},
			{"regional_security", "Regional Security"},
			{"law_enforcement", "Law Enforcement"},
			{"military_factors", "Military Factors"},
		}},
		{EconomicStability, "Economic Stability", "es_", 0.20, [][2]string{
			{"economic_performance", "Economic Performance"},
			{"fiscal_health", "Fiscal Health"},
			{"trade_dependencies", "Trade Dependencies"},
			{"infrastructure_resilience", "Infrastructure Resilience"},
		}},
		{SocialIndicators, "Social Indicators", "si_", 0.15, [][2]string{
			{"social_cohesion", "Social Cohesion"},
			{"human_development", "Human Development"},
			{"demographic_pressures", "Demographic Pressures"},
			{"information_environment", "Information Environment"},
		}},
		{IllicitMarkets, "Illicit Markets & Criminal Activity", "im_", 0.20, [][2]string{
			{"drug_trade", "Drug Trade"},
			{"human_trafficking", "Human Trafficking"},
			{"arms_trafficking", "Arms Trafficking"},
			{"financial_crimes", "Financial Crimes"},
			{"cybercrime_operations", "Cybercrime Operations"},
			{"state_response_capacity", "State Response Capacity"},
		}},
	}

	out := make([]CategorySpec, 0, len(specs))
	for _, s := range specs {
		cat := CategorySpec{ID: s.id, Label: s.label, Prefix: s.prefix, DefaultWeight: s.weight}
		for _, item := range s.items {
			cat.Indicators = append(cat.Indicators, Indicator{
				ID:       IndicatorID(item[0]),
				Category: s.id,
				Label:    item[1],
				Column:   s.prefix + item[0],
			})
		}
		out = append(out, cat)
	}
	return out
}

// Categories returns the category enumeration in display order.
// The returned slice is a copy; callers may not mutate the catalog.
func Categories() []CategorySpec {
	out := make([]CategorySpec, len(catalog))
	for i, c := range catalog {
		c.Indicators = append([]Indicator(nil), c.Indicators...)
		out[i] = c
	}
	return out
}

// LookupCategory returns the spec for a category.
func LookupCategory(id Category) (CategorySpec, bool) {
	for _, c := range catalog {
		if c.ID == id {
			c.Indicators = append([]Indicator(nil), c.Indicators...)
			return c, true
		}
	}
	return CategorySpec{}, false
}

// Indicators returns all indicators across categories in display order.
func Indicators() []Indicator {
	var out []Indicator
	for _, c := range catalog {
		out = append(out, c.Indicators...)
	}
	return out
}

// IndicatorCount is the number of rated indicators per record (22).
func IndicatorCount() int {
	n := 0
	for _, c := range catalog {
		n += len(c.Indicators)
	}
	return n
}

// Ratings holds indicator values keyed by indicator ID.
// An absent key means the indicator was not supplied.
type Ratings map[IndicatorID]int

// Clone returns an independent copy.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Notes are the free-text assessment notes.
type Notes struct {
	KeyRiskFactors  string
	TrendAnalysis   string
	Recommendations string
}

// IsEmpty reports whether all notes are blank.
func (n Notes) IsEmpty() bool {
	return n.KeyRiskFactors == "" && n.TrendAnalysis == "" && n.Recommendations == ""
}

// UniformRatings returns a complete rating set with every indicator set to v.
func UniformRatings(v int) Ratings {
	r := make(Ratings, IndicatorCount())
	for _, ind := range Indicators() {
		r[ind.ID] = v
	}
	return r
}
