package scoring

// Level is a discrete threat tier.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelElevated Level = "ELEVATED"
	LevelHigh     Level = "HIGH"
	LevelExtreme  Level = "EXTREME"
)

// Levels returns every tier in ascending order of severity.
func Levels() []Level {
	return []Level{LevelLow, LevelModerate, LevelElevated, LevelHigh, LevelExtreme}
}

// Color is the presentation token for a level. Token is the symbolic name
// renderers switch on; Hex is the exact shade used in reports.
type Color struct {
	Token string
	Hex   string
}

var levelColors = map[Level]Color{
	LevelLow:      {Token: "green", Hex: "#28a745"},
	LevelModerate: {Token: "yellow", Hex: "#ffc107"},
	LevelElevated: {Token: "blue", Hex: "#17a2b8"},
	LevelHigh:     {Token: "orange", Hex: "#fd7e14"},
	LevelExtreme:  {Token: "red", Hex: "#dc3545"},
}

var levelDescriptions = map[Level]string{
	LevelLow:      "Stable with minimal risks",
	LevelModerate: "Some concerns but manageable",
	LevelElevated: "Significant risks requiring monitoring",
	LevelHigh:     "Serious threats with potential for instability",
	LevelExtreme:  "Critical threats with high probability of crisis",
}

// DisplayColor maps a level to its color. Unknown levels get a neutral grey.
func DisplayColor(level Level) Color {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return Color{Token: "grey", Hex: "#6c757d"}
}

// Description is the one-line reading of a level.
func Description(level Level) string {
	if d, ok := levelDescriptions[level]; ok {
		return d
	}
	return "N/A"
}

// Band is one contiguous score range: (previous Upper, Upper] maps to Level.
// The first band is closed below at the minimum score.
type Band struct {
	Upper float64
	Level Level
}

// DefaultBands are the five threat tiers over [1, 10].
func DefaultBands() []Band {
	return []Band{
		{Upper: 2.0, Level: LevelLow},
		{Upper: 4.0, Level: LevelModerate},
		{Upper: 6.0, Level: LevelElevated},
		{Upper: 8.0, Level: LevelHigh},
		{Upper: 10.0, Level: LevelExtreme},
	}
}
