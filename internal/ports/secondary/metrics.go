package secondary

// MetricsRecorder receives operation outcomes and computed scores.
type MetricsRecorder interface {
	// ObserveOperation counts one store operation ("save", "delete", ...)
	// with its outcome ("created", "updated", "not_found", "invalid", "error", ...).
	ObserveOperation(op, outcome string)

	// ObserveScore records a computed total score and its level.
	ObserveScore(level string, score float64)
}
