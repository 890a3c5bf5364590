package secondary

import (
	"context"
	"time"

	"github.com/example/riskledger/internal/core/assessment"
)

// AssessmentRecord represents a country assessment as stored in persistence.
// Only raw ratings and notes are stored; scores are always derived.
type AssessmentRecord struct {
	ID        string // opaque surrogate key, assigned on first insert
	Name      string
	Ratings   assessment.Ratings
	Notes     assessment.Notes
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssessmentRepository defines the secondary port for assessment persistence.
// Records are keyed by Name; names are unique and compared exactly.
type AssessmentRepository interface {
	// Save upserts by name. A new name is inserted with CreatedAt = UpdatedAt = now;
	// an existing name has its ratings and notes replaced, keeps its ID and
	// CreatedAt, and gets UpdatedAt = now. Returns the stored record.
	Save(ctx context.Context, record *AssessmentRecord) (*AssessmentRecord, error)

	// Insert persists a new record and never overwrites.
	// Returns ErrDuplicateName if the name is taken.
	Insert(ctx context.Context, record *AssessmentRecord) error

	// GetByName retrieves a record by exact name (nil if none).
	GetByName(ctx context.Context, name string) (*AssessmentRecord, error)

	// List retrieves all records ordered by name ascending.
	List(ctx context.Context) ([]*AssessmentRecord, error)

	// Delete removes a record by name. Returns false if no record had that name.
	Delete(ctx context.Context, name string) (bool, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
