// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/ports/secondary"
)

// AssessmentRepository implements secondary.AssessmentRepository with SQLite.
type AssessmentRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures an AssessmentRepository.
type Option func(*AssessmentRepository)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *AssessmentRepository) {
		r.now = now
	}
}

// NewAssessmentRepository creates a new SQLite assessment repository.
func NewAssessmentRepository(db *sql.DB, opts ...Option) *AssessmentRepository {
	r := &AssessmentRepository{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	indicatorColumns = buildIndicatorColumns()
	noteColumns      = []string{"key_risk_factors", "trend_analysis", "recommendations"}
	selectColumns    = "id, name, " + strings.Join(indicatorColumns, ", ") + ", " +
		strings.Join(noteColumns, ", ") + ", created_at, updated_at"
)

func buildIndicatorColumns() []string {
	var cols []string
	for _, ind := range assessment.Indicators() {
		cols = append(cols, ind.Column)
	}
	return cols
}

// insertSQL builds the INSERT statement, optionally as an upsert on name.
// On conflict the row keeps its id and created_at.
func insertSQL(upsert bool) string {
	cols := append([]string{"id", "name"}, indicatorColumns...)
	cols = append(cols, noteColumns...)
	cols = append(cols, "created_at", "updated_at")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO countries (%s) VALUES (%s)", strings.Join(cols, ", "), placeholders)
	if !upsert {
		return stmt
	}

	var sets []string
	for _, c := range indicatorColumns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	for _, c := range noteColumns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	// updated_at never moves backwards, even if the clock does
	sets = append(sets, "updated_at = MAX(countries.updated_at, excluded.updated_at)")

	return stmt + " ON CONFLICT(name) DO UPDATE SET " + strings.Join(sets, ", ")
}

var (
	upsertStmt = insertSQL(true)
	insertStmt = insertSQL(false)
)

func insertArgs(record *secondary.AssessmentRecord, now time.Time) ([]any, error) {
	args := []any{record.ID, record.Name}
	for _, ind := range assessment.Indicators() {
		v, ok := record.Ratings[ind.ID]
		if !ok {
			return nil, fmt.Errorf("indicator %s is missing", ind.ID)
		}
		args = append(args, v)
	}
	args = append(args,
		record.Notes.KeyRiskFactors,
		record.Notes.TrendAnalysis,
		record.Notes.Recommendations,
		now, now,
	)
	return args, nil
}

// Save upserts a record by name inside a single transaction and returns
// the stored row.
func (r *AssessmentRepository) Save(ctx context.Context, record *secondary.AssessmentRecord) (*secondary.AssessmentRecord, error) {
	now := r.now().UTC()

	candidate := *record
	candidate.ID = uuid.NewString()
	args, err := insertArgs(&candidate, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save assessment %q: %w", record.Name, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &secondary.StorageError{Op: "save", Name: record.Name, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertStmt, args...); err != nil {
		return nil, &secondary.StorageError{Op: "save", Name: record.Name, Err: err}
	}

	saved, err := scanRecord(tx.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM countries WHERE name = ?", record.Name))
	if err != nil {
		return nil, &secondary.StorageError{Op: "save", Name: record.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &secondary.StorageError{Op: "save", Name: record.Name, Err: err}
	}

	return saved, nil
}

// Insert persists a new record. A name collision returns
// secondary.ErrDuplicateName and leaves the existing row untouched.
func (r *AssessmentRepository) Insert(ctx context.Context, record *secondary.AssessmentRecord) error {
	now := r.now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	args, err := insertArgs(record, now)
	if err != nil {
		return fmt.Errorf("failed to insert assessment %q: %w", record.Name, err)
	}

	_, err = r.db.ExecContext(ctx, insertStmt, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("assessment %q: %w", record.Name, secondary.ErrDuplicateName)
	}
	if err != nil {
		return &secondary.StorageError{Op: "insert", Name: record.Name, Err: err}
	}

	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// GetByName retrieves a record by exact name (nil if none).
func (r *AssessmentRepository) GetByName(ctx context.Context, name string) (*secondary.AssessmentRecord, error) {
	record, err := scanRecord(r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM countries WHERE name = ?", name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &secondary.StorageError{Op: "load", Name: name, Err: err}
	}
	return record, nil
}

// List retrieves all records ordered by name (binary collation).
func (r *AssessmentRepository) List(ctx context.Context) ([]*secondary.AssessmentRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM countries ORDER BY name ASC")
	if err != nil {
		return nil, &secondary.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	var records []*secondary.AssessmentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, &secondary.StorageError{Op: "list", Err: fmt.Errorf("failed to scan assessment: %w", err)}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &secondary.StorageError{Op: "list", Err: err}
	}

	return records, nil
}

// Delete removes a record by name. Returns false if it did not exist.
func (r *AssessmentRepository) Delete(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM countries WHERE name = ?", name)
	if err != nil {
		return false, &secondary.StorageError{Op: "delete", Name: name, Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, &secondary.StorageError{Op: "delete", Name: name, Err: err}
	}

	return rowsAffected > 0, nil
}

// Count returns the number of stored records.
func (r *AssessmentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM countries").Scan(&n); err != nil {
		return 0, &secondary.StorageError{Op: "count", Err: err}
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*secondary.AssessmentRecord, error) {
	record := &secondary.AssessmentRecord{}
	values := make([]int, len(indicatorColumns))

	dest := []any{&record.ID, &record.Name}
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest,
		&record.Notes.KeyRiskFactors,
		&record.Notes.TrendAnalysis,
		&record.Notes.Recommendations,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	record.Ratings = make(assessment.Ratings, len(values))
	for i, ind := range assessment.Indicators() {
		record.Ratings[ind.ID] = values[i]
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()

	return record, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Ensure AssessmentRepository implements the interface.
var _ secondary.AssessmentRepository = (*AssessmentRepository)(nil)
