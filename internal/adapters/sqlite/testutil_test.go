// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// Every test database is built by db.Open, which runs the embedded
// migrations. Tests never carry their own CREATE TABLE statements, so a
// repository that references a column the migrations do not create fails
// immediately with "no such column".
package sqlite_test

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/db"
	"github.com/example/riskledger/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the migrated schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// fakeClock hands out a fixed time that tests advance explicitly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newRecord builds a complete record with every indicator set to v.
func newRecord(name string, v int) *secondary.AssessmentRecord {
	return &secondary.AssessmentRecord{
		Name:    name,
		Ratings: assessment.UniformRatings(v),
		Notes: assessment.Notes{
			KeyRiskFactors:  "border disputes",
			TrendAnalysis:   "stable",
			Recommendations: "monitor",
		},
	}
}
