package certificate_test

import (
	"context"
	"testing"
	"time"

	store "arff/internal/adapters/storage/certificate"
	"arff/internal/adapters/storage/storagetest"
	domain "arff/internal/domain/certificate"
)

func TestSQLiteStore_IssueNumbersPerYear(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedClass(t, db)
	storagetest.Exec(t, db,
		`INSERT INTO class (id, course_id, site, start_date, end_date, capacity, status) VALUES ('k2', 'c1', 'SBGR', '2025-01-06', '2025-01-07', 5, 'scheduled')`)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()
	in2024 := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	in2025 := time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)

	issue := func(id, ff, class string, at time.Time) (domain.Certificate, error) {
		return s.Issue(ctx, domain.Certificate{ID: id, FirefighterID: ff, CourseID: "c1", ClassID: class, IssuedAt: at})
	}

	tests := []struct {
		id, ff, class string
		at            time.Time
		want          string
	}{
		{"x1", "f1", "k1", in2024, "ARFF-2024-000001"},
		{"x2", "f2", "k1", in2024, "ARFF-2024-000002"},
		{"x3", "f1", "k2", in2025, "ARFF-2025-000001"},
	}
	for _, tt := range tests {
		c, err := issue(tt.id, tt.ff, tt.class, tt.at)
		if err != nil {
			t.Fatalf("Issue %s: %v", tt.id, err)
		}
		if c.Number != tt.want {
			t.Errorf("Issue %s number = %s, want %s", tt.id, c.Number, tt.want)
		}
	}

	if _, err := issue("x4", "f1", "k1", in2024); err == nil {
		t.Error("second certificate for the same class should fail")
	}
	// The failed issue rolled back, so numbering continues without a gap.
	c, err := issue("x5", "f3", "k1", in2024)
	if err != nil || c.Number != "ARFF-2024-000003" {
		t.Errorf("after rollback = %s, %v", c.Number, err)
	}

	mine, err := s.ListByFirefighter(ctx, "f1")
	if err != nil || len(mine) != 2 || mine[0].Number != "ARFF-2025-000001" {
		t.Errorf("ListByFirefighter = %+v, %v", mine, err)
	}
	byClass, err := s.ListByClass(ctx, "k1")
	if err != nil || len(byClass) != 3 {
		t.Errorf("ListByClass = %d, %v", len(byClass), err)
	}
}
