package attendance_test

import (
	"context"
	"testing"
	"time"

	store "arff/internal/adapters/storage/attendance"
	"arff/internal/adapters/storage/storagetest"
	domain "arff/internal/domain/attendance"
)

func TestSQLiteStore_UpsertReplacesMark(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.SeedClass(t, db)
	s := store.NewSQLiteStore(db)
	ctx := context.Background()
	d1 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	marks := []domain.Record{
		{ID: "a1", ClassID: "k1", FirefighterID: "f1", Date: d1, Present: false, RecordedBy: "lia"},
		{ID: "a2", ClassID: "k1", FirefighterID: "f1", Date: d1, Present: true, RecordedBy: "rui"},
		{ID: "a3", ClassID: "k1", FirefighterID: "f1", Date: d2, Present: true},
		{ID: "a4", ClassID: "k1", FirefighterID: "f2", Date: d1, Present: true},
	}
	for _, m := range marks {
		if err := s.Upsert(ctx, m); err != nil {
			t.Fatalf("Upsert %s: %v", m.ID, err)
		}
	}

	mine, err := s.ListByClassAndFirefighter(ctx, "k1", "f1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d marks, want 2", len(mine))
	}
	if mine[0].ID != "a1" || !mine[0].Present || mine[0].RecordedBy != "rui" {
		t.Errorf("first mark = %+v, want a1 overwritten as present by rui", mine[0])
	}
	if !mine[1].Date.Equal(d2) {
		t.Errorf("second mark date = %v", mine[1].Date)
	}

	all, err := s.ListByClass(ctx, "k1")
	if err != nil || len(all) != 3 {
		t.Errorf("ListByClass = %d, %v", len(all), err)
	}
}
