package projections

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
)

func TestQueryGetExpiryChart(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		filter      expiryreport.Filter
		wantGeneral [12]int
		wantFire    [12]int
		wantSkipped int
	}{
		{
			name:        "whole roster",
			filter:      expiryreport.Filter{Year: 2025},
			wantGeneral: [12]int{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 1},
			wantFire:    [12]int{0, 0, 0, 0, 0, 0, 1},
			wantSkipped: 1,
		},
		{
			name:        "region",
			filter:      expiryreport.Filter{Year: 2025, Region: "SE"},
			wantGeneral: [12]int{0, 0, 2},
			wantFire:    [12]int{0, 0, 0, 0, 0, 0, 1},
		},
		{
			name:        "site",
			filter:      expiryreport.Filter{Year: 2025, Site: "SBKP"},
			wantGeneral: [12]int{11: 1},
			wantSkipped: 1,
		},
		{
			name:        "other year",
			filter:      expiryreport.Filter{Year: 2030},
			wantSkipped: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := &fakeRoster{snap: firefighter.Snapshot{Revision: 7, Records: sampleRoster()}}
			got, err := QueryGetExpiryChart(ctx, GetExpiryChartQuery{Filter: tt.filter}, ReportDeps{Roster: roster})
			if err != nil {
				t.Fatal(err)
			}
			if got.Revision != 7 {
				t.Errorf("revision = %d", got.Revision)
			}
			if diff := cmp.Diff(tt.wantGeneral, got.Histogram.Count(expiryreport.KindGeneral)); diff != "" {
				t.Errorf("general (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantFire, got.Histogram.Count(expiryreport.KindFire)); diff != "" {
				t.Errorf("fire (-want +got):\n%s", diff)
			}
			if len(got.Histogram.Skipped) != tt.wantSkipped {
				t.Errorf("skipped = %+v", got.Histogram.Skipped)
			}
		})
	}
}

func TestQueryGetExpiryChart_CachedPerRevision(t *testing.T) {
	ctx := context.Background()
	roster := &fakeRoster{snap: firefighter.Snapshot{Revision: 1, Records: sampleRoster()}}
	deps := ReportDeps{Roster: roster, Cache: NewReportCache(8, nil)}
	q := GetExpiryChartQuery{Filter: expiryreport.Filter{Year: 2025}}

	first, err := QueryGetExpiryChart(ctx, q, deps)
	if err != nil {
		t.Fatal(err)
	}
	// Records change without a revision bump: the memoized result stands
	// and the roster is not read again.
	roster.snap.Records = roster.snap.Records[:1]
	for range 4 {
		again, err := QueryGetExpiryChart(ctx, q, deps)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Errorf("same revision recomputed (-first +again):\n%s", diff)
		}
	}
	if roster.snapshots != 1 {
		t.Errorf("roster loaded %d times for one revision, want 1", roster.snapshots)
	}

	roster.snap.Revision = 2
	third, _ := QueryGetExpiryChart(ctx, q, deps)
	if third.Revision != 2 || third.Histogram.TotalGeneral() != 1 {
		t.Errorf("after revision bump = rev %d total %d, want rev 2 total 1", third.Revision, third.Histogram.TotalGeneral())
	}
	if roster.snapshots != 2 {
		t.Errorf("roster loaded %d times, want 2", roster.snapshots)
	}
}

func TestQueryGetExpiryChart_WithoutCacheAlwaysLoads(t *testing.T) {
	roster := &fakeRoster{snap: sampleSnapshot()}
	deps := ReportDeps{Roster: roster}
	for range 3 {
		if _, err := QueryGetExpiryChart(context.Background(), GetExpiryChartQuery{Filter: expiryreport.Filter{Year: 2025}}, deps); err != nil {
			t.Fatal(err)
		}
	}
	if roster.snapshots != 3 {
		t.Errorf("snapshots = %d, want 3", roster.snapshots)
	}
}

func TestQueryGetExpiryMatrix(t *testing.T) {
	ctx := context.Background()
	roster := &fakeRoster{snap: firefighter.Snapshot{Revision: 3, Records: sampleRoster()}}
	deps := ReportDeps{Roster: roster, Cache: NewReportCache(8, nil)}

	m, err := QueryGetExpiryMatrix(ctx, GetExpiryMatrixQuery{
		Filter: expiryreport.Filter{Year: 2025, Site: "SBGR"},
		Kind:   expiryreport.KindGeneral,
	}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"SBBR", "SBGR", "SBKP"}, m.Sites()); diff != "" {
		t.Errorf("sites (-want +got):\n%s", diff)
	}
	if m.GrandTotal != 3 || m.ColumnTotals[2] != 2 || m.ColumnTotals[11] != 1 {
		t.Errorf("totals = %v / %d", m.ColumnTotals, m.GrandTotal)
	}

	fire, _ := QueryGetExpiryMatrix(ctx, GetExpiryMatrixQuery{Filter: expiryreport.Filter{Year: 2025}, Kind: expiryreport.KindFire}, deps)
	if fire.GrandTotal != 1 || fire.Rows[1].Counts[6] != 1 {
		t.Errorf("fire matrix = %+v", fire)
	}
	if deps.Cache.Len() != 2 {
		t.Errorf("cache holds %d reports, want 2", deps.Cache.Len())
	}

	// Site is ignored, so another site's request hits the same entry without a reload.
	before := roster.snapshots
	if _, err := QueryGetExpiryMatrix(ctx, GetExpiryMatrixQuery{
		Filter: expiryreport.Filter{Year: 2025, Site: "SBKP"},
		Kind:   expiryreport.KindGeneral,
	}, deps); err != nil {
		t.Fatal(err)
	}
	if roster.snapshots != before {
		t.Errorf("cached matrix reloaded the roster")
	}
}
