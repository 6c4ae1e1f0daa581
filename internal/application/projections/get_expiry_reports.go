package projections

import (
	"context"
	"fmt"
	"log/slog"

	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
	"arff/pkg/metrics"
)

// ReportDeps holds dependencies shared by the expiry report projections.
type ReportDeps struct {
	Roster  RosterSnapshotter
	Cache   *ReportCache // optional
	Metrics *metrics.Manager
}

// GetExpiryChartQuery carries the chart filter.
type GetExpiryChartQuery struct {
	Filter expiryreport.Filter
}

// GetExpiryChartResult is the monthly histogram plus the revision it was computed at.
type GetExpiryChartResult struct {
	Revision  int64                  `json:"revision"`
	Histogram expiryreport.Histogram `json:"histogram"`
}

// QueryGetExpiryChart aggregates credential expiries by month for one year.
// PRE: Filter.Year > 0
// POST: Result reflects the roster at Revision; skipped records are logged
// INVARIANT: a cached histogram is only served for the revision it was built from
func QueryGetExpiryChart(ctx context.Context, query GetExpiryChartQuery, deps ReportDeps) (GetExpiryChartResult, error) {
	key := ReportKey{Filter: query.Filter, Report: "histogram"}
	if v, rev, ok := deps.cached(ctx, key); ok {
		return GetExpiryChartResult{Revision: rev, Histogram: v.(expiryreport.Histogram)}, nil
	}
	snap, err := deps.Roster.Snapshot(ctx)
	if err != nil {
		return GetExpiryChartResult{}, fmt.Errorf("roster snapshot: %w", err)
	}
	return GetExpiryChartResult{Revision: snap.Revision, Histogram: deps.histogramAt(snap, query.Filter)}, nil
}

// histogramAt returns the histogram for snap, memoized under snap.Revision.
func (deps ReportDeps) histogramAt(snap firefighter.Snapshot, filter expiryreport.Filter) expiryreport.Histogram {
	key := ReportKey{Revision: snap.Revision, Filter: filter, Report: "histogram"}
	if v, ok := deps.Cache.Get(key); ok {
		return v.(expiryreport.Histogram)
	}
	h := expiryreport.AggregateByMonth(snap.Records, filter)
	logSkipped(h.Skipped, deps.Metrics)
	deps.Cache.Put(key, h)
	return h
}

// cached looks key up at the roster's current revision without loading records.
// A failed revision read counts as a miss; the caller's Snapshot reports the error.
func (deps ReportDeps) cached(ctx context.Context, key ReportKey) (any, int64, bool) {
	if deps.Cache == nil {
		return nil, 0, false
	}
	rev, err := deps.Roster.Revision(ctx)
	if err != nil {
		return nil, 0, false
	}
	key.Revision = rev
	v, ok := deps.Cache.Get(key)
	return v, rev, ok
}

// GetExpiryMatrixQuery carries the matrix filter and validity kind.
type GetExpiryMatrixQuery struct {
	Filter expiryreport.Filter
	Kind   expiryreport.ValidityKind
}

// QueryGetExpiryMatrix builds the site by month expiry matrix.
// PRE: Filter.Year > 0; Kind is general or fire
// POST: Rows sorted by site; Filter.Site does not restrict rows
func QueryGetExpiryMatrix(ctx context.Context, query GetExpiryMatrixQuery, deps ReportDeps) (expiryreport.Matrix, error) {
	filter := query.Filter
	filter.Site = ""
	key := ReportKey{Filter: filter, Report: "matrix:" + string(query.Kind)}
	if v, _, ok := deps.cached(ctx, key); ok {
		return v.(expiryreport.Matrix), nil
	}

	snap, err := deps.Roster.Snapshot(ctx)
	if err != nil {
		return expiryreport.Matrix{}, fmt.Errorf("roster snapshot: %w", err)
	}
	m := expiryreport.BuildMatrix(snap.Records, filter, query.Kind)
	logSkipped(m.Skipped, deps.Metrics)
	key.Revision = snap.Revision
	deps.Cache.Put(key, m)
	return m, nil
}

func logSkipped(skipped []expiryreport.SkippedRecord, m *metrics.Manager) {
	for _, s := range skipped {
		slog.Warn("expiry_record_skipped", "id", s.ID, "name", s.Name, "site", s.Site, "reason", s.Reason)
	}
	m.RecordSkipped(len(skipped))
}
