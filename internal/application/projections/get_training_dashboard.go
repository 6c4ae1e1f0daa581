package projections

import (
	"context"
	"fmt"
	"time"

	classStore "arff/internal/adapters/storage/class"
	"arff/internal/domain/class"
	"arff/internal/domain/credential"
	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
)

// upcomingClassesLimit bounds the dashboard's class list.
const upcomingClassesLimit = 10

// GetTrainingDashboardQuery carries input for the dashboard projection.
type GetTrainingDashboardQuery struct {
	Today  time.Time
	Window time.Duration
	Site   string // optional
}

// GetTrainingDashboardDeps holds dependencies for the dashboard projection.
type GetTrainingDashboardDeps struct {
	Reports ReportDeps
	Classes ClassLister
}

// UpcomingClass is a scheduled class shown on the dashboard.
type UpcomingClass struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	Site      string `json:"site"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Capacity  int    `json:"capacity"`
}

// GetTrainingDashboardResult carries the output of the dashboard projection.
type GetTrainingDashboardResult struct {
	Revision        int64                     `json:"revision"`
	Total           int                       `json:"total"`
	StatusCounts    map[credential.Status]int `json:"status_counts"`
	Away            int                       `json:"away"`
	Histogram       expiryreport.Histogram    `json:"histogram"`
	UpcomingClasses []UpcomingClass           `json:"upcoming_classes"`
}

// QueryGetTrainingDashboard summarises credential status and upcoming training.
// PRE: Today is set
// POST: StatusCounts sums to Total; Histogram covers Today's year
// INVARIANT: every figure comes from the one snapshot at Revision
func QueryGetTrainingDashboard(ctx context.Context, query GetTrainingDashboardQuery, deps GetTrainingDashboardDeps) (GetTrainingDashboardResult, error) {
	snap, err := deps.Reports.Roster.Snapshot(ctx)
	if err != nil {
		return GetTrainingDashboardResult{}, fmt.Errorf("roster snapshot: %w", err)
	}
	filter := expiryreport.Filter{Year: query.Today.Year(), Site: query.Site}

	res := GetTrainingDashboardResult{
		Revision: snap.Revision,
		StatusCounts: map[credential.Status]int{
			credential.StatusValid: 0, credential.StatusExpiring: 0,
			credential.StatusExpired: 0, credential.StatusInvalidData: 0,
		},
		UpcomingClasses: []UpcomingClass{},
	}
	for _, f := range snap.Records {
		if !filter.Matches(f) {
			continue
		}
		res.Total++
		if f.IsAwayOn(query.Today) {
			res.Away++
		}
		exp, err := credential.Calculate(f)
		if err != nil {
			res.StatusCounts[credential.StatusInvalidData]++
			continue
		}
		res.StatusCounts[exp.Worst(query.Today, query.Window)]++
	}

	res.Histogram = deps.Reports.histogramAt(snap, filter)

	classes, err := deps.Classes.List(ctx, classStore.ListFilter{Site: query.Site, Status: class.StatusScheduled})
	if err != nil {
		return GetTrainingDashboardResult{}, err
	}
	today := firefighter.Day(query.Today)
	for _, c := range classes {
		if c.StartDate.Before(today) {
			continue
		}
		res.UpcomingClasses = append(res.UpcomingClasses, UpcomingClass{
			ID: c.ID, CourseID: c.CourseID, Site: c.Site, Capacity: c.Capacity,
			StartDate: firefighter.FormatDate(c.StartDate), EndDate: firefighter.FormatDate(c.EndDate),
		})
		if len(res.UpcomingClasses) == upcomingClassesLimit {
			break
		}
	}
	return res, nil
}
