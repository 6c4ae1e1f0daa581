package projections

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"arff/internal/domain/attendance"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
)

// GetClassRosterDeps holds dependencies for the class roster projection.
type GetClassRosterDeps struct {
	Classes      ClassLister
	Courses      CourseReader
	Enrollments  EnrollmentReader
	Attendance   AttendanceReader
	Firefighters FirefighterReader
}

// ClassRosterRow is one enrollee with attendance so far.
type ClassRosterRow struct {
	EnrollmentID  string   `json:"enrollment_id"`
	FirefighterID string   `json:"firefighter_id"`
	Name          string   `json:"name"`
	Site          string   `json:"site"`
	Status        string   `json:"status"`
	Grade         *float64 `json:"grade,omitempty"`
	DaysPresent   int      `json:"days_present"`
	AttendancePct float64  `json:"attendance_pct"`
}

// GetClassRosterResult carries a class with its enrollees.
type GetClassRosterResult struct {
	ClassID    string           `json:"class_id"`
	CourseCode string           `json:"course_code"`
	CourseName string           `json:"course_name"`
	Site       string           `json:"site"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	Status     string           `json:"status"`
	Capacity   int              `json:"capacity"`
	Seated     int              `json:"seated"`
	Days       []string         `json:"days"`
	Rows       []ClassRosterRow `json:"rows"`
}

// QueryGetClassRoster lists a class's enrollees with attendance percentages.
// PRE: classID names an existing class
// POST: Rows ordered by name; Seated counts enrollments that are not withdrawn
func QueryGetClassRoster(ctx context.Context, classID string, deps GetClassRosterDeps) (GetClassRosterResult, error) {
	c, err := deps.Classes.GetByID(ctx, classID)
	if err != nil {
		return GetClassRosterResult{}, err
	}
	crs, err := deps.Courses.GetByID(ctx, c.CourseID)
	if err != nil {
		return GetClassRosterResult{}, err
	}
	res := GetClassRosterResult{
		ClassID: c.ID, CourseCode: crs.Code, CourseName: crs.Name, Site: c.Site, Status: c.Status,
		StartDate: firefighter.FormatDate(c.StartDate), EndDate: firefighter.FormatDate(c.EndDate),
		Capacity: c.Capacity, Rows: []ClassRosterRow{},
	}
	days := c.Days()
	for _, d := range days {
		res.Days = append(res.Days, firefighter.FormatDate(d))
	}

	records, err := deps.Attendance.ListByClass(ctx, c.ID)
	if err != nil {
		return GetClassRosterResult{}, err
	}
	byFirefighter := make(map[string][]attendance.Record)
	for _, r := range records {
		byFirefighter[r.FirefighterID] = append(byFirefighter[r.FirefighterID], r)
	}

	enrollments, err := deps.Enrollments.ListByClass(ctx, c.ID)
	if err != nil {
		return GetClassRosterResult{}, err
	}
	for _, e := range enrollments {
		row := ClassRosterRow{EnrollmentID: e.ID, FirefighterID: e.FirefighterID, Status: e.Status, Grade: e.Grade}
		if f, err := deps.Firefighters.GetByID(ctx, e.FirefighterID); err == nil {
			row.Name, row.Site = f.Name, f.Site
		} else if !errors.Is(err, sql.ErrNoRows) {
			return GetClassRosterResult{}, err
		}
		recs := byFirefighter[e.FirefighterID]
		for _, r := range recs {
			if r.Present {
				row.DaysPresent++
			}
		}
		row.AttendancePct = attendance.Percentage(recs, len(days))
		if e.Status != enrollment.StatusWithdrawn {
			res.Seated++
		}
		res.Rows = append(res.Rows, row)
	}
	sort.SliceStable(res.Rows, func(i, j int) bool { return res.Rows[i].Name < res.Rows[j].Name })
	return res, nil
}
