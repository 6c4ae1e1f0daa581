package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arff/internal/domain/attendance"
	"arff/internal/domain/class"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
)

// ErrDateOutsideClass is returned for attendance on a day the class does not run.
var ErrDateOutsideClass = errors.New("date is outside the class dates")

// AttendanceStore defines the attendance persistence the orchestrators need.
type AttendanceStore interface {
	Upsert(ctx context.Context, r attendance.Record) error
	ListByClassAndFirefighter(ctx context.Context, classID, firefighterID string) ([]attendance.Record, error)
}

// AttendanceMark is one firefighter's presence on the recorded day.
type AttendanceMark struct {
	FirefighterID string `json:"firefighter_id"`
	Present       bool   `json:"present"`
}

// RecordAttendanceInput carries input for the record attendance orchestrator.
type RecordAttendanceInput struct {
	ClassID    string
	Date       time.Time
	Marks      []AttendanceMark
	RecordedBy string
}

// RecordAttendanceDeps holds dependencies for RecordAttendance.
type RecordAttendanceDeps struct {
	Classes     ClassReader
	Enrollments EnrollmentStore
	Attendance  AttendanceStore
	GenerateID  func() string
}

// ExecuteRecordAttendance stores a day's register for a class.
// PRE: class is open; Date falls within the class; every mark names an active enrollee
// POST: One record per (class, firefighter, date); re-recording overwrites the mark
// INVARIANT: Nothing is written when any mark is rejected
func ExecuteRecordAttendance(ctx context.Context, input RecordAttendanceInput, deps RecordAttendanceDeps) (int, error) {
	c, err := deps.Classes.GetByID(ctx, input.ClassID)
	if err != nil {
		return 0, err
	}
	if c.IsClosed() {
		return 0, class.ErrAlreadyClosed
	}
	day := firefighter.Day(input.Date)
	if !c.Covers(day) {
		return 0, ErrDateOutsideClass
	}

	enrolled, err := deps.Enrollments.ListByClass(ctx, c.ID)
	if err != nil {
		return 0, err
	}
	active := make(map[string]bool, len(enrolled))
	for _, e := range enrolled {
		if e.Status == enrollment.StatusEnrolled {
			active[e.FirefighterID] = true
		}
	}

	records := make([]attendance.Record, 0, len(input.Marks))
	for _, m := range input.Marks {
		if !active[m.FirefighterID] {
			return 0, fmt.Errorf("%s: %w", m.FirefighterID, enrollment.ErrNotEnrolled)
		}
		r := attendance.Record{
			ID:            deps.GenerateID(),
			ClassID:       c.ID,
			FirefighterID: m.FirefighterID,
			Date:          day,
			Present:       m.Present,
			RecordedBy:    input.RecordedBy,
		}
		if err := r.Validate(); err != nil {
			return 0, err
		}
		records = append(records, r)
	}

	for _, r := range records {
		if err := deps.Attendance.Upsert(ctx, r); err != nil {
			return 0, err
		}
	}
	slog.Info("attendance_recorded", "class_id", c.ID, "date", firefighter.FormatDate(day), "marks", len(records), "by", input.RecordedBy)
	return len(records), nil
}
