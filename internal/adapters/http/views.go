package web

import (
	"time"

	"arff/internal/domain/attendance"
	"arff/internal/domain/certificate"
	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
	"arff/internal/domain/outbox"
)

// Wire shapes of domain values. Dates render as YYYY-MM-DD, instants as RFC 3339 UTC.

type courseView struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Hours           int    `json:"hours"`
	Description     string `json:"description,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
}

func newCourseView(c course.Course) courseView {
	return courseView{ID: c.ID, Code: c.Code, Name: c.Name, Kind: c.Kind, Hours: c.Hours, Description: c.Description}
}

type classView struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	Site       string `json:"site"`
	Instructor string `json:"instructor,omitempty"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Capacity   int    `json:"capacity"`
	Status     string `json:"status"`
}

func newClassView(c class.Class) classView {
	return classView{
		ID:         c.ID,
		CourseID:   c.CourseID,
		Site:       c.Site,
		Instructor: c.Instructor,
		StartDate:  firefighter.FormatDate(c.StartDate),
		EndDate:    firefighter.FormatDate(c.EndDate),
		Capacity:   c.Capacity,
		Status:     c.Status,
	}
}

type enrollmentView struct {
	ID            string   `json:"id"`
	ClassID       string   `json:"class_id"`
	FirefighterID string   `json:"firefighter_id"`
	Status        string   `json:"status"`
	Grade         *float64 `json:"grade,omitempty"`
	EnrolledAt    string   `json:"enrolled_at"`
}

func newEnrollmentView(e enrollment.Enrollment) enrollmentView {
	return enrollmentView{
		ID:            e.ID,
		ClassID:       e.ClassID,
		FirefighterID: e.FirefighterID,
		Status:        e.Status,
		Grade:         e.Grade,
		EnrolledAt:    instant(e.EnrolledAt),
	}
}

type certificateView struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	FirefighterID string `json:"firefighter_id"`
	CourseID      string `json:"course_id"`
	ClassID       string `json:"class_id"`
	IssuedAt      string `json:"issued_at"`
}

func newCertificateViews(cs []certificate.Certificate) []certificateView {
	out := make([]certificateView, 0, len(cs))
	for _, c := range cs {
		out = append(out, certificateView{
			ID:            c.ID,
			Number:        c.Number,
			FirefighterID: c.FirefighterID,
			CourseID:      c.CourseID,
			ClassID:       c.ClassID,
			IssuedAt:      instant(c.IssuedAt),
		})
	}
	return out
}

type attendanceView struct {
	FirefighterID string `json:"firefighter_id"`
	Date          string `json:"date"`
	Present       bool   `json:"present"`
	RecordedBy    string `json:"recorded_by,omitempty"`
}

func newAttendanceViews(rs []attendance.Record) []attendanceView {
	out := make([]attendanceView, 0, len(rs))
	for _, r := range rs {
		out = append(out, attendanceView{
			FirefighterID: r.FirefighterID,
			Date:          firefighter.FormatDate(r.Date),
			Present:       r.Present,
			RecordedBy:    r.RecordedBy,
		})
	}
	return out
}

type outboxView struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	DedupKey      string `json:"dedup_key"`
	Status        string `json:"status"`
	Attempts      int    `json:"attempts"`
	MaxAttempts   int    `json:"max_attempts"`
	NextAttemptAt string `json:"next_attempt_at,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	CreatedAt     string `json:"created_at"`
	SentAt        string `json:"sent_at,omitempty"`
}

func newOutboxViews(es []outbox.Entry) []outboxView {
	out := make([]outboxView, 0, len(es))
	for _, e := range es {
		out = append(out, outboxView{
			ID:            e.ID,
			Kind:          e.Kind,
			DedupKey:      e.DedupKey,
			Status:        e.Status,
			Attempts:      e.Attempts,
			MaxAttempts:   e.MaxAttempts,
			NextAttemptAt: instant(e.NextAttemptAt),
			LastError:     e.LastError,
			CreatedAt:     instant(e.CreatedAt),
			SentAt:        instant(e.SentAt),
		})
	}
	return out
}

func instant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
