package projections

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"arff/internal/domain/certificate"
	"arff/internal/domain/firefighter"
)

// GetFirefighterProfileQuery carries input for the profile projection.
type GetFirefighterProfileQuery struct {
	FirefighterID string
	Today         time.Time
	Window        time.Duration
}

// GetFirefighterProfileDeps holds dependencies for the profile projection.
type GetFirefighterProfileDeps struct {
	Firefighters FirefighterReader
	Enrollments  EnrollmentReader
	Certificates CertificateReader
	Classes      ClassLister
	Courses      CourseReader
}

// TrainingEntry is one class a firefighter was enrolled in.
type TrainingEntry struct {
	EnrollmentID string   `json:"enrollment_id"`
	ClassID      string   `json:"class_id"`
	CourseCode   string   `json:"course_code"`
	CourseName   string   `json:"course_name"`
	CourseKind   string   `json:"course_kind"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Status       string   `json:"status"`
	Grade        *float64 `json:"grade,omitempty"`
}

// CertificateView is an issued certificate as shown on the profile.
type CertificateView struct {
	Number   string `json:"number"`
	CourseID string `json:"course_id"`
	ClassID  string `json:"class_id"`
	IssuedAt string `json:"issued_at"`
}

// GetFirefighterProfileResult carries the firefighter with credential and training history.
type GetFirefighterProfileResult struct {
	Firefighter  RosterRow         `json:"firefighter"`
	Training     []TrainingEntry   `json:"training"`
	Certificates []CertificateView `json:"certificates"`
}

// QueryGetFirefighterProfile assembles one firefighter's credential and training history.
// PRE: FirefighterID is non-empty
// POST: Training is newest enrollment first; classes or courses removed since are shown without detail
func QueryGetFirefighterProfile(ctx context.Context, query GetFirefighterProfileQuery, deps GetFirefighterProfileDeps) (GetFirefighterProfileResult, error) {
	f, err := deps.Firefighters.GetByID(ctx, query.FirefighterID)
	if err != nil {
		return GetFirefighterProfileResult{}, err
	}
	res := GetFirefighterProfileResult{
		Firefighter:  NewRosterRow(f, query.Today, query.Window),
		Training:     []TrainingEntry{},
		Certificates: []CertificateView{},
	}

	enrollments, err := deps.Enrollments.ListByFirefighter(ctx, f.ID)
	if err != nil {
		return GetFirefighterProfileResult{}, err
	}
	for _, e := range enrollments {
		entry := TrainingEntry{EnrollmentID: e.ID, ClassID: e.ClassID, Status: e.Status, Grade: e.Grade}
		c, err := deps.Classes.GetByID(ctx, e.ClassID)
		switch {
		case err == nil:
			entry.StartDate = firefighter.FormatDate(c.StartDate)
			entry.EndDate = firefighter.FormatDate(c.EndDate)
			if crs, err := deps.Courses.GetByID(ctx, c.CourseID); err == nil {
				entry.CourseCode, entry.CourseName, entry.CourseKind = crs.Code, crs.Name, crs.Kind
			} else if !errors.Is(err, sql.ErrNoRows) {
				return GetFirefighterProfileResult{}, err
			}
		case !errors.Is(err, sql.ErrNoRows):
			return GetFirefighterProfileResult{}, err
		}
		res.Training = append(res.Training, entry)
	}

	certs, err := deps.Certificates.ListByFirefighter(ctx, f.ID)
	if err != nil {
		return GetFirefighterProfileResult{}, err
	}
	for _, c := range certs {
		res.Certificates = append(res.Certificates, newCertificateView(c))
	}
	return res, nil
}

func newCertificateView(c certificate.Certificate) CertificateView {
	return CertificateView{
		Number:   c.Number,
		CourseID: c.CourseID,
		ClassID:  c.ClassID,
		IssuedAt: c.IssuedAt.UTC().Format(time.RFC3339),
	}
}
