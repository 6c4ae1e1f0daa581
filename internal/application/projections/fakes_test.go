package projections

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	classStore "arff/internal/adapters/storage/class"
	"arff/internal/domain/attendance"
	"arff/internal/domain/certificate"
	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeRoster struct {
	snap      firefighter.Snapshot
	snapshots int
	// afterSnapshot runs once a snapshot has been handed out, standing in for a concurrent write.
	afterSnapshot func(r *fakeRoster)
}

func (r *fakeRoster) Snapshot(_ context.Context) (firefighter.Snapshot, error) {
	r.snapshots++
	snap := firefighter.Snapshot{Revision: r.snap.Revision, Records: append([]firefighter.Firefighter(nil), r.snap.Records...)}
	if r.afterSnapshot != nil {
		r.afterSnapshot(r)
	}
	return snap, nil
}

func (r *fakeRoster) Revision(_ context.Context) (int64, error) {
	return r.snap.Revision, nil
}

func (r *fakeRoster) GetByID(_ context.Context, id string) (firefighter.Firefighter, error) {
	for _, f := range r.snap.Records {
		if f.ID == id {
			return f, nil
		}
	}
	return firefighter.Firefighter{}, fmt.Errorf("firefighter not found: %w", sql.ErrNoRows)
}

// sampleRoster has two general expiries in March 2025, one in December, a July fire expiry
// and one record with no graduation date.
func sampleRoster() []firefighter.Firefighter {
	return []firefighter.Firefighter{
		{ID: "a", Name: "Ana", Site: "SBGR", Region: "SE", Tier: firefighter.TierIV,
			GraduationDate: day(2019, 2, 28), LastUpdateDate: day(2023, 3, 10), LastFireExerciseDate: day(2023, 7, 1)},
		{ID: "b", Name: "Bruno", Site: "SBBR", Region: "SE", Tier: firefighter.TierII,
			GraduationDate: day(2017, 1, 10), LastUpdateDate: day(2021, 3, 15)},
		{ID: "c", Name: "Carla", Site: "SBKP", Region: "S", Tier: firefighter.TierIII,
			GraduationDate: day(2020, 5, 5), LastUpdateDate: day(2023, 12, 1)},
		{ID: "d", Name: "Duda", Site: "SBKP", Region: "S", Tier: firefighter.TierI},
	}
}

type fakeClasses struct {
	classes []class.Class
}

func (f *fakeClasses) GetByID(_ context.Context, id string) (class.Class, error) {
	for _, c := range f.classes {
		if c.ID == id {
			return c, nil
		}
	}
	return class.Class{}, fmt.Errorf("class not found: %w", sql.ErrNoRows)
}

func (f *fakeClasses) List(_ context.Context, filter classStore.ListFilter) ([]class.Class, error) {
	var out []class.Class
	for _, c := range f.classes {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Site != "" && c.Site != filter.Site {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeCourses map[string]course.Course

func (f fakeCourses) GetByID(_ context.Context, id string) (course.Course, error) {
	c, ok := f[id]
	if !ok {
		return course.Course{}, fmt.Errorf("course not found: %w", sql.ErrNoRows)
	}
	return c, nil
}

type fakeEnrollments []enrollment.Enrollment

func (f fakeEnrollments) ListByClass(_ context.Context, classID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, e := range f {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeEnrollments) ListByFirefighter(_ context.Context, firefighterID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, e := range f {
		if e.FirefighterID == firefighterID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAttendance []attendance.Record

func (f fakeAttendance) ListByClass(_ context.Context, classID string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f {
		if r.ClassID == classID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCertificates []certificate.Certificate

func (f fakeCertificates) ListByFirefighter(_ context.Context, firefighterID string) ([]certificate.Certificate, error) {
	var out []certificate.Certificate
	for _, c := range f {
		if c.FirefighterID == firefighterID {
			out = append(out, c)
		}
	}
	return out, nil
}

func sampleSnapshot() firefighter.Snapshot {
	return firefighter.Snapshot{Revision: 1, Records: sampleRoster()}
}
