package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"arff/internal/adapters/email"
	"arff/internal/domain/attendance"
	"arff/internal/domain/certificate"
	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
	"arff/internal/domain/outbox"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// sequentialIDs returns prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s not found: %w", what, sql.ErrNoRows)
}

// --- firefighters ---

type memFirefighters struct {
	byID     map[string]firefighter.Firefighter
	revision int64
	saveErr  error
}

func newMemFirefighters(ffs ...firefighter.Firefighter) *memFirefighters {
	m := &memFirefighters{byID: map[string]firefighter.Firefighter{}}
	for _, f := range ffs {
		m.byID[f.ID] = f
	}
	return m
}

func (m *memFirefighters) GetByID(_ context.Context, id string) (firefighter.Firefighter, error) {
	f, ok := m.byID[id]
	if !ok {
		return firefighter.Firefighter{}, notFound("firefighter")
	}
	return f, nil
}

func (m *memFirefighters) GetByTaxID(_ context.Context, taxID string) (firefighter.Firefighter, error) {
	for _, f := range m.byID {
		if f.TaxID == taxID {
			return f, nil
		}
	}
	return firefighter.Firefighter{}, notFound("firefighter")
}

func (m *memFirefighters) Save(_ context.Context, f firefighter.Firefighter) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byID[f.ID] = f
	m.revision++
	return nil
}

func (m *memFirefighters) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; ok {
		delete(m.byID, id)
		m.revision++
	}
	return nil
}

func (m *memFirefighters) Snapshot(_ context.Context) (firefighter.Snapshot, error) {
	snap := firefighter.Snapshot{Revision: m.revision}
	for _, f := range m.byID {
		snap.Records = append(snap.Records, f)
	}
	sort.Slice(snap.Records, func(i, j int) bool { return snap.Records[i].ID < snap.Records[j].ID })
	return snap, nil
}

// --- courses and classes ---

type memCourses struct {
	byID map[string]course.Course
}

func newMemCourses(cs ...course.Course) *memCourses {
	m := &memCourses{byID: map[string]course.Course{}}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCourses) GetByID(_ context.Context, id string) (course.Course, error) {
	c, ok := m.byID[id]
	if !ok {
		return course.Course{}, notFound("course")
	}
	return c, nil
}

func (m *memCourses) GetByCode(_ context.Context, code string) (course.Course, error) {
	for _, c := range m.byID {
		if c.Code == code {
			return c, nil
		}
	}
	return course.Course{}, notFound("course")
}

func (m *memCourses) Save(_ context.Context, c course.Course) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memCourses) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memClasses struct {
	byID map[string]class.Class
}

func newMemClasses(cs ...class.Class) *memClasses {
	m := &memClasses{byID: map[string]class.Class{}}
	for _, c := range cs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memClasses) GetByID(_ context.Context, id string) (class.Class, error) {
	c, ok := m.byID[id]
	if !ok {
		return class.Class{}, notFound("class")
	}
	return c, nil
}

func (m *memClasses) Save(_ context.Context, c class.Class) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memClasses) CountByCourse(_ context.Context, courseID string) (int, error) {
	n := 0
	for _, c := range m.byID {
		if c.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

// --- enrollments ---

type memEnrollments struct {
	byID  map[string]enrollment.Enrollment
	order []string
}

func newMemEnrollments(es ...enrollment.Enrollment) *memEnrollments {
	m := &memEnrollments{byID: map[string]enrollment.Enrollment{}}
	for _, e := range es {
		_ = m.Save(context.Background(), e)
	}
	return m
}

func (m *memEnrollments) GetByID(_ context.Context, id string) (enrollment.Enrollment, error) {
	e, ok := m.byID[id]
	if !ok {
		return enrollment.Enrollment{}, notFound("enrollment")
	}
	return e, nil
}

func (m *memEnrollments) GetByClassAndFirefighter(_ context.Context, classID, firefighterID string) (enrollment.Enrollment, error) {
	for _, id := range m.order {
		e := m.byID[id]
		if e.ClassID == classID && e.FirefighterID == firefighterID {
			return e, nil
		}
	}
	return enrollment.Enrollment{}, notFound("enrollment")
}

func (m *memEnrollments) Save(_ context.Context, e enrollment.Enrollment) error {
	if _, ok := m.byID[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.byID[e.ID] = e
	return nil
}

func (m *memEnrollments) ListByClass(_ context.Context, classID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, id := range m.order {
		if e := m.byID[id]; e.ClassID == classID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEnrollments) ListByFirefighter(_ context.Context, firefighterID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, id := range m.order {
		if e := m.byID[id]; e.FirefighterID == firefighterID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEnrollments) CountActive(_ context.Context, classID string) (int, error) {
	n := 0
	for _, e := range m.byID {
		if e.ClassID == classID && e.Status != enrollment.StatusWithdrawn {
			n++
		}
	}
	return n, nil
}

// --- attendance ---

type memAttendance struct {
	records map[string]attendance.Record // keyed by class|ff|date
	upserts int
}

func newMemAttendance() *memAttendance {
	return &memAttendance{records: map[string]attendance.Record{}}
}

func (m *memAttendance) Upsert(_ context.Context, r attendance.Record) error {
	key := r.ClassID + "|" + r.FirefighterID + "|" + firefighter.FormatDate(r.Date)
	if old, ok := m.records[key]; ok {
		r.ID = old.ID
	}
	m.records[key] = r
	m.upserts++
	return nil
}

func (m *memAttendance) ListByClassAndFirefighter(_ context.Context, classID, firefighterID string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range m.records {
		if r.ClassID == classID && r.FirefighterID == firefighterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// markPresent records presence for every day in days.
func (m *memAttendance) markPresent(classID, firefighterID string, days ...time.Time) {
	for _, d := range days {
		_ = m.Upsert(context.Background(), attendance.Record{
			ID: "att-" + firefighterID + firefighter.FormatDate(d), ClassID: classID,
			FirefighterID: firefighterID, Date: d, Present: true,
		})
	}
}

// --- certificates ---

type memCertificates struct {
	issued  []certificate.Certificate
	failFor string
}

func (m *memCertificates) Issue(_ context.Context, c certificate.Certificate) (certificate.Certificate, error) {
	if c.FirefighterID == m.failFor {
		return certificate.Certificate{}, errors.New("disk full")
	}
	c.Number = certificate.FormatNumber(c.IssuedAt.Year(), len(m.issued)+1)
	if err := c.Validate(); err != nil {
		return certificate.Certificate{}, err
	}
	m.issued = append(m.issued, c)
	return c, nil
}

func (m *memCertificates) ListByClass(_ context.Context, classID string) ([]certificate.Certificate, error) {
	var out []certificate.Certificate
	for _, c := range m.issued {
		if c.ClassID == classID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- outbox and email ---

type memOutbox struct {
	mu      sync.Mutex
	entries map[string]outbox.Entry
	order   []string
}

func newMemOutbox(es ...outbox.Entry) *memOutbox {
	m := &memOutbox{entries: map[string]outbox.Entry{}}
	for _, e := range es {
		m.entries[e.ID] = e
		m.order = append(m.order, e.ID)
	}
	return m
}

func (m *memOutbox) Enqueue(_ context.Context, e outbox.Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.DedupKey == e.DedupKey {
			return false, nil
		}
	}
	m.entries[e.ID] = e
	m.order = append(m.order, e.ID)
	return true, nil
}

func (m *memOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, notFound("outbox entry")
	}
	return e, nil
}

func (m *memOutbox) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *memOutbox) ListDue(_ context.Context, now time.Time, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.Due(now) {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memOutbox) get(id string) outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[id]
}

type fakeSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
	err  error
}

func (s *fakeSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return email.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("msg-%d", len(s.sent))}, nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
