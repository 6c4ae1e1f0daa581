package web

import (
	"net/http"
	"strings"

	"arff/internal/adapters/http/middleware"
	"arff/internal/adapters/markdown"
	classStore "arff/internal/adapters/storage/class"
	"arff/internal/application/orchestrators"
	"arff/internal/application/projections"
)

// --- Courses ---

func (s *server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.Stores.Courses.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]courseView, 0, len(courses))
	for _, c := range courses {
		out = append(out, newCourseView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetCourse returns a course with its markdown description rendered to HTML.
func (s *server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.Stores.Courses.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	view := newCourseView(c)
	if c.Description != "" {
		if view.DescriptionHTML, err = markdown.Render(c.Description); err != nil {
			internalError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, view)
}

type createCourseRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Hours       int    `json:"hours"`
	Description string `json:"description"`
}

func (s *server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := orchestrators.ExecuteCreateCourse(r.Context(), orchestrators.CreateCourseInput{
		Code:        req.Code,
		Name:        req.Name,
		Kind:        req.Kind,
		Hours:       req.Hours,
		Description: req.Description,
	}, orchestrators.CreateCourseDeps{Courses: s.Stores.Courses, GenerateID: s.GenerateID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCourseView(c))
}

func (s *server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteCourse(r.Context(), r.PathValue("id"), orchestrators.DeleteCourseDeps{
		Courses: s.Stores.Courses,
		Classes: s.Stores.Classes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Classes ---

// handleListClasses filters by site, status, course_id and year.
func (s *server) handleListClasses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := classStore.ListFilter{
		Site:     strings.ToUpper(strings.TrimSpace(q.Get("site"))),
		Status:   q.Get("status"),
		CourseID: q.Get("course_id"),
	}
	if q.Get("year") != "" {
		y, err := queryYear(r, 0)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Year = y
	}
	classes, err := s.Stores.Classes.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]classView, 0, len(classes))
	for _, c := range classes {
		out = append(out, newClassView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetClass returns the class with its enrollees and attendance so far.
func (s *server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetClassRoster(r.Context(), r.PathValue("id"), projections.GetClassRosterDeps{
		Classes:      s.Stores.Classes,
		Courses:      s.Stores.Courses,
		Enrollments:  s.Stores.Enrollments,
		Attendance:   s.Stores.Attendance,
		Firefighters: s.Stores.Firefighters,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type scheduleClassRequest struct {
	CourseID   string `json:"course_id"`
	Site       string `json:"site"`
	Instructor string `json:"instructor"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Capacity   int    `json:"capacity"`
}

func (s *server) handleScheduleClass(w http.ResponseWriter, r *http.Request) {
	var req scheduleClassRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := orchestrators.ExecuteScheduleClass(r.Context(), orchestrators.ScheduleClassInput{
		CourseID:   req.CourseID,
		Site:       req.Site,
		Instructor: req.Instructor,
		StartDate:  start,
		EndDate:    end,
		Capacity:   req.Capacity,
	}, orchestrators.ScheduleClassDeps{
		Courses:    s.Stores.Courses,
		Classes:    s.Stores.Classes,
		GenerateID: s.GenerateID,
		Now:        s.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newClassView(c))
}

func (s *server) handleCancelClass(w http.ResponseWriter, r *http.Request) {
	c, err := orchestrators.ExecuteCancelClass(r.Context(), r.PathValue("id"), s.Stores.Classes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newClassView(c))
}

// handleCompleteClass decides every enrollment and issues certificates for passes.
func (s *server) handleCompleteClass(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	result, err := orchestrators.ExecuteCompleteClass(r.Context(), orchestrators.CompleteClassInput{
		ClassID:     r.PathValue("id"),
		CompletedBy: p.User,
	}, orchestrators.CompleteClassDeps{
		Classes:          s.Stores.Classes,
		Courses:          s.Stores.Courses,
		Enrollments:      s.Stores.Enrollments,
		Attendance:       s.Stores.Attendance,
		Certificates:     s.Stores.Certificates,
		Firefighters:     s.Stores.Firefighters,
		GenerateID:       s.GenerateID,
		Now:              s.Now,
		PassMark:         s.Options.PassMark,
		MinAttendancePct: s.Options.MinAttendancePct,
		Metrics:          s.Metrics,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Class        classView         `json:"class"`
		Passed       []string          `json:"passed"`
		Failed       []string          `json:"failed"`
		Certificates []certificateView `json:"certificates"`
	}{
		Class:        newClassView(result.Class),
		Passed:       result.Passed,
		Failed:       result.Failed,
		Certificates: newCertificateViews(result.Certificates),
	})
}

// --- Enrollments ---

func (s *server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.Stores.Classes.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	es, err := s.Stores.Enrollments.ListByClass(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]enrollmentView, 0, len(es))
	for _, e := range es {
		out = append(out, newEnrollmentView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type enrollRequest struct {
	FirefighterID string `json:"firefighter_id"`
}

func (s *server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.FirefighterID == "" {
		writeError(w, badRequest("firefighter_id is required"))
		return
	}
	e, err := orchestrators.ExecuteEnroll(r.Context(), orchestrators.EnrollInput{
		ClassID:       r.PathValue("id"),
		FirefighterID: req.FirefighterID,
	}, orchestrators.EnrollDeps{
		Classes:      s.Stores.Classes,
		Firefighters: s.Stores.Firefighters,
		Enrollments:  s.Stores.Enrollments,
		GenerateID:   s.GenerateID,
		Now:          s.Now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEnrollmentView(e))
}

func (s *server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	e, err := orchestrators.ExecuteWithdraw(r.Context(), r.PathValue("id"), s.Stores.Classes, s.Stores.Enrollments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEnrollmentView(e))
}

type gradeRequest struct {
	Grade *float64 `json:"grade"`
}

func (s *server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Grade == nil {
		writeError(w, badRequest("grade is required"))
		return
	}
	e, err := orchestrators.ExecuteRecordGrade(r.Context(), orchestrators.RecordGradeInput{
		EnrollmentID: r.PathValue("id"),
		Grade:        *req.Grade,
	}, s.Stores.Classes, s.Stores.Enrollments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEnrollmentView(e))
}

// --- Attendance ---

func (s *server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.Stores.Classes.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	records, err := s.Stores.Attendance.ListByClass(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttendanceViews(records))
}

type attendanceRequest struct {
	Date  string                         `json:"date"`
	Marks []orchestrators.AttendanceMark `json:"marks"`
}

// handleRecordAttendance stores one day's register. Any rejected mark rejects the whole day.
func (s *server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	day, err := parseDate("date", req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	if day.IsZero() {
		writeError(w, badRequest("date is required"))
		return
	}
	p, _ := middleware.PrincipalFromContext(r.Context())
	n, err := orchestrators.ExecuteRecordAttendance(r.Context(), orchestrators.RecordAttendanceInput{
		ClassID:    r.PathValue("id"),
		Date:       day,
		Marks:      req.Marks,
		RecordedBy: p.User,
	}, orchestrators.RecordAttendanceDeps{
		Classes:     s.Stores.Classes,
		Enrollments: s.Stores.Enrollments,
		Attendance:  s.Stores.Attendance,
		GenerateID:  s.GenerateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recorded": n})
}
