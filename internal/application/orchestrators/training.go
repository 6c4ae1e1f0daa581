package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/firefighter"
)

// Course and class errors.
var (
	ErrCourseCodeTaken = errors.New("course code already exists")
	ErrCourseInUse     = errors.New("course has scheduled classes and cannot be deleted")
	ErrClassInPast     = errors.New("class cannot start in the past")
)

// DefaultClassCapacity applies when a class is scheduled without a capacity.
const DefaultClassCapacity = 20

// CourseStore defines the course persistence the training orchestrators need.
type CourseStore interface {
	GetByID(ctx context.Context, id string) (course.Course, error)
	GetByCode(ctx context.Context, code string) (course.Course, error)
	Save(ctx context.Context, c course.Course) error
	Delete(ctx context.Context, id string) error
}

// ClassStore defines the class persistence the training orchestrators need.
type ClassStore interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
	Save(ctx context.Context, c class.Class) error
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// --- Create Course ---

// CreateCourseInput carries input for the create course orchestrator.
type CreateCourseInput struct {
	Code        string
	Name        string
	Kind        string
	Hours       int
	Description string // markdown
}

// CreateCourseDeps holds dependencies for CreateCourse.
type CreateCourseDeps struct {
	Courses    CourseStore
	GenerateID func() string
}

// ExecuteCreateCourse adds a course to the catalogue.
// PRE: Code is unique; Kind is initial, recurrent or live_fire
// POST: Course persisted with a generated ID
func ExecuteCreateCourse(ctx context.Context, input CreateCourseInput, deps CreateCourseDeps) (course.Course, error) {
	c := course.Course{
		ID:          deps.GenerateID(),
		Code:        strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:        strings.TrimSpace(input.Name),
		Kind:        input.Kind,
		Hours:       input.Hours,
		Description: input.Description,
	}
	if err := c.Validate(); err != nil {
		return course.Course{}, err
	}
	_, err := deps.Courses.GetByCode(ctx, c.Code)
	switch {
	case err == nil:
		return course.Course{}, ErrCourseCodeTaken
	case !errors.Is(err, sql.ErrNoRows):
		return course.Course{}, err
	}
	if err := deps.Courses.Save(ctx, c); err != nil {
		return course.Course{}, err
	}
	slog.Info("course_created", "id", c.ID, "code", c.Code, "kind", c.Kind)
	return c, nil
}

// DeleteCourseDeps holds dependencies for DeleteCourse.
type DeleteCourseDeps struct {
	Courses CourseStore
	Classes ClassStore
}

// ExecuteDeleteCourse removes a course no class references.
// PRE: id is non-empty
// POST: Course removed, or ErrCourseInUse
func ExecuteDeleteCourse(ctx context.Context, id string, deps DeleteCourseDeps) error {
	if _, err := deps.Courses.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := deps.Classes.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCourseInUse
	}
	return deps.Courses.Delete(ctx, id)
}

// --- Schedule Class ---

// ScheduleClassInput carries input for the schedule class orchestrator.
type ScheduleClassInput struct {
	CourseID   string
	Site       string
	Instructor string
	StartDate  time.Time
	EndDate    time.Time
	Capacity   int
}

// ScheduleClassDeps holds dependencies for ScheduleClass.
type ScheduleClassDeps struct {
	Courses    CourseStore
	Classes    ClassStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteScheduleClass schedules a class of an existing course.
// PRE: course exists; StartDate is not in the past; EndDate >= StartDate
// POST: Class persisted with Status=scheduled
func ExecuteScheduleClass(ctx context.Context, input ScheduleClassInput, deps ScheduleClassDeps) (class.Class, error) {
	if _, err := deps.Courses.GetByID(ctx, input.CourseID); err != nil {
		return class.Class{}, err
	}
	capacity := input.Capacity
	if capacity == 0 {
		capacity = DefaultClassCapacity
	}
	c := class.Class{
		ID:         deps.GenerateID(),
		CourseID:   input.CourseID,
		Site:       strings.ToUpper(strings.TrimSpace(input.Site)),
		Instructor: strings.TrimSpace(input.Instructor),
		StartDate:  firefighter.Day(input.StartDate),
		EndDate:    firefighter.Day(input.EndDate),
		Capacity:   capacity,
		Status:     class.StatusScheduled,
	}
	if err := c.Validate(); err != nil {
		return class.Class{}, err
	}
	if c.StartDate.Before(firefighter.Day(deps.Now())) {
		return class.Class{}, ErrClassInPast
	}
	if err := deps.Classes.Save(ctx, c); err != nil {
		return class.Class{}, err
	}
	slog.Info("class_scheduled", "id", c.ID, "course_id", c.CourseID, "site", c.Site, "start", firefighter.FormatDate(c.StartDate))
	return c, nil
}

// ExecuteCancelClass cancels an open class.
// PRE: class exists and is not closed
// POST: Status=cancelled; enrollments are left as they are
func ExecuteCancelClass(ctx context.Context, id string, classes ClassStore) (class.Class, error) {
	c, err := classes.GetByID(ctx, id)
	if err != nil {
		return class.Class{}, err
	}
	if err := c.Cancel(); err != nil {
		return class.Class{}, err
	}
	if err := classes.Save(ctx, c); err != nil {
		return class.Class{}, err
	}
	slog.Info("class_cancelled", "id", c.ID)
	return c, nil
}
