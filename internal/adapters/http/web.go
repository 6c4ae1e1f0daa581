package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"arff/internal/adapters/http/middleware"
	attendanceStore "arff/internal/adapters/storage/attendance"
	certificateStore "arff/internal/adapters/storage/certificate"
	classStore "arff/internal/adapters/storage/class"
	courseStore "arff/internal/adapters/storage/course"
	enrollmentStore "arff/internal/adapters/storage/enrollment"
	firefighterStore "arff/internal/adapters/storage/firefighter"
	outboxStore "arff/internal/adapters/storage/outbox"
	"arff/internal/application/orchestrators"
	"arff/internal/application/projections"
	"arff/internal/domain/firefighter"
	"arff/pkg/metrics"
)

// Stores holds all storage dependencies.
type Stores struct {
	Firefighters firefighterStore.Store
	Courses      courseStore.Store
	Classes      classStore.Store
	Enrollments  enrollmentStore.Store
	Attendance   attendanceStore.Store
	Certificates certificateStore.Store
	Outbox       outboxStore.Store
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options carries the tunables the handlers and middleware read.
type Options struct {
	// CSRFKey is 32 bytes; nil generates a per-process key.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string

	// RateLimitPerSecond of 0 disables rate limiting.
	RateLimitPerSecond int
	SlowRequest        time.Duration

	// ReminderWindow is how far ahead a credential counts as expiring.
	ReminderWindow   time.Duration
	PassMark         float64
	MinAttendancePct float64
}

// Deps wires the HTTP layer to storage and the application services.
type Deps struct {
	Stores  Stores
	DB      Pinger
	Metrics *metrics.Manager
	Cache   *projections.ReportCache // optional
	Outbox  *orchestrators.OutboxProcessor
	Options Options

	// Now and GenerateID default to time.Now and random UUIDs.
	Now        func() time.Time
	GenerateID func() string
}

type server struct {
	Deps
}

func (s *server) today() time.Time {
	return firefighter.Day(s.Now())
}

func (s *server) reportDeps() projections.ReportDeps {
	return projections.ReportDeps{Roster: s.Stores.Firefighters, Cache: s.Cache, Metrics: s.Metrics}
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// csrfKey returns key, or a random key when none is configured.
func csrfKey(key []byte) []byte {
	if len(key) > 0 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("csrf: no entropy: " + err.Error())
	}
	slog.Warn("csrf_key_generated", "detail", "form tokens will not survive a restart; set csrf_key")
	return key
}

// NewMux wires HTTP handlers for the service.
// ctx bounds background work started for the mux, such as rate limiter sweeps.
func NewMux(ctx context.Context, d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.GenerateID == nil {
		d.GenerateID = generateID
	}
	s := &server{Deps: d}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var limiter *middleware.RateLimiter
	if d.Options.RateLimitPerSecond > 0 {
		limiter = middleware.NewRateLimiter(ctx, d.Options.RateLimitPerSecond, time.Second)
	}
	route := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	// Outermost first: Timing, RateLimit, Identity, CSRF, SecurityHeaders, mux.
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey(d.Options.CSRFKey), d.Options.SecureCookies, d.Options.TrustedOrigins...),
		middleware.Identity,
		middleware.RateLimit(limiter),
		middleware.Timing(d.Metrics, d.Options.SlowRequest, route),
	)
}

var (
	anyRole    = []middleware.Role{middleware.RoleCoordinator, middleware.RoleInstructor, middleware.RoleViewer}
	planners   = []middleware.Role{middleware.RoleCoordinator}
	trainers   = []middleware.Role{middleware.RoleCoordinator, middleware.RoleInstructor}
	reporters  = []middleware.Role{middleware.RoleCoordinator, middleware.RoleViewer}
	adminsOnly = []middleware.Role{middleware.RoleAdmin}
)

func (s *server) registerRoutes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc, roles []middleware.Role) {
		mux.Handle(pattern, middleware.RequireRole(h, roles...))
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.Metrics.Handler())
	handle("GET /api/nav", s.handleNav, anyRole)

	// Roster
	handle("GET /api/firefighters", s.handleListFirefighters, trainers)
	handle("POST /api/firefighters", s.handleCreateFirefighter, planners)
	handle("GET /api/firefighters/export", s.handleExportFirefighters, planners)
	handle("POST /api/firefighters/import", s.handleImportFirefighters, planners)
	handle("GET /api/firefighters/{id}", s.handleGetFirefighter, trainers)
	handle("PUT /api/firefighters/{id}", s.handleUpdateFirefighter, planners)
	handle("DELETE /api/firefighters/{id}", s.handleDeleteFirefighter, planners)
	handle("GET /api/firefighters/{id}/certificates", s.handleListCertificates, trainers)

	// Training
	handle("GET /api/courses", s.handleListCourses, anyRole)
	handle("POST /api/courses", s.handleCreateCourse, planners)
	handle("GET /api/courses/{id}", s.handleGetCourse, anyRole)
	handle("DELETE /api/courses/{id}", s.handleDeleteCourse, planners)
	handle("GET /api/classes", s.handleListClasses, trainers)
	handle("POST /api/classes", s.handleScheduleClass, planners)
	handle("GET /api/classes/{id}", s.handleGetClass, trainers)
	handle("POST /api/classes/{id}/complete", s.handleCompleteClass, planners)
	handle("POST /api/classes/{id}/cancel", s.handleCancelClass, planners)
	handle("GET /api/classes/{id}/enrollments", s.handleListEnrollments, trainers)
	handle("POST /api/classes/{id}/enrollments", s.handleEnroll, planners)
	handle("GET /api/classes/{id}/attendance", s.handleListAttendance, trainers)
	handle("POST /api/classes/{id}/attendance", s.handleRecordAttendance, trainers)
	handle("POST /api/enrollments/{id}/grade", s.handleRecordGrade, trainers)
	handle("POST /api/enrollments/{id}/withdraw", s.handleWithdraw, planners)

	// Reports
	handle("GET /api/dashboard", s.handleDashboard, reporters)
	handle("GET /api/reports/expirations", s.handleExpiryChart, reporters)
	handle("GET /api/reports/matrix", s.handleMatrix, reporters)
	handle("GET /api/reports/matrix.csv", s.handleMatrixCSV, reporters)

	// Delivery queue
	handle("GET /api/outbox", s.handleListOutbox, adminsOnly)
	handle("POST /api/outbox/{id}/retry", s.handleRetryOutbox, adminsOnly)
	handle("POST /api/outbox/{id}/abandon", s.handleAbandonOutbox, adminsOnly)
}
