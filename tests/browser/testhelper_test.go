package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "arff/internal/adapters/http"
	"arff/internal/adapters/http/middleware"
	"arff/internal/adapters/email"
	"arff/internal/adapters/storage"
	attendanceStore "arff/internal/adapters/storage/attendance"
	certificateStore "arff/internal/adapters/storage/certificate"
	classStore "arff/internal/adapters/storage/class"
	courseStore "arff/internal/adapters/storage/course"
	enrollmentStore "arff/internal/adapters/storage/enrollment"
	firefighterStore "arff/internal/adapters/storage/firefighter"
	outboxStore "arff/internal/adapters/storage/outbox"
	"arff/internal/application/orchestrators"
	"arff/internal/application/projections"
	"arff/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Stores  web.Stores
	Browser playwright.Browser
}

// newTestApp starts the API on a free port over a temp SQLite file and launches Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := web.Stores{
		Firefighters: firefighterStore.NewSQLiteStore(db),
		Courses:      courseStore.NewSQLiteStore(db),
		Classes:      classStore.NewSQLiteStore(db),
		Enrollments:  enrollmentStore.NewSQLiteStore(db),
		Attendance:   attendanceStore.NewSQLiteStore(db),
		Certificates: certificateStore.NewSQLiteStore(db),
		Outbox:       outboxStore.NewSQLiteStore(db),
	}
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	baseURL := fmt.Sprintf("http://%s", listener.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Handler: web.NewMux(ctx, web.Deps{
		Stores:  stores,
		DB:      db,
		Metrics: m,
		Cache:   projections.NewReportCache(16, m),
		Outbox:  orchestrators.NewOutboxProcessor(stores.Outbox, email.NewLogSender()),
		Options: web.Options{
			TrustedOrigins:   []string{listener.Addr().String()},
			ReminderWindow:   60 * 24 * time.Hour,
			PassMark:         70,
			MinAttendancePct: 75,
		},
	})}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		cancel()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, DB: db, Stores: stores, Browser: browser}
}

// identity is the header set the fronting proxy would add for role.
func identity(role middleware.Role) map[string]string {
	return map[string]string{
		middleware.HeaderUser: "browser-" + string(role),
		middleware.HeaderRole: string(role),
	}
}

// newPage opens a tab whose navigations carry role's identity headers.
func (a *testApp) newPage(t *testing.T, role middleware.Role) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	if err := page.SetExtraHTTPHeaders(identity(role)); err != nil {
		t.Fatalf("failed to set identity headers: %v", err)
	}
	return page
}

// postJSON sends body as role through the page's request context.
func (a *testApp) postJSON(t *testing.T, page playwright.Page, role middleware.Role, path, body string) playwright.APIResponse {
	t.Helper()
	headers := identity(role)
	headers["Content-Type"] = "application/json"
	resp, err := page.Request().Post(a.BaseURL+path, playwright.APIRequestContextPostOptions{
		Data:    body,
		Headers: headers,
	})
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// get fetches path as role through the page's request context.
func (a *testApp) get(t *testing.T, page playwright.Page, role middleware.Role, path string) playwright.APIResponse {
	t.Helper()
	resp, err := page.Request().Get(a.BaseURL+path, playwright.APIRequestContextGetOptions{
		Headers: identity(role),
	})
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}
