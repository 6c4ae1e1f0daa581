package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"arff/internal/adapters/email"
	web "arff/internal/adapters/http"
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
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the reminder and delivery workers",
	Long: `Serves the JSON API, /healthz and /metrics. Alongside the server it runs
the expiry reminder job every reminder_interval and drains the email outbox every
outbox_interval. SIGINT or SIGTERM drains in-flight requests and stops the workers.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func newStores(db storage.SQLDB) web.Stores {
	return web.Stores{
		Firefighters: firefighterStore.NewSQLiteStore(db),
		Courses:      courseStore.NewSQLiteStore(db),
		Classes:      classStore.NewSQLiteStore(db),
		Enrollments:  enrollmentStore.NewSQLiteStore(db),
		Attendance:   attendanceStore.NewSQLiteStore(db),
		Certificates: certificateStore.NewSQLiteStore(db),
		Outbox:       outboxStore.NewSQLiteStore(db),
	}
}

func newSender(e *env) email.Sender {
	if e.cfg.ResendKey != "" {
		slog.Info("email_sender_configured", "provider", "resend", "from", e.cfg.EmailFrom)
		return email.NewResendSender(e.cfg.ResendKey, e.cfg.EmailFrom, e.cfg.ReplyTo)
	}
	if e.cfg.IsProduction() {
		slog.Warn("email_delivery_disabled", "reason", "ARFF_RESEND_KEY is not set")
	}
	return email.NewLogSender()
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()
	cfg := e.cfg

	stores := newStores(e.timed)
	outbox := orchestrators.NewOutboxProcessor(stores.Outbox, newSender(e), orchestrators.WithMetrics(e.metrics))
	reminders := &orchestrators.ReminderJob{
		Roster:     stores.Firefighters,
		Outbox:     stores.Outbox,
		Window:     cfg.ReminderWindow(),
		GenerateID: uuid.NewString,
		Now:        time.Now,
		Metrics:    e.metrics,
	}

	g, gctx := errgroup.WithContext(ctx)
	handler := web.NewMux(gctx, web.Deps{
		Stores:  stores,
		DB:      e.timed,
		Metrics: e.metrics,
		Cache:   projections.NewReportCache(cfg.ReportCacheSize, e.metrics),
		Outbox:  outbox,
		Options: web.Options{
			CSRFKey:            []byte(cfg.CSRFKey),
			SecureCookies:      cfg.IsProduction(),
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			SlowRequest:        cfg.SlowRequest(),
			ReminderWindow:     cfg.ReminderWindow(),
			PassMark:           cfg.PassMark,
			MinAttendancePct:   cfg.MinAttendancePct,
		},
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		slog.Info("server_starting", "addr", cfg.Addr, "version", version, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("server_stopping")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return reminders.RunLoop(gctx, cfg.ReminderInterval) })
	g.Go(func() error { return outbox.RunLoop(gctx, cfg.OutboxInterval) })

	return g.Wait()
}
