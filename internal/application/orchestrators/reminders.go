package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"arff/internal/adapters/markdown"
	"arff/internal/domain/credential"
	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
	"arff/internal/domain/outbox"
	"arff/pkg/metrics"
)

// RosterSnapshotter reads the whole roster at one revision.
type RosterSnapshotter interface {
	Snapshot(ctx context.Context) (firefighter.Snapshot, error)
}

// OutboxEnqueuer queues an entry unless its dedup key is already present.
type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, e outbox.Entry) (bool, error)
}

// EmailPayload is the JSON body of an email outbox entry.
type EmailPayload struct {
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// ReminderJob queues expiry reminders for credentials entering the reminder window.
type ReminderJob struct {
	Roster     RosterSnapshotter
	Outbox     OutboxEnqueuer
	Window     time.Duration
	GenerateID func() string
	Now        func() time.Time
	Metrics    *metrics.Manager
}

// ReminderRunResult counts one pass of the job.
type ReminderRunResult struct {
	Queued     int
	Duplicates int
	Skipped    int
}

// Run scans the roster once.
// PRE: Window >= 0
// POST: One outbox entry exists per (firefighter, kind, expiry date) that is expiring
// INVARIANT: Re-running never queues a second reminder for the same expiry
func (j *ReminderJob) Run(ctx context.Context) (ReminderRunResult, error) {
	snap, err := j.Roster.Snapshot(ctx)
	if err != nil {
		return ReminderRunResult{}, fmt.Errorf("roster snapshot: %w", err)
	}
	now := j.Now()
	var res ReminderRunResult

	for _, f := range snap.Records {
		if f.Email == "" {
			continue
		}
		if f.IsAwayOn(now) {
			res.Skipped++
			continue
		}
		exp, err := credential.Calculate(f)
		if err != nil {
			res.Skipped++
			slog.Warn("reminder_record_skipped", "id", f.ID, "error", err)
			continue
		}

		due := map[expiryreport.ValidityKind]time.Time{}
		if credential.StatusAt(exp.General, now, j.Window) == credential.StatusExpiring {
			due[expiryreport.KindGeneral] = exp.General
		}
		if exp.Fire != nil && credential.StatusAt(*exp.Fire, now, j.Window) == credential.StatusExpiring {
			due[expiryreport.KindFire] = *exp.Fire
		}
		for _, kind := range []expiryreport.ValidityKind{expiryreport.KindGeneral, expiryreport.KindFire} {
			expiry, ok := due[kind]
			if !ok {
				continue
			}
			queued, err := j.enqueue(ctx, f, kind, expiry, now)
			if err != nil {
				return res, err
			}
			if queued {
				res.Queued++
				j.Metrics.RecordReminder(string(kind))
				slog.Info("reminder_queued", "id", f.ID, "kind", kind, "expiry", firefighter.FormatDate(expiry))
			} else {
				res.Duplicates++
			}
		}
	}
	return res, nil
}

// RunLoop runs the job every interval until ctx is cancelled.
func (j *ReminderJob) RunLoop(ctx context.Context, interval time.Duration) error {
	return RunEvery(ctx, "reminders", interval, func(ctx context.Context) error {
		_, err := j.Run(ctx)
		return err
	})
}

func (j *ReminderJob) enqueue(ctx context.Context, f firefighter.Firefighter, kind expiryreport.ValidityKind, expiry, now time.Time) (bool, error) {
	payload, err := reminderEmail(f, kind, expiry)
	if err != nil {
		return false, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	e := outbox.Entry{
		ID:        j.GenerateID(),
		Kind:      outbox.KindEmail,
		DedupKey:  ReminderDedupKey(f.ID, kind, expiry),
		Payload:   string(body),
		CreatedAt: now,
	}
	if err := e.Validate(); err != nil {
		return false, err
	}
	return j.Outbox.Enqueue(ctx, e)
}

// ReminderDedupKey identifies one reminder: firefighter, validity kind and the expiry being announced.
func ReminderDedupKey(firefighterID string, kind expiryreport.ValidityKind, expiry time.Time) string {
	return fmt.Sprintf("reminder:%s:%s:%s", firefighterID, kind, firefighter.FormatDate(expiry))
}

func reminderEmail(f firefighter.Firefighter, kind expiryreport.ValidityKind, expiry time.Time) (EmailPayload, error) {
	what, action := "general ARFF credential", "a recurrent course"
	if kind == expiryreport.KindFire {
		what, action = "live-fire exercise validity", "a live-fire exercise"
	}
	date := firefighter.FormatDate(expiry)
	const body = "Hello %s,\n\nYour %s expires on %s.\n\nPlease book %s at %s before that date.\n"
	src := fmt.Sprintf(body, "**"+markdown.Escape(f.Name)+"**", what, "**"+date+"**", action, markdown.Escape(f.Site))
	html, err := markdown.Render(src)
	if err != nil {
		return EmailPayload{}, err
	}
	return EmailPayload{
		To:      []string{f.Email},
		Subject: fmt.Sprintf("Your %s expires on %s", what, date),
		HTML:    html,
		Text:    fmt.Sprintf(body, f.Name, what, date, action, f.Site),
		Tags:    map[string]string{"category": "reminder", "kind": string(kind)},
	}, nil
}
