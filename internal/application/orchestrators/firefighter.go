package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
)

// Roster errors.
var (
	ErrTaxIDTaken         = errors.New("tax id already belongs to another firefighter")
	ErrHasTrainingHistory = errors.New("firefighter has training history and cannot be deleted")
)

// FirefighterStore defines the firefighter persistence the roster orchestrators need.
type FirefighterStore interface {
	GetByID(ctx context.Context, id string) (firefighter.Firefighter, error)
	GetByTaxID(ctx context.Context, taxID string) (firefighter.Firefighter, error)
	Save(ctx context.Context, f firefighter.Firefighter) error
	Delete(ctx context.Context, id string) error
}

// TrainingHistory lists a firefighter's enrollments.
type TrainingHistory interface {
	ListByFirefighter(ctx context.Context, firefighterID string) ([]enrollment.Enrollment, error)
}

// SaveFirefighterInput carries input for the orchestrator.
// Create assigns a new ID; otherwise Firefighter.ID must name an existing record.
type SaveFirefighterInput struct {
	Firefighter firefighter.Firefighter
	Create      bool
}

// SaveFirefighterDeps holds dependencies for SaveFirefighter.
type SaveFirefighterDeps struct {
	Store      FirefighterStore
	GenerateID func() string
}

// ExecuteSaveFirefighter registers or updates a firefighter.
// PRE: input.Firefighter passes Validate after normalisation
// POST: Record persisted; the roster revision advances
// INVARIANT: tax id, when present, is unique across the roster
func ExecuteSaveFirefighter(ctx context.Context, input SaveFirefighterInput, deps SaveFirefighterDeps) (firefighter.Firefighter, error) {
	f := normaliseFirefighter(input.Firefighter)

	if input.Create {
		f.ID = deps.GenerateID()
	} else {
		if f.ID == "" {
			return firefighter.Firefighter{}, errors.New("firefighter id is required for update")
		}
		if _, err := deps.Store.GetByID(ctx, f.ID); err != nil {
			return firefighter.Firefighter{}, err
		}
	}
	if err := f.Validate(); err != nil {
		return firefighter.Firefighter{}, err
	}

	if f.TaxID != "" {
		other, err := deps.Store.GetByTaxID(ctx, f.TaxID)
		switch {
		case err == nil && other.ID != f.ID:
			return firefighter.Firefighter{}, ErrTaxIDTaken
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return firefighter.Firefighter{}, err
		}
	}

	if err := deps.Store.Save(ctx, f); err != nil {
		return firefighter.Firefighter{}, fmt.Errorf("save firefighter: %w", err)
	}
	slog.Info("firefighter_saved", "id", f.ID, "site", f.Site, "created", input.Create)
	return f, nil
}

// DeleteFirefighterDeps holds dependencies for DeleteFirefighter.
type DeleteFirefighterDeps struct {
	Store   FirefighterStore
	History TrainingHistory
}

// ExecuteDeleteFirefighter removes a firefighter with no training history.
// PRE: id is non-empty
// POST: Record removed, or ErrHasTrainingHistory when enrollments reference it
func ExecuteDeleteFirefighter(ctx context.Context, id string, deps DeleteFirefighterDeps) error {
	if _, err := deps.Store.GetByID(ctx, id); err != nil {
		return err
	}
	history, err := deps.History.ListByFirefighter(ctx, id)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		return ErrHasTrainingHistory
	}
	if err := deps.Store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("firefighter_deleted", "id", id)
	return nil
}

// normaliseFirefighter trims text fields, upper-cases site codes and truncates dates to days.
func normaliseFirefighter(f firefighter.Firefighter) firefighter.Firefighter {
	f.Name = strings.TrimSpace(f.Name)
	f.TaxID = strings.TrimSpace(f.TaxID)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Site = strings.ToUpper(strings.TrimSpace(f.Site))
	f.Region = strings.ToUpper(strings.TrimSpace(f.Region))
	f.Tier = firefighter.Tier(strings.ToUpper(strings.TrimSpace(string(f.Tier))))
	for _, d := range []*time.Time{&f.GraduationDate, &f.LastUpdateDate, &f.LastFireExerciseDate, &f.AwayStartDate, &f.AwayEndDate} {
		if !d.IsZero() {
			*d = firefighter.Day(*d)
		}
	}
	return f
}
