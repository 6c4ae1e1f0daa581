package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	courseStore "arff/internal/adapters/storage/course"
	firefighterStore "arff/internal/adapters/storage/firefighter"
	"arff/internal/application/orchestrators"
	"arff/internal/domain/firefighter"
)

// Fixture is the YAML document read by "arff seed".
type Fixture struct {
	Courses      []CourseFixture      `yaml:"courses"`
	Firefighters []FirefighterFixture `yaml:"firefighters"`
}

type CourseFixture struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Hours       int    `yaml:"hours"`
	Description string `yaml:"description"`
}

type FirefighterFixture struct {
	Name                 string `yaml:"name"`
	TaxID                string `yaml:"tax_id"`
	Email                string `yaml:"email"`
	Site                 string `yaml:"site"`
	Region               string `yaml:"region"`
	Tier                 string `yaml:"tier"`
	GraduationDate       string `yaml:"graduation_date"`
	LastUpdateDate       string `yaml:"last_update_date"`
	IsNotUpdated         bool   `yaml:"is_not_updated"`
	LastFireExerciseDate string `yaml:"last_fire_exercise_date"`
}

func (ff FirefighterFixture) toDomain() (firefighter.Firefighter, error) {
	f := firefighter.Firefighter{
		Name:         ff.Name,
		TaxID:        ff.TaxID,
		Email:        ff.Email,
		Site:         ff.Site,
		Region:       ff.Region,
		Tier:         firefighter.Tier(ff.Tier),
		IsNotUpdated: ff.IsNotUpdated,
	}
	var err error
	if f.GraduationDate, err = firefighter.ParseDate(ff.GraduationDate); err != nil {
		return f, fmt.Errorf("%s: graduation_date: %w", ff.TaxID, err)
	}
	if f.LastUpdateDate, err = firefighter.ParseDate(ff.LastUpdateDate); err != nil {
		return f, fmt.Errorf("%s: last_update_date: %w", ff.TaxID, err)
	}
	if f.LastFireExerciseDate, err = firefighter.ParseDate(ff.LastFireExerciseDate); err != nil {
		return f, fmt.Errorf("%s: last_fire_exercise_date: %w", ff.TaxID, err)
	}
	return f, nil
}

// ParseFixture decodes a seed document, rejecting unknown keys.
func ParseFixture(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fx, nil
}

// SeedResult counts what a seed run did. Existing courses and firefighters are left alone.
type SeedResult struct {
	Courses, Firefighters, Existing int
}

// SeedDeps holds the stores a seed run writes to.
type SeedDeps struct {
	Courses      orchestrators.CourseStore
	Firefighters orchestrators.FirefighterStore
	GenerateID   func() string
}

// Seed loads fx. Courses are matched by code and firefighters by tax id.
// POST: re-running the same fixture creates nothing
func Seed(ctx context.Context, fx Fixture, deps SeedDeps) (SeedResult, error) {
	var res SeedResult
	for _, c := range fx.Courses {
		_, err := orchestrators.ExecuteCreateCourse(ctx, orchestrators.CreateCourseInput{
			Code:        c.Code,
			Name:        c.Name,
			Kind:        c.Kind,
			Hours:       c.Hours,
			Description: c.Description,
		}, orchestrators.CreateCourseDeps{Courses: deps.Courses, GenerateID: deps.GenerateID})
		switch {
		case errors.Is(err, orchestrators.ErrCourseCodeTaken):
			res.Existing++
		case err != nil:
			return res, fmt.Errorf("course %s: %w", c.Code, err)
		default:
			res.Courses++
		}
	}
	for _, ff := range fx.Firefighters {
		f, err := ff.toDomain()
		if err != nil {
			return res, err
		}
		_, err = orchestrators.ExecuteSaveFirefighter(ctx, orchestrators.SaveFirefighterInput{Firefighter: f, Create: true},
			orchestrators.SaveFirefighterDeps{Store: deps.Firefighters, GenerateID: deps.GenerateID})
		switch {
		case errors.Is(err, orchestrators.ErrTaxIDTaken):
			res.Existing++
		case err != nil:
			return res, fmt.Errorf("firefighter %s: %w", ff.TaxID, err)
		default:
			res.Firefighters++
		}
	}
	return res, nil
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load courses and firefighters from a YAML fixture",
	Long: `Creates the courses and firefighters listed in a YAML fixture:

  courses:
    - {code: REC-01, name: Recurrent training, kind: recurrent, hours: 16}
  firefighters:
    - {name: Ana Ramos, tax_id: "123", site: SBGR, region: SE, tier: IV,
       graduation_date: "2018-05-10", last_update_date: "2024-03-01"}

Entries that already exist are skipped, so a fixture can be applied repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		src, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer src.Close()
		fx, err := ParseFixture(src)
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := Seed(cmd.Context(), fx, SeedDeps{
			Courses:      courseStore.NewSQLiteStore(e.timed),
			Firefighters: firefighterStore.NewSQLiteStore(e.timed),
			GenerateID:   uuid.NewString,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d courses, %d firefighters (%d already present)\n",
			res.Courses, res.Firefighters, res.Existing)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture")
	_ = seedCmd.MarkFlagRequired("file")
}
