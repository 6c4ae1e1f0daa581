package credential_test

import (
	"errors"
	"testing"
	"time"

	"arff/internal/domain/credential"
	"arff/internal/domain/firefighter"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		ff          firefighter.Firefighter
		wantGeneral time.Time
		wantFire    *time.Time
	}{
		{
			name: "tier IV updated uses last update and fire exercise",
			ff: firefighter.Firefighter{
				ID: "a", Tier: firefighter.TierIV,
				GraduationDate:       date(2015, 1, 1),
				LastUpdateDate:       date(2023, 3, 10),
				LastFireExerciseDate: date(2023, 3, 10),
			},
			wantGeneral: date(2025, 3, 10),
			wantFire:    ptr(date(2025, 3, 10)),
		},
		{
			name: "tier I carries four years",
			ff: firefighter.Firefighter{
				ID: "b", Tier: firefighter.TierI,
				GraduationDate: date(2018, 7, 4),
				LastUpdateDate: date(2022, 7, 4),
			},
			wantGeneral: date(2026, 7, 4),
		},
		{
			name: "tier II not updated uses graduation",
			ff: firefighter.Firefighter{
				ID: "c", Tier: firefighter.TierII, IsNotUpdated: true,
				GraduationDate: date(2021, 11, 30),
				LastUpdateDate: date(2023, 1, 1),
			},
			wantGeneral: date(2025, 11, 30),
		},
		{
			name: "tier III carries two years",
			ff: firefighter.Firefighter{
				ID: "d", Tier: firefighter.TierIII,
				GraduationDate: date(2020, 2, 1),
				LastUpdateDate: date(2024, 2, 1),
			},
			wantGeneral: date(2026, 2, 1),
		},
		{
			name: "tier IV fire falls back to graduation when no exercise recorded",
			ff: firefighter.Firefighter{
				ID: "e", Tier: firefighter.TierIV,
				GraduationDate: date(2022, 9, 15),
				LastUpdateDate: date(2024, 1, 20),
			},
			wantGeneral: date(2026, 1, 20),
			wantFire:    ptr(date(2024, 9, 15)),
		},
		{
			name: "tier IV not updated ignores fire exercise",
			ff: firefighter.Firefighter{
				ID: "f", Tier: firefighter.TierIV, IsNotUpdated: true,
				GraduationDate:       date(2023, 6, 1),
				LastFireExerciseDate: date(2024, 6, 1),
			},
			wantGeneral: date(2025, 6, 1),
			wantFire:    ptr(date(2025, 6, 1)),
		},
		{
			name: "unknown tier falls back to two years",
			ff: firefighter.Firefighter{
				ID: "g", Tier: "X",
				GraduationDate: date(2020, 1, 1),
				LastUpdateDate: date(2023, 4, 5),
			},
			wantGeneral: date(2025, 4, 5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credential.Calculate(tt.ff)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if !got.General.Equal(tt.wantGeneral) {
				t.Errorf("General = %s, want %s", got.General.Format(time.DateOnly), tt.wantGeneral.Format(time.DateOnly))
			}
			switch {
			case tt.wantFire == nil && got.Fire != nil:
				t.Errorf("Fire = %s, want nil", got.Fire.Format(time.DateOnly))
			case tt.wantFire != nil && got.Fire == nil:
				t.Errorf("Fire = nil, want %s", tt.wantFire.Format(time.DateOnly))
			case tt.wantFire != nil && !got.Fire.Equal(*tt.wantFire):
				t.Errorf("Fire = %s, want %s", got.Fire.Format(time.DateOnly), tt.wantFire.Format(time.DateOnly))
			}
		})
	}
}

func TestCalculate_MissingDates(t *testing.T) {
	tests := []struct {
		name      string
		ff        firefighter.Firefighter
		wantErr   error
		wantField string
	}{
		{
			name:      "no graduation date",
			ff:        firefighter.Firefighter{ID: "x", Tier: firefighter.TierI, LastUpdateDate: date(2023, 1, 1)},
			wantErr:   credential.ErrMissingGraduationDate,
			wantField: credential.FieldGraduationDate,
		},
		{
			name:      "updated without update date",
			ff:        firefighter.Firefighter{ID: "y", Tier: firefighter.TierIII, GraduationDate: date(2020, 1, 1)},
			wantErr:   credential.ErrMissingUpdateDate,
			wantField: credential.FieldLastUpdateDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := credential.Calculate(tt.ff)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var de *credential.DateError
			if !errors.As(err, &de) {
				t.Fatalf("err is %T, want *DateError", err)
			}
			if de.Field != tt.wantField || de.FirefighterID != tt.ff.ID {
				t.Errorf("DateError = %+v", de)
			}
		})
	}
}

// TestCalculate_TierDuration checks the general validity span for every tier.
func TestCalculate_TierDuration(t *testing.T) {
	want := map[firefighter.Tier]int{
		firefighter.TierI:   4,
		firefighter.TierII:  4,
		firefighter.TierIII: 2,
		firefighter.TierIV:  2,
	}
	base := date(2022, 8, 17)
	for tier, years := range want {
		got, err := credential.Calculate(firefighter.Firefighter{
			ID: string(tier), Tier: tier, GraduationDate: base, IsNotUpdated: true,
		})
		if err != nil {
			t.Fatalf("tier %s: %v", tier, err)
		}
		if !got.General.Equal(base.AddDate(years, 0, 0)) {
			t.Errorf("tier %s: General = %s, want +%d years", tier, got.General.Format(time.DateOnly), years)
		}
		if (got.Fire != nil) != (tier == firefighter.TierIV) {
			t.Errorf("tier %s: fire validity presence = %v", tier, got.Fire != nil)
		}
	}
}

// TestCalculate_NotUpdatedIgnoresUpdateDate varies LastUpdateDate under IsNotUpdated.
func TestCalculate_NotUpdatedIgnoresUpdateDate(t *testing.T) {
	ff := firefighter.Firefighter{ID: "n", Tier: firefighter.TierIV, IsNotUpdated: true, GraduationDate: date(2021, 4, 9)}
	first, err := credential.Calculate(ff)
	if err != nil {
		t.Fatal(err)
	}
	for _, upd := range []time.Time{date(2022, 1, 1), date(2024, 12, 31), {}} {
		ff.LastUpdateDate = upd
		got, err := credential.Calculate(ff)
		if err != nil {
			t.Fatal(err)
		}
		if !got.General.Equal(first.General) || !got.Fire.Equal(*first.Fire) {
			t.Errorf("LastUpdateDate %v changed result: %+v vs %+v", upd, got, first)
		}
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{date(2024, 2, 29), 2, date(2026, 2, 28)},
		{date(2024, 2, 29), 4, date(2028, 2, 29)},
		{date(2096, 2, 29), 4, date(2100, 2, 28)},
		{date(2023, 12, 31), 2, date(2025, 12, 31)},
		{time.Date(2023, 3, 10, 22, 15, 0, 0, time.UTC), 2, date(2025, 3, 10)},
	}
	for _, tt := range tests {
		if got := credential.AddYears(tt.in, tt.n); !got.Equal(tt.want) {
			t.Errorf("AddYears(%s, %d) = %s, want %s", tt.in, tt.n, got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
		}
	}
}

func TestPolicyFor(t *testing.T) {
	if !credential.PolicyFor(firefighter.TierIV).LiveFire() {
		t.Error("tier IV should carry fire validity")
	}
	if credential.PolicyFor("unknown") != credential.DefaultPolicy {
		t.Error("unknown tier should use the default policy")
	}
}

func ptr(t time.Time) *time.Time { return &t }
