package projections

import (
	"context"
	"time"

	firefighterStore "arff/internal/adapters/storage/firefighter"
	"arff/internal/application/listutil"
	"arff/internal/domain/credential"
	"arff/internal/domain/firefighter"
)

// RosterSortColumns are the columns the roster list can be ordered by.
var RosterSortColumns = []string{"name", "site", "region", "tier", "graduation_date", "last_update_date"}

// RosterFilterKeys are the exact-match roster filters.
var RosterFilterKeys = []string{"site", "region", "tier"}

// RosterRow is one firefighter with computed credential expiries.
type RosterRow struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	TaxID                string            `json:"tax_id"`
	Email                string            `json:"email,omitempty"`
	Site                 string            `json:"site"`
	Region               string            `json:"region"`
	Tier                 string            `json:"tier"`
	GraduationDate       string            `json:"graduation_date"`
	LastUpdateDate       string            `json:"last_update_date,omitempty"`
	IsNotUpdated         bool              `json:"is_not_updated"`
	LastFireExerciseDate string            `json:"last_fire_exercise_date,omitempty"`
	IsAway               bool              `json:"is_away"`
	AwayStartDate        string            `json:"away_start_date,omitempty"`
	AwayEndDate          string            `json:"away_end_date,omitempty"`
	GeneralExpiry        string            `json:"general_expiry,omitempty"`
	FireExpiry           string            `json:"fire_expiry,omitempty"`
	Status               credential.Status `json:"status"`
}

// NewRosterRow computes the expiries and status of f as of today.
// A record whose dates cannot be computed gets StatusInvalidData and no expiries.
func NewRosterRow(f firefighter.Firefighter, today time.Time, window time.Duration) RosterRow {
	row := RosterRow{
		ID:                   f.ID,
		Name:                 f.Name,
		TaxID:                f.TaxID,
		Email:                f.Email,
		Site:                 f.Site,
		Region:               f.Region,
		Tier:                 string(f.Tier),
		GraduationDate:       firefighter.FormatDate(f.GraduationDate),
		LastUpdateDate:       firefighter.FormatDate(f.LastUpdateDate),
		IsNotUpdated:         f.IsNotUpdated,
		LastFireExerciseDate: firefighter.FormatDate(f.LastFireExerciseDate),
		IsAway:               f.IsAway,
		AwayStartDate:        firefighter.FormatDate(f.AwayStartDate),
		AwayEndDate:          firefighter.FormatDate(f.AwayEndDate),
	}
	exp, err := credential.Calculate(f)
	if err != nil {
		row.Status = credential.StatusInvalidData
		return row
	}
	row.GeneralExpiry = firefighter.FormatDate(exp.General)
	if exp.Fire != nil {
		row.FireExpiry = firefighter.FormatDate(*exp.Fire)
	}
	row.Status = exp.Worst(today, window)
	return row
}

// GetRosterQuery carries paging and filters for the roster list.
type GetRosterQuery struct {
	Params listutil.ListParams
	Today  time.Time
	Window time.Duration
}

// GetRosterResult carries one page of the roster.
type GetRosterResult struct {
	Rows []RosterRow       `json:"rows"`
	Page listutil.PageInfo `json:"page"`
}

// GetRosterDeps holds dependencies for GetRoster.
type GetRosterDeps struct {
	Firefighters FirefighterLister
}

// QueryGetRoster returns one page of firefighters with their credential status.
// PRE: Params came from listutil.Parse
// POST: Rows holds at most Params.PerPage entries
func QueryGetRoster(ctx context.Context, query GetRosterQuery, deps GetRosterDeps) (GetRosterResult, error) {
	p := query.Params
	filter := firefighterStore.ListFilter{
		Site:   p.Filters["site"],
		Region: p.Filters["region"],
		Tier:   p.Filters["tier"],
		Search: p.Search,
		Sort:   p.Sort,
		Dir:    p.Dir(),
	}
	total, err := deps.Firefighters.Count(ctx, filter)
	if err != nil {
		return GetRosterResult{}, err
	}
	page := listutil.NewPageInfo(p.Page, p.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = (page.Page - 1) * page.PerPage

	records, err := deps.Firefighters.List(ctx, filter)
	if err != nil {
		return GetRosterResult{}, err
	}
	rows := make([]RosterRow, 0, len(records))
	for _, f := range records {
		rows = append(rows, NewRosterRow(f, query.Today, query.Window))
	}
	return GetRosterResult{Rows: rows, Page: page}, nil
}

// RosterExportHeader is the header row of the roster CSV.
var RosterExportHeader = []string{
	"NAME", "TAX_ID", "EMAIL", "SITE", "REGION", "TIER", "GRADUATION_DATE", "LAST_UPDATE_DATE",
	"IS_NOT_UPDATED", "LAST_FIRE_EXERCISE_DATE", "IS_AWAY", "AWAY_START_DATE", "AWAY_END_DATE",
	"GENERAL_EXPIRY", "FIRE_EXPIRY", "STATUS",
}

// QueryGetRosterExport returns every firefighter as CSV records, ordered by site then name.
// The column set matches what the roster import reads, plus the computed columns.
func QueryGetRosterExport(ctx context.Context, today time.Time, window time.Duration, roster RosterSnapshotter) ([][]string, error) {
	snap, err := roster.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(snap.Records))
	for _, f := range snap.Records {
		r := NewRosterRow(f, today, window)
		out = append(out, []string{
			r.Name, r.TaxID, r.Email, r.Site, r.Region, r.Tier, r.GraduationDate, r.LastUpdateDate,
			flag(r.IsNotUpdated), r.LastFireExerciseDate, flag(r.IsAway), r.AwayStartDate, r.AwayEndDate,
			r.GeneralExpiry, r.FireExpiry, string(r.Status),
		})
	}
	return out, nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
