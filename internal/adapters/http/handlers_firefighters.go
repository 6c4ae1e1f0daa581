package web

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"arff/internal/adapters/http/middleware"
	"arff/internal/application/listutil"
	"arff/internal/application/orchestrators"
	"arff/internal/application/projections"
	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
)

// maxImportBytes caps a roster CSV upload.
const maxImportBytes = 8 << 20

// firefighterRequest is the JSON body of create and update.
type firefighterRequest struct {
	Name                 string `json:"name"`
	TaxID                string `json:"tax_id"`
	Email                string `json:"email"`
	Site                 string `json:"site"`
	Region               string `json:"region"`
	Tier                 string `json:"tier"`
	GraduationDate       string `json:"graduation_date"`
	LastUpdateDate       string `json:"last_update_date"`
	IsNotUpdated         bool   `json:"is_not_updated"`
	LastFireExerciseDate string `json:"last_fire_exercise_date"`
	IsAway               bool   `json:"is_away"`
	AwayStartDate        string `json:"away_start_date"`
	AwayEndDate          string `json:"away_end_date"`
}

func (req firefighterRequest) toDomain(id string) (firefighter.Firefighter, error) {
	f := firefighter.Firefighter{
		ID:           id,
		Name:         req.Name,
		TaxID:        req.TaxID,
		Email:        req.Email,
		Site:         req.Site,
		Region:       req.Region,
		Tier:         firefighter.Tier(req.Tier),
		IsNotUpdated: req.IsNotUpdated,
		IsAway:       req.IsAway,
	}
	dates := []struct {
		field, value string
		dst          *time.Time
	}{
		{"graduation_date", req.GraduationDate, &f.GraduationDate},
		{"last_update_date", req.LastUpdateDate, &f.LastUpdateDate},
		{"last_fire_exercise_date", req.LastFireExerciseDate, &f.LastFireExerciseDate},
		{"away_start_date", req.AwayStartDate, &f.AwayStartDate},
		{"away_end_date", req.AwayEndDate, &f.AwayEndDate},
	}
	for _, d := range dates {
		t, err := parseDate(d.field, d.value)
		if err != nil {
			return firefighter.Firefighter{}, err
		}
		*d.dst = t
	}
	return f, nil
}

func (s *server) handleListFirefighters(w http.ResponseWriter, r *http.Request) {
	params := listutil.Parse(r.URL.Query(), projections.RosterSortColumns, projections.RosterFilterKeys...)
	result, err := projections.QueryGetRoster(r.Context(), projections.GetRosterQuery{
		Params: params,
		Today:  s.today(),
		Window: s.Options.ReminderWindow,
	}, projections.GetRosterDeps{Firefighters: s.Stores.Firefighters})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleGetFirefighter(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetFirefighterProfile(r.Context(), projections.GetFirefighterProfileQuery{
		FirefighterID: r.PathValue("id"),
		Today:         s.today(),
		Window:        s.Options.ReminderWindow,
	}, projections.GetFirefighterProfileDeps{
		Firefighters: s.Stores.Firefighters,
		Enrollments:  s.Stores.Enrollments,
		Certificates: s.Stores.Certificates,
		Classes:      s.Stores.Classes,
		Courses:      s.Stores.Courses,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleCreateFirefighter(w http.ResponseWriter, r *http.Request) {
	s.saveFirefighter(w, r, "", true)
}

func (s *server) handleUpdateFirefighter(w http.ResponseWriter, r *http.Request) {
	s.saveFirefighter(w, r, r.PathValue("id"), false)
}

func (s *server) saveFirefighter(w http.ResponseWriter, r *http.Request, id string, create bool) {
	var req firefighterRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	f, err := req.toDomain(id)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := orchestrators.ExecuteSaveFirefighter(r.Context(), orchestrators.SaveFirefighterInput{
		Firefighter: f,
		Create:      create,
	}, orchestrators.SaveFirefighterDeps{Store: s.Stores.Firefighters, GenerateID: s.GenerateID})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if create {
		status = http.StatusCreated
	}
	writeJSON(w, status, projections.NewRosterRow(saved, s.today(), s.Options.ReminderWindow))
}

func (s *server) handleDeleteFirefighter(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteFirefighter(r.Context(), r.PathValue("id"), orchestrators.DeleteFirefighterDeps{
		Store:   s.Stores.Firefighters,
		History: s.Stores.Enrollments,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.Stores.Firefighters.GetByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	certs, err := s.Stores.Certificates.ListByFirefighter(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCertificateViews(certs))
}

// handleExportFirefighters streams the whole roster as a quoted CSV with a BOM.
func (s *server) handleExportFirefighters(w http.ResponseWriter, r *http.Request) {
	rows, err := projections.QueryGetRosterExport(r.Context(), s.today(), s.Options.ReminderWindow, s.Stores.Firefighters)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := expiryreport.WriteListCSV(&buf, projections.RosterExportHeader, rows); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="roster.csv"`)
	_, _ = buf.WriteTo(w)
}

// handleImportFirefighters reads a roster CSV body.
// Query flags: dry_run validates without writing; update overwrites matched records.
func (s *server) handleImportFirefighters(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	body := io.LimitReader(r.Body, maxImportBytes)
	result, err := orchestrators.ExecuteImportFirefighters(r.Context(), orchestrators.ImportFirefightersInput{
		Reader:     body,
		ImportedBy: p.User,
		DryRun:     queryFlag(r, "dry_run"),
		UpdateMode: queryFlag(r, "update"),
	}, orchestrators.ImportFirefightersDeps{Store: s.Stores.Firefighters, GenerateID: s.GenerateID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
