package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"arff/internal/application/projections"
	"arff/internal/domain/expiryreport"
)

// reportFilter reads ?year=&site=&region=. The year defaults to the current one.
func (s *server) reportFilter(r *http.Request) (expiryreport.Filter, error) {
	year, err := queryYear(r, s.today().Year())
	if err != nil {
		return expiryreport.Filter{}, err
	}
	q := r.URL.Query()
	return expiryreport.Filter{
		Year:   year,
		Site:   strings.ToUpper(strings.TrimSpace(q.Get("site"))),
		Region: strings.ToUpper(strings.TrimSpace(q.Get("region"))),
	}, nil
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetTrainingDashboard(r.Context(), projections.GetTrainingDashboardQuery{
		Today:  s.today(),
		Window: s.Options.ReminderWindow,
		Site:   strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("site"))),
	}, projections.GetTrainingDashboardDeps{Reports: s.reportDeps(), Classes: s.Stores.Classes})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExpiryChart serves the monthly expiry histogram.
func (s *server) handleExpiryChart(w http.ResponseWriter, r *http.Request) {
	filter, err := s.reportFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := projections.QueryGetExpiryChart(r.Context(), projections.GetExpiryChartQuery{Filter: filter}, s.reportDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) matrix(r *http.Request) (expiryreport.Matrix, error) {
	filter, err := s.reportFilter(r)
	if err != nil {
		return expiryreport.Matrix{}, err
	}
	kind, err := expiryreport.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		return expiryreport.Matrix{}, err
	}
	return projections.QueryGetExpiryMatrix(r.Context(), projections.GetExpiryMatrixQuery{Filter: filter, Kind: kind}, s.reportDeps())
}

func (s *server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	m, err := s.matrix(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleMatrixCSV downloads the matrix. An empty matrix answers 422 with a notice.
func (s *server) handleMatrixCSV(w http.ResponseWriter, r *http.Request) {
	m, err := s.matrix(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.Filename("matrix")))
	_, _ = buf.WriteTo(w)
}
