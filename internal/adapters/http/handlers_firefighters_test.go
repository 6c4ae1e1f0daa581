package web

import (
	"net/http"
	"strings"
	"testing"

	"arff/internal/application/orchestrators"
	"arff/internal/application/projections"
)

const anaJSON = `{
	"name": "Ana Ramos",
	"tax_id": "123",
	"email": "Ana@Example.org",
	"site": "sbgr",
	"region": "se",
	"tier": "IV",
	"graduation_date": "2018-05-10",
	"last_update_date": "2024-03-01",
	"last_fire_exercise_date": "2024-06-01"
}`

func TestFirefighterLifecycle(t *testing.T) {
	env := newTestEnv(t)

	created := decode[projections.RosterRow](t, env.mustDo(http.StatusCreated, "POST", "/api/firefighters", coordinator, anaJSON))
	if created.ID != "id-1" || created.Site != "SBGR" || created.Region != "SE" || created.Email != "ana@example.org" {
		t.Fatalf("created = %+v", created)
	}
	if created.GeneralExpiry != "2026-03-01" || created.FireExpiry != "2026-06-01" {
		t.Errorf("expiries = %s / %s", created.GeneralExpiry, created.FireExpiry)
	}

	t.Run("duplicate tax id", func(t *testing.T) {
		env.mustDo(http.StatusConflict, "POST", "/api/firefighters", coordinator, anaJSON)
	})
	t.Run("bad date", func(t *testing.T) {
		body := strings.Replace(anaJSON, "2018-05-10", "10/05/2018", 1)
		rr := env.mustDo(http.StatusBadRequest, "POST", "/api/firefighters", coordinator, body)
		if !strings.Contains(rr.Body.String(), "graduation_date") {
			t.Errorf("body = %s", rr.Body.String())
		}
	})
	t.Run("unknown field", func(t *testing.T) {
		env.mustDo(http.StatusBadRequest, "POST", "/api/firefighters", coordinator, `{"name":"X","rank":"chief"}`)
	})
	t.Run("validation", func(t *testing.T) {
		body := strings.Replace(anaJSON, `"IV"`, `"IX"`, 1)
		env.mustDo(http.StatusBadRequest, "POST", "/api/firefighters", coordinator, strings.Replace(body, "123", "456", 1))
	})

	list := decode[projections.GetRosterResult](t, env.mustDo(http.StatusOK, "GET", "/api/firefighters?site=sbgr", instructor, ""))
	if list.Page.Total != 1 || len(list.Rows) != 1 {
		t.Fatalf("list = %+v", list)
	}

	updated := decode[projections.RosterRow](t, env.mustDo(http.StatusOK, "PUT", "/api/firefighters/id-1", coordinator,
		strings.Replace(anaJSON, "sbgr", "sbbr", 1)))
	if updated.ID != "id-1" || updated.Site != "SBBR" {
		t.Errorf("updated = %+v", updated)
	}
	env.mustDo(http.StatusNotFound, "PUT", "/api/firefighters/missing", coordinator, anaJSON)

	profile := decode[projections.GetFirefighterProfileResult](t, env.mustDo(http.StatusOK, "GET", "/api/firefighters/id-1", instructor, ""))
	if profile.Firefighter.Name != "Ana Ramos" || len(profile.Training) != 0 {
		t.Errorf("profile = %+v", profile)
	}

	certs := decode[[]certificateView](t, env.mustDo(http.StatusOK, "GET", "/api/firefighters/id-1/certificates", instructor, ""))
	if len(certs) != 0 {
		t.Errorf("certificates = %v", certs)
	}
	env.mustDo(http.StatusNotFound, "GET", "/api/firefighters/missing/certificates", instructor, "")

	env.mustDo(http.StatusNoContent, "DELETE", "/api/firefighters/id-1", coordinator, "")
	env.mustDo(http.StatusNotFound, "GET", "/api/firefighters/id-1", instructor, "")
}

func TestFirefighterExportAndImport(t *testing.T) {
	env := newTestEnv(t)

	rr := env.mustDo(http.StatusUnprocessableEntity, "GET", "/api/firefighters/export", coordinator, "")
	if !strings.Contains(rr.Body.String(), "nothing to export") {
		t.Errorf("empty export body = %s", rr.Body.String())
	}

	csvBody := "NAME;TAX_ID;SITE;REGION;TIER;GRADUATION_DATE;LAST_UPDATE_DATE;SHIFT\n" +
		"Ana Ramos;123;sbgr;se;IV;2018-05-10;2024-03-01;A\n" +
		"Bruno Lima;456;sbbr;co;I;2015-02-01;2023-08-20;B\n" +
		"No Date;789;sbbr;co;I;;2023-08-20;B\n"

	rr = env.send("POST", "/api/firefighters/import?dry_run=1", coordinator, "text/csv", csvBody)
	dry := decode[orchestrators.ImportFirefightersResult](t, rr)
	if rr.Code != http.StatusOK || !dry.DryRun || dry.Created != 2 || len(dry.Errors) != 1 {
		t.Fatalf("dry run = %d %+v", rr.Code, dry)
	}
	if len(dry.Unknown) != 1 || dry.Unknown[0] != "SHIFT" {
		t.Errorf("unknown columns = %v", dry.Unknown)
	}
	env.mustDo(http.StatusUnprocessableEntity, "GET", "/api/firefighters/export", coordinator, "")

	rr = env.send("POST", "/api/firefighters/import", coordinator, "text/csv", csvBody)
	if got := decode[orchestrators.ImportFirefightersResult](t, rr); got.Created != 2 || got.Errors[0].Row != 4 {
		t.Fatalf("import = %+v", got)
	}

	rr = env.mustDo(http.StatusOK, "GET", "/api/firefighters/export", coordinator, "")
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="roster.csv"` {
		t.Errorf("content disposition = %q", cd)
	}
	exported := rr.Body.String()
	if !strings.HasPrefix(exported, "\uFEFF\"NAME\",\"TAX_ID\"") {
		t.Errorf("export header = %q", exported[:min(40, len(exported))])
	}
	if lines := strings.Count(exported, "\r\n"); lines != 3 {
		t.Errorf("export lines = %d, want header plus 2", lines)
	}

	// The export reads back in; update mode matches both rows by tax id.
	rr = env.send("POST", "/api/firefighters/import?update=true", coordinator, "text/csv", exported)
	if got := decode[orchestrators.ImportFirefightersResult](t, rr); got.Updated != 2 || got.Created != 0 || len(got.Errors) != 0 {
		t.Errorf("reimport = %+v", got)
	}

	rr = env.send("POST", "/api/firefighters/import", coordinator, "text/csv", "NAME,SITE\nAna,SBGR\n")
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "TAX_ID") {
		t.Errorf("missing column = %d %s", rr.Code, rr.Body.String())
	}
}
