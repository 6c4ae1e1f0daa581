package orchestrators

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"arff/internal/domain/firefighter"
)

// importColumns are the recognised roster CSV columns (upper-cased, spaces as underscores).
var importColumns = map[string]bool{
	"NAME": true, "TAX_ID": true, "EMAIL": true, "SITE": true, "REGION": true, "TIER": true,
	"GRADUATION_DATE": true, "LAST_UPDATE_DATE": true, "IS_NOT_UPDATED": true,
	"LAST_FIRE_EXERCISE_DATE": true, "IS_AWAY": true, "AWAY_START_DATE": true, "AWAY_END_DATE": true,
}

var requiredImportColumns = []string{"NAME", "TAX_ID", "SITE", "TIER", "GRADUATION_DATE"}

// ImportFirefightersInput carries the CSV stream and import options.
// PRE: Reader is a CSV stream with a header row, comma or semicolon delimited.
// POST: Returns aggregate counts and per-row errors; writes are skipped when DryRun=true.
// INVARIANT: Existing firefighters are never deleted; IDs are preserved on update.
type ImportFirefightersInput struct {
	Reader     io.Reader
	ImportedBy string
	DryRun     bool
	UpdateMode bool
}

// ImportFirefightersResult holds aggregate counts and per-row errors from an import run.
type ImportFirefightersResult struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
	DryRun  bool             `json:"dry_run"`
	Unknown []string         `json:"unknown_columns"`
}

// ImportRowError describes a validation or processing error for a single CSV row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportFirefightersDeps holds external dependencies for the import orchestrator.
type ImportFirefightersDeps struct {
	Store      FirefighterStore
	GenerateID func() string
}

// ExecuteImportFirefighters parses a roster CSV and creates or updates firefighters matched by tax id.
// PRE: Input.Reader contains the required columns.
// POST: Firefighters are created/updated/skipped according to DryRun and UpdateMode;
//
//	aggregate counts and per-row errors are returned.
//
// INVARIANT: When DryRun=true no writes occur.
func ExecuteImportFirefighters(ctx context.Context, input ImportFirefightersInput, deps ImportFirefightersDeps) (ImportFirefightersResult, error) {
	br := bufio.NewReader(input.Reader)
	skipBOM(br)
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportFirefightersResult{}, &ImportValidationError{Message: "CSV has no header row"}
	}

	colIdx := make(map[string]int, len(header))
	var unknown []string
	for i, h := range header {
		key := columnKey(h)
		colIdx[key] = i
		if !importColumns[key] {
			unknown = append(unknown, strings.TrimSpace(h))
		}
	}
	for _, col := range requiredImportColumns {
		if _, ok := colIdx[col]; !ok {
			return ImportFirefightersResult{}, &ImportValidationError{Message: "CSV missing required column: " + col}
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := ImportFirefightersResult{DryRun: input.DryRun, Unknown: unknown}
	rowNum := 1
	seen := make(map[string]int)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Total++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: "malformed row: " + err.Error()})
			continue
		}
		result.Total++

		f, rowErr := parseImportRow(row, getCol)
		if rowErr != "" {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: rowErr})
			continue
		}
		if first, dup := seen[f.TaxID]; dup {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: "tax id repeats row " + strconv.Itoa(first)})
			continue
		}
		seen[f.TaxID] = rowNum

		existing, lookupErr := deps.Store.GetByTaxID(ctx, f.TaxID)
		if lookupErr != nil && !errors.Is(lookupErr, sql.ErrNoRows) {
			return result, lookupErr
		}
		exists := lookupErr == nil

		if exists && !input.UpdateMode {
			result.Skipped++
			continue
		}
		if exists {
			f.ID = existing.ID
			if f.Email == "" {
				f.Email = existing.Email
			}
		}
		if err := f.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		if input.DryRun {
			if exists {
				result.Updated++
			} else {
				result.Created++
			}
			continue
		}

		if !exists {
			f.ID = deps.GenerateID()
		}
		if err := deps.Store.Save(ctx, f); err != nil {
			slog.Error("roster_import_save_failed", "row", rowNum, "tax_id", f.TaxID, "err", err)
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Message: "save failed (see server log)"})
			continue
		}
		if exists {
			result.Updated++
		} else {
			result.Created++
		}
	}

	slog.Info("roster_import",
		"by", input.ImportedBy,
		"dry_run", input.DryRun,
		"update_mode", input.UpdateMode,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

func parseImportRow(row []string, getCol func([]string, string) string) (firefighter.Firefighter, string) {
	f := firefighter.Firefighter{
		Name:   getCol(row, "NAME"),
		TaxID:  getCol(row, "TAX_ID"),
		Email:  getCol(row, "EMAIL"),
		Site:   getCol(row, "SITE"),
		Region: getCol(row, "REGION"),
		Tier:   firefighter.Tier(getCol(row, "TIER")),
	}
	if f.TaxID == "" {
		return f, "tax id is required"
	}

	dates := []struct {
		col string
		dst *time.Time
	}{
		{"GRADUATION_DATE", &f.GraduationDate},
		{"LAST_UPDATE_DATE", &f.LastUpdateDate},
		{"LAST_FIRE_EXERCISE_DATE", &f.LastFireExerciseDate},
		{"AWAY_START_DATE", &f.AwayStartDate},
		{"AWAY_END_DATE", &f.AwayEndDate},
	}
	for _, d := range dates {
		t, err := firefighter.ParseDate(getCol(row, d.col))
		if err != nil {
			return f, "invalid " + strings.ToLower(d.col) + ": expected YYYY-MM-DD"
		}
		*d.dst = t
	}
	f.IsNotUpdated = parseFlag(getCol(row, "IS_NOT_UPDATED"))
	f.IsAway = parseFlag(getCol(row, "IS_AWAY"))
	return normaliseFirefighter(f), ""
}

// parseFlag accepts the spellings spreadsheets export for booleans.
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x", "sim", "s":
		return true
	}
	return false
}

func columnKey(h string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(h)), " ", "_")
}

// skipBOM drops a leading UTF-8 byte order mark. Left in place it would make a
// quoted first header field unparseable.
func skipBOM(br *bufio.Reader) {
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas.
func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(string(line), ";") > strings.Count(string(line), ",") {
		return ';'
	}
	return ','
}

// ImportValidationError is returned when the CSV structure is invalid (e.g. missing required columns).
type ImportValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ImportValidationError) Error() string {
	return e.Message
}
