package web

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"arff/internal/application/orchestrators"
	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
	"arff/internal/domain/outbox"
)

// maxBodyBytes caps JSON bodies; roster imports have their own limit.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed input that never reached the domain.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

// Errors that mean the request conflicts with current state.
var conflictErrors = []error{
	orchestrators.ErrTaxIDTaken,
	orchestrators.ErrHasTrainingHistory,
	orchestrators.ErrCourseCodeTaken,
	orchestrators.ErrCourseInUse,
	enrollment.ErrDuplicate,
	enrollment.ErrClassFull,
	enrollment.ErrClassClosed,
	enrollment.ErrFirefighterOut,
	enrollment.ErrNotEnrolled,
	class.ErrAlreadyClosed,
	class.ErrCompleteTooEarly,
	outbox.ErrNotRetryable,
	outbox.ErrAlreadySent,
}

// Errors that mean the request itself is invalid.
var invalidErrors = []error{
	errBadRequest,
	firefighter.ErrEmptyName,
	firefighter.ErrNameTooLong,
	firefighter.ErrEmptySite,
	firefighter.ErrUnknownTier,
	firefighter.ErrNoGraduationDate,
	firefighter.ErrNoUpdateDate,
	firefighter.ErrAwayWindowReversed,
	firefighter.ErrUpdateBeforeGraduate,
	course.ErrInvalidCode,
	course.ErrEmptyName,
	course.ErrInvalidKind,
	course.ErrHours,
	class.ErrNoCourse,
	class.ErrNoSite,
	class.ErrNoDates,
	class.ErrDatesReversed,
	class.ErrCapacity,
	enrollment.ErrGradeRange,
	enrollment.ErrMissingRefs,
	orchestrators.ErrClassInPast,
	orchestrators.ErrDateOutsideClass,
	expiryreport.ErrUnknownKind,
}

// statusFor maps an error to the HTTP status a client should see.
func statusFor(err error) int {
	var importErr *orchestrators.ImportValidationError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, expiryreport.ErrNothingToExport):
		return http.StatusUnprocessableEntity
	case errors.As(err, &importErr):
		return http.StatusBadRequest
	}
	for _, e := range conflictErrors {
		if errors.Is(err, e) {
			return http.StatusConflict
		}
	}
	for _, e := range invalidErrors {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeError responds with the status statusFor picks. Server errors are logged
// and hidden from the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		internalError(w, err)
	case http.StatusUnprocessableEntity:
		writeJSON(w, status, map[string]string{"notice": err.Error()})
	case http.StatusNotFound:
		writeJSON(w, status, map[string]string{"error": "not found"})
	default:
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// strictDecode decodes a JSON body, rejecting unknown fields and trailing data.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("invalid JSON body: trailing data")
	}
	return nil
}

// parseDate reads a YYYY-MM-DD value; empty yields the zero time.
func parseDate(field, value string) (time.Time, error) {
	t, err := firefighter.ParseDate(value)
	if err != nil {
		return time.Time{}, badRequest("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

// queryYear reads ?year=, defaulting to fallback.
func queryYear(r *http.Request, fallback int) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return fallback, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1900 || y > 9999 {
		return 0, badRequest("year must be a four digit year")
	}
	return y, nil
}

// queryFlag reads a boolean query parameter; "1", "true" and "yes" are true.
func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
