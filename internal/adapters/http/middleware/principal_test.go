package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{" Coordinator ", RoleCoordinator, true},
		{"INSTRUCTOR", RoleInstructor, true},
		{"viewer", RoleViewer, true},
		{"root", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		_, _ = w.Write([]byte(p.User))
	})
	handler := Identity(RequireRole(ok, RoleCoordinator))

	tests := []struct {
		name       string
		user, role string
		wantStatus int
	}{
		{"no headers", "", "", http.StatusUnauthorized},
		{"user without role", "ana", "", http.StatusUnauthorized},
		{"unknown role", "ana", "superuser", http.StatusUnauthorized},
		{"wrong role", "ana", "viewer", http.StatusForbidden},
		{"matching role", "ana", "coordinator", http.StatusOK},
		{"admin passes everything", "root", "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/firefighters", nil)
			if tt.user != "" {
				req.Header.Set(HeaderUser, tt.user)
			}
			if tt.role != "" {
				req.Header.Set(HeaderRole, tt.role)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rr.Body.String() != tt.user {
				t.Errorf("handler saw user %q, want %q", rr.Body.String(), tt.user)
			}
		})
	}
}
