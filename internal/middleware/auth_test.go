package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openexam/examtrail/internal/auth"
)

var testSecret = []byte("test-signing-secret-32-bytes-ok!")

// protectedHandler echoes the resolved user id.
var protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims := Identity(r)
	if claims == nil {
		http.Error(w, "no identity", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(claims.UserID))
})

func executeAuthRequest(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/logs", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	RequireUser(testSecret)(protectedHandler).ServeHTTP(w, req)
	return w
}

func TestRequireUserValidToken(t *testing.T) {
	token, err := auth.MintToken(testSecret, "u-99", "s@c.edu", "S", "other", false)
	if err != nil {
		t.Fatal(err)
	}

	w := executeAuthRequest(t, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "u-99" {
		t.Errorf("resolved user = %q, want u-99", w.Body.String())
	}
}

func TestRequireUserMissingHeader(t *testing.T) {
	w := executeAuthRequest(t, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestRequireUserRejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"no space", "Bearertoken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := executeAuthRequest(t, tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireUserWrongSecret(t *testing.T) {
	token, err := auth.MintToken([]byte("some-other-secret-32-bytes-long!"), "u-1", "a@b.c", "", "other", false)
	if err != nil {
		t.Fatal(err)
	}
	w := executeAuthRequest(t, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestIdentityOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if Identity(req) != nil {
		t.Error("Identity on unauthenticated request should be nil")
	}
}
