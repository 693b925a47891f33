package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidToken(t *testing.T) {
	tests := []struct {
		secret, header string
		want           bool
	}{
		{"s3cret", "Bearer s3cret", true},
		{"s3cret", "Bearer wrong", false},
		{"s3cret", "s3cret", false},
		{"s3cret", "", false},
		{"", "Bearer ", false},
	}
	for _, tt := range tests {
		if got := validToken(tt.secret, tt.header); got != tt.want {
			t.Errorf("validToken(%q, %q) = %v, want %v", tt.secret, tt.header, got, tt.want)
		}
	}
}

func TestRequireToken_Unauthorized(t *testing.T) {
	called := false
	h := requireToken("s3cret", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jsonrpc", nil))

	if called {
		t.Fatal("handler ran without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != -32600 || body.Error.Message != "Unauthorized" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
}

func TestRequireToken_Authorized(t *testing.T) {
	called := false
	h := requireToken("s3cret", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	req := httptest.NewRequest(http.MethodPost, "/jsonrpc", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("handler did not run with a valid token")
	}
}
