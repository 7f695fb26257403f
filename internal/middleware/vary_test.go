package middleware

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestVaryListsAcceptForNegotiatedResponses(t *testing.T) {
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/cbor")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/items/?limit=5", nil)
	req.Header.Set("Accept", "application/cbor")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Values("Vary"); !slices.Equal(got, []string{"Accept"}) {
		t.Fatalf("expected Vary [Accept], got %v", got)
	}
}

func TestVaryKeepsValuesAddedDownstream(t *testing.T) {
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/?limit=abc", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected downstream status to pass through, got %d", rec.Code)
	}
	got := rec.Header().Values("Vary")
	if !slices.Contains(got, "Accept") || !slices.Contains(got, "Origin") {
		t.Fatalf("expected Accept and Origin in Vary, got %v", got)
	}
}
