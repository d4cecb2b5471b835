package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchHistoryMissingCredentials(t *testing.T) {
	c := NewTWC(TWCOptions{}, noopLogger())
	if _, err := c.FetchHistory(context.Background(), 35.68, 139.77, "2025-05-31T15:00:00Z", "2025-06-30T14:59:59Z"); err == nil {
		t.Fatal("missing credentials must be an error")
	}
}

func newTestServer(t *testing.T, authHits *int32, payload string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(authHits, 1)
		if r.Header.Get("x-api-key") != "key" || r.Header.Get("x-ibm-client-Id") != "saas" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("orgId") != "org" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// The endpoint wraps the token in quotes.
		_, _ = w.Write([]byte(`"tok-123"`))
	})
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("geocode") != "35.68120,139.76710" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if q.Get("startDateTime") == "" || q.Get("endDateTime") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	})
	return httptest.NewServer(mux)
}

func testOptions(srv *httptest.Server) TWCOptions {
	return TWCOptions{
		APIKey:             "key",
		OrgID:              "org",
		SaaSClientID:       "saas",
		GeospatialClientID: "geo",
		AuthURL:            srv.URL + "/auth",
		HistoryURL:         srv.URL + "/history",
		Timeout:            time.Second,
	}
}

func TestFetchHistorySuccess(t *testing.T) {
	var authHits int32
	srv := newTestServer(t, &authHits, `{"temperature": [20, 21], "validTimeUtc": ["2025-06-01T00:00:00Z", "2025-06-01T01:00:00Z"]}`)
	defer srv.Close()

	c := NewTWC(testOptions(srv), noopLogger())
	payload, err := c.FetchHistory(context.Background(), 35.6812, 139.7671, "2025-05-31T15:00:00Z", "2025-06-30T14:59:59Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", payload)
	}
	if _, ok := m["validTimeUtc"]; !ok {
		t.Fatal("payload content missing")
	}
}

func TestFetchHistoryTokenCached(t *testing.T) {
	var authHits int32
	srv := newTestServer(t, &authHits, `[]`)
	defer srv.Close()

	c := NewTWC(testOptions(srv), noopLogger())
	for i := 0; i < 3; i++ {
		if _, err := c.FetchHistory(context.Background(), 35.6812, 139.7671, "2025-05-31T15:00:00Z", "2025-06-30T14:59:59Z"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&authHits); got != 1 {
		t.Fatalf("token must be cached across calls, auth hit %d times", got)
	}
}

func TestFetchHistoryHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tok"))
	})
	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("no access"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewTWC(testOptions(srv), noopLogger())
	_, err := c.FetchHistory(context.Background(), 1, 2, "a", "b")
	if err == nil {
		t.Fatal("HTTP 403 must surface as an error")
	}
}

func TestAuthErrorPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewTWC(testOptions(srv), noopLogger())
	if _, err := c.FetchHistory(context.Background(), 1, 2, "a", "b"); err == nil {
		t.Fatal("auth failure must surface as an error")
	}
}
