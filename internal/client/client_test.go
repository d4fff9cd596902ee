package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.2.3","uptime":4.5,"db":true,"db_path":"/tmp/cony.db"}`))
	}))
	defer ts.Close()

	c := New(ts.URL + "/")
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Version != "1.2.3" || !h.DB || h.DBPath != "/tmp/cony.db" {
		t.Errorf("health = %+v", h)
	}
	if !h.OK() {
		t.Error("OK = false")
	}
}

func TestHealthUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	if _, err := New(url).Health(context.Background()); err == nil {
		t.Error("expected error for a closed server")
	}
}

func TestHealthOK(t *testing.T) {
	tests := []struct {
		name string
		h    Health
		want bool
	}{
		{"up", Health{Status: "ok", DB: true}, true},
		{"db down", Health{Status: "ok"}, false},
		{"degraded", Health{Status: "degraded", DB: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.h.OK(); got != tt.want {
				t.Errorf("OK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	err := c.Get(context.Background(), "/api/me", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Status != http.StatusUnauthorized || se.Message != "unauthorized" {
		t.Errorf("status error = %+v", se)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.WithToken("tok").Post(context.Background(), "/api/x", map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("Post with token: %v", err)
	}
	if !out.OK {
		t.Error("response not decoded")
	}
}
