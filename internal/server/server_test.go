package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thinkscotty/stylebot/internal/auth"
	"github.com/thinkscotty/stylebot/internal/config"
	"github.com/thinkscotty/stylebot/internal/models"
)

type fakeStats struct {
	err error
}

func (f fakeStats) GetStats() (models.Stats, error) {
	return models.Stats{TotalRewrites: 3, SucceededRewrites: 2, FailedRewrites: 1}, f.err
}

func (f fakeStats) RecentRewrites(limit int) ([]models.RewriteLog, error) {
	return []models.RewriteLog{{ID: "01J", ChatID: 1, Status: models.RewriteOK}}, nil
}

func serve(s *Server, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRootAndHealth(t *testing.T) {
	s := New(config.ServerConfig{}, fakeStats{}, "1.2.3")

	if w := serve(s, "GET", "/", ""); w.Code != http.StatusOK {
		t.Errorf("GET / = %d", w.Code)
	}

	w := serve(s, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "1.2.3" || body["uptime"] == "" {
		t.Errorf("healthz body = %v", body)
	}
}

func TestStatsRequiresKey(t *testing.T) {
	key := "test-stats-key"
	hash, err := auth.HashKey(key)
	if err != nil {
		t.Fatal(err)
	}
	s := New(config.ServerConfig{StatsKeyHash: hash}, fakeStats{}, "dev")

	if w := serve(s, "GET", "/stats", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no key: %d, want 401", w.Code)
	}
	if w := serve(s, "GET", "/stats", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: %d, want 401", w.Code)
	}

	w := serve(s, "GET", "/stats?limit=5", key)
	if w.Code != http.StatusOK {
		t.Fatalf("right key: %d, want 200", w.Code)
	}
	var body struct {
		Stats  models.Stats        `json:"stats"`
		Recent []models.RewriteLog `json:"recent"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Stats.TotalRewrites != 3 || len(body.Recent) != 1 {
		t.Errorf("stats body = %+v", body)
	}
}

func TestStatsDisabledWithoutHash(t *testing.T) {
	s := New(config.ServerConfig{}, fakeStats{}, "dev")
	if w := serve(s, "GET", "/stats", "anything"); w.Code != http.StatusNotFound {
		t.Errorf("GET /stats = %d, want 404", w.Code)
	}
}

func TestStatsStoreError(t *testing.T) {
	hash, _ := auth.HashKey("k")
	s := New(config.ServerConfig{StatsKeyHash: hash}, fakeStats{err: errors.New("disk I/O error")}, "dev")
	if w := serve(s, "GET", "/stats", "k"); w.Code != http.StatusInternalServerError {
		t.Errorf("GET /stats = %d, want 500", w.Code)
	}
}
