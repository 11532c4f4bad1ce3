package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/eslsoft/kovoc/internal/infrastructure/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&config.Config{Log: config.LogConfig{Level: "debug", Format: "text"}})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", logger.Formatter)
	}

	if _, err := NewLogger(&config.Config{Log: config.LogConfig{Level: "loud"}}); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if _, err := NewLogger(&config.Config{Log: config.LogConfig{Level: "info", Format: "xml"}}); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))

	for path, want := range map[string]logrus.Level{
		"/ok":      logrus.InfoLevel,
		"/missing": logrus.WarnLevel,
		"/boom":    logrus.ErrorLevel,
	} {
		hook.Reset()
		req := httptest.NewRequest(http.MethodGet, path+"?x=1", nil)
		req.Header.Set("X-Forwarded-For", " 10.0.0.1 , 10.0.0.2")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		entry := hook.LastEntry()
		if entry == nil {
			t.Fatalf("%s: no log entry", path)
		}
		if entry.Level != want {
			t.Errorf("%s: level = %s, want %s", path, entry.Level, want)
		}
		if entry.Data["client_ip"] != "10.0.0.1" || entry.Data["query"] != "x=1" {
			t.Errorf("%s: unexpected fields %v", path, entry.Data)
		}
	}
}

func TestServerAppliesCORS(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, CORSOrigins: []string{"https://app.example"}}}
	srv := NewServer(cfg, logger, router)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
