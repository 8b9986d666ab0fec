package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/repository"
	repoPostgres "github.com/atelierhq/atelier/internal/repository/postgres"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/websocket"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory database and runs the full schema
// migration. Every test gets its own database; no cross-test cleanup needed.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// TestConfig returns a configuration suitable for testing. The settle delay
// is near zero so registration tests do not sleep.
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		ProfileSettleDelay: time.Millisecond,
	}
}

// TestServer holds all components for integration testing.
type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies. Redis
// is absent in tests; realtime delivery goes straight to the hub.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	db := NewTestDB(t)
	cfg := TestConfig()
	log := zaptest.NewLogger(t)

	repos := repoPostgres.NewRepositories(db)
	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(repos, cfg, log, nil, hub)
	router := api.NewRouter(services, hub, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// DoJSON issues a JSON request against the test server. An empty token skips
// the Authorization header.
func (ts *TestServer) DoJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.APIURL(path), &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// DecodeData unmarshals the "data" field of a success envelope into v.
func DecodeData(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success response, got error: %s", envelope.Error)
	}
	if v != nil {
		if err := json.Unmarshal(envelope.Data, v); err != nil {
			t.Fatalf("failed to unmarshal response data: %v", err)
		}
	}
}
