package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mediq/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Output: io.Discard})
}

// unreachableMongoClient builds a client pointed at a closed port with a
// short server selection timeout so Ping fails fast.
func unreachableMongoClient(t *testing.T) *mongo.Client {
	t.Helper()

	opts := options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100 * time.Millisecond)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		t.Fatalf("failed to build mongo client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	return client
}

func TestHealthAlwaysOK(t *testing.T) {
	h := NewHealthHandler(unreachableMongoClient(t), testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.Health(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status %q, got %q", "ok", body.Status)
	}
}

func TestReadyReportsDatabaseOutage(t *testing.T) {
	h := NewHealthHandler(unreachableMongoClient(t), testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	h.Ready(rec, req, nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status != "unavailable" {
		t.Errorf("expected status %q, got %q", "unavailable", body.Status)
	}
	if body.Database != "error" {
		t.Errorf("expected database %q, got %q", "error", body.Database)
	}
}
