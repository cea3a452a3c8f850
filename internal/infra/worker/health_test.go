package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"
)

func startTestHealthServer(t *testing.T, addr string) *HealthServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	server := NewHealthServer(addr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		if err := server.Start(ctx); err != nil && err != http.ErrServerClosed {
			t.Errorf("unexpected server error: %v", err)
		}
	}()

	// Wait for the listener to come up.
	time.Sleep(100 * time.Millisecond)
	return server
}

func getHealth(t *testing.T, url string) (int, healthResponse) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to call %s: %v", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	var parsed healthResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("failed to parse response %q: %v", body, err)
	}
	return resp.StatusCode, parsed
}

func TestHealthServer_Liveness(t *testing.T) {
	startTestHealthServer(t, "localhost:19091")

	code, body := getHealth(t, "http://localhost:19091/health")
	if code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", code)
	}
	if body.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", body.Status)
	}
}

func TestHealthServer_ReadinessTransitions(t *testing.T) {
	server := startTestHealthServer(t, "localhost:19092")

	// Starts not ready.
	code, body := getHealth(t, "http://localhost:19092/health/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before ready, got %d", code)
	}
	if body.Status != "not ready" {
		t.Errorf("Expected status 'not ready', got '%s'", body.Status)
	}

	server.SetReady(true)
	code, body = getHealth(t, "http://localhost:19092/health/ready")
	if code != http.StatusOK {
		t.Errorf("Expected 200 after SetReady(true), got %d", code)
	}
	if body.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", body.Status)
	}

	server.SetReady(false)
	code, _ = getHealth(t, "http://localhost:19092/health/ready")
	if code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 after SetReady(false), got %d", code)
	}
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	server := NewHealthServer("localhost:19093", logger)

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			t.Errorf("Expected ErrServerClosed on shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down within 2s")
	}
}
