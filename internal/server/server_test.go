package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/forPelevin/capgen/internal/jobs"
)

func testApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := jobs.OpenStore(filepath.Join(dir, "jobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := jobs.NewPool(store, 8, log)
	pool.Register(jobs.KindRender, func(context.Context, jobs.Job) (json.RawMessage, error) {
		return json.RawMessage(`{"subtitles":"out.ass"}`), nil
	})
	pool.Register(jobs.KindReframe, func(context.Context, jobs.Job) (json.RawMessage, error) {
		return json.RawMessage(`{"video":"out.mp4"}`), nil
	})
	pool.Start(context.Background(), 1)
	t.Cleanup(pool.Shutdown)

	return New(pool, store, log).App(), dir
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, m
}

func TestHealthz(t *testing.T) {
	app, _ := testApp(t)
	code, m := doJSON(t, app, http.MethodGet, "/healthz", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if m["status"] != "ok" {
		t.Errorf("body = %v", m)
	}
}

func TestRenderRejectsMissingInput(t *testing.T) {
	app, _ := testApp(t)
	code, _ := doJSON(t, app, http.MethodPost, "/render", `{}`)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestRenderRejectsUnknownVideo(t *testing.T) {
	app, _ := testApp(t)
	code, _ := doJSON(t, app, http.MethodPost, "/render", `{"input":"/nope/missing.mp4"}`)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestRenderJobLifecycle(t *testing.T) {
	app, dir := testApp(t)
	input := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(input, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, m := doJSON(t, app, http.MethodPost, "/render", `{"input":"`+input+`"}`)
	if code != http.StatusOK {
		t.Fatalf("enqueue status = %d: %v", code, m)
	}
	id, _ := m["job_id"].(string)
	if id == "" {
		t.Fatalf("missing job_id: %v", m)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		code, m = doJSON(t, app, http.MethodGet, "/render-status/"+id, "")
		if code != http.StatusOK {
			t.Fatalf("status code = %d", code)
		}
		if m["status"] == string(jobs.StatusDone) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never finished: %v", m)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if m["result"] == nil {
		t.Errorf("done job missing result: %v", m)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	app, _ := testApp(t)
	code, _ := doJSON(t, app, http.MethodGet, "/render-status/doesnotexist", "")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestStatusKindMismatch(t *testing.T) {
	app, dir := testApp(t)
	input := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(input, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, m := doJSON(t, app, http.MethodPost, "/reframe", `{"input":"`+input+`"}`)
	id, _ := m["job_id"].(string)
	if id == "" {
		t.Fatalf("missing job_id: %v", m)
	}
	// A reframe job must not be visible through the render status route.
	code, _ := doJSON(t, app, http.MethodGet, "/render-status/"+id, "")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}
