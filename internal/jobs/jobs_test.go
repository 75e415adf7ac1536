package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	j, err := s.Create(ctx, "job-1", "render", json.RawMessage(`{"input":"a.mp4"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if j.Status != StatusQueued {
		t.Errorf("status = %q, want %q", j.Status, StatusQueued)
	}

	if err := s.SetStatus(ctx, j.ID, StatusRunning); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := s.SetResult(ctx, j.ID, json.RawMessage(`{"subtitles":"a.ass"}`)); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	got, err := s.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusDone {
		t.Errorf("status = %q, want %q", got.Status, StatusDone)
	}
	if string(got.Result) != `{"subtitles":"a.ass"}` {
		t.Errorf("result = %s", got.Result)
	}
	if string(got.Payload) != `{"input":"a.mp4"}` {
		t.Errorf("payload = %s", got.Payload)
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreSetErrorMarksFailed(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	j, err := s.Create(ctx, "job-2", "reframe", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetError(ctx, j.ID, errors.New("ffmpeg exploded")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.Error != "ffmpeg exploded" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Create(ctx, id, "render", nil); err != nil {
			t.Fatal(err)
		}
	}
	jobs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len = %d, want 2", len(jobs))
	}
}

func TestPoolRunsJob(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	ran := map[string]bool{}
	done := make(chan struct{})

	p := NewPool(s, 8, discardLogger())
	p.Register("render", func(_ context.Context, j Job) (json.RawMessage, error) {
		mu.Lock()
		ran[j.ID] = true
		mu.Unlock()
		close(done)
		return json.RawMessage(`{"ok":true}`), nil
	})
	p.Start(ctx, 2)

	j, err := p.Enqueue(ctx, "job-3", "render", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	<-done
	p.Shutdown()

	got, err := s.Get(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	mu.Lock()
	defer mu.Unlock()
	if !ran[j.ID] {
		t.Error("runner never invoked")
	}
}

func TestPoolRecordsPanicAsFailure(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	done := make(chan struct{})
	p := NewPool(s, 8, discardLogger())
	p.Register("render", func(context.Context, Job) (json.RawMessage, error) {
		defer close(done)
		panic("boom")
	})
	p.Start(ctx, 1)

	j, err := p.Enqueue(ctx, "job-4", "render", nil)
	if err != nil {
		t.Fatal(err)
	}
	<-done
	p.Shutdown()

	got, err := s.Get(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
}

func TestPoolRejectsUnknownKind(t *testing.T) {
	s := testStore(t)
	p := NewPool(s, 8, discardLogger())
	if _, err := p.Enqueue(context.Background(), "job-5", "mystery", nil); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}
