package pipeline

import (
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestCacheKey(t *testing.T) {
	hash := ContentHashHex([]byte("doc"))
	a := RenderOptions{Abbreviations: map[string]string{"A": "x", "B": "y"}}
	b := RenderOptions{Abbreviations: map[string]string{"B": "y", "A": "x"}}

	if CacheKey("a.md", hash, a) != CacheKey("b.MD", hash, b) {
		t.Error("expected equal options and extension to share a key")
	}
	if CacheKey("a.md", hash, a) == CacheKey("a.txt", hash, a) {
		t.Error("expected the input format to be part of the key")
	}
	if CacheKey("a.md", hash, a) == CacheKey("a.md", hash, RenderOptions{Abbreviations: a.Abbreviations, Strict: true}) {
		t.Error("expected options to be part of the key")
	}
	if CacheKey("a.md", hash, a) == CacheKey("a.md", ContentHashHex([]byte("other")), a) {
		t.Error("expected content to be part of the key")
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("doc.md", []byte("# Hi"), RenderOptions{Title: "T"})
	if job.ID == "" {
		t.Fatal("expected an ID")
	}
	if other := NewJob("doc.md", nil, RenderOptions{}); other.ID == job.ID {
		t.Error("expected unique IDs")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.ContentHash != ContentHashHex([]byte("# Hi")) {
		t.Errorf("unexpected content hash %q", job.ContentHash)
	}
	if string(job.FileData()) != "# Hi" {
		t.Errorf("unexpected file data %q", job.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusTransforming, "transforming"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusCached} {
		if !s.Done() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusParsing, StatusTransforming, StatusRendering} {
		if s.Done() {
			t.Errorf("expected %q to be in progress", s)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("parse: bad input")
	job.AddError("render: unsupported")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "parse: bad input" {
		t.Errorf("expected first error %q, got %q", "parse: bad input", snap.Errors[0])
	}
}

func TestJob_SetOutputDropsFileData(t *testing.T) {
	job := NewJob("a.txt", []byte("content"), RenderOptions{})
	out := &Output{Title: "a", Latex: "content\n", Warnings: []string{"w"}}
	job.SetOutput(out)

	if job.Output() != out {
		t.Error("expected output to be stored")
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
	snap := job.Snapshot()
	if snap.Title != "a" || len(snap.Warnings) != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	// Snapshot should always return non-nil slices for JSON.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil || snap.Warnings == nil {
		t.Error("expected non-nil slices in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
