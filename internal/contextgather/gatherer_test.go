package contextgather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// recordingReporter captures notifications for assertions.
type recordingReporter struct {
	mu       sync.Mutex
	errors   []string
	warnings []string
}

func (r *recordingReporter) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recordingReporter) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestGatherThreeOutcomes(t *testing.T) {
	dir := t.TempDir()
	readable := writeFile(t, dir, "readable.txt", "hello context")
	unreadable := writeFile(t, dir, "unreadable.txt", "secret")
	missing := filepath.Join(dir, "missing.txt")

	denied := errors.New("permission denied")
	reporter := &recordingReporter{}
	g := New(
		WithBaseDir(dir),
		WithReporter(reporter),
		WithReadFile(func(path string) ([]byte, error) {
			if path == unreadable {
				return nil, denied
			}
			return os.ReadFile(path)
		}),
	)

	result, err := g.Gather(context.Background(), []string{"readable.txt", unreadable, "missing.txt"})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Entries))
	}

	ok, _ := result.Get(readable)
	if ok.Kind != KindOK || ok.Content != "hello context" {
		t.Errorf("readable entry = %+v", ok)
	}

	bad, _ := result.Get(unreadable)
	if bad.Kind != KindReadError {
		t.Errorf("unreadable kind = %v, want %v", bad.Kind, KindReadError)
	}
	if !errors.Is(bad.Err, denied) {
		t.Errorf("unreadable Err = %v, want %v", bad.Err, denied)
	}
	if !strings.HasPrefix(bad.Message, "Error reading file "+unreadable) {
		t.Errorf("unreadable message = %q", bad.Message)
	}

	gone, _ := result.Get(missing)
	if gone.Kind != KindNotFound {
		t.Errorf("missing kind = %v, want %v", gone.Kind, KindNotFound)
	}
	if gone.Message != "File not found or is a directory: "+missing {
		t.Errorf("missing message = %q", gone.Message)
	}

	if len(reporter.errors) != 1 || reporter.errors[0] != bad.Message {
		t.Errorf("errors reported = %v", reporter.errors)
	}
	if len(reporter.warnings) != 1 || reporter.warnings[0] != gone.Message {
		t.Errorf("warnings reported = %v", reporter.warnings)
	}

	contents := result.Contents()
	if contents[readable] != "hello context" || contents[unreadable] != bad.Message || contents[missing] != gone.Message {
		t.Errorf("Contents() = %v", contents)
	}
}

func TestGatherPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "locked.txt", "nope")
	if err := os.Chmod(path, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	reporter := &recordingReporter{}
	result, err := New(WithReporter(reporter)).Gather(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if e, _ := result.Get(path); e.Kind != KindReadError {
		t.Errorf("kind = %v, want %v", e.Kind, KindReadError)
	}
	if len(reporter.errors) != 1 {
		t.Errorf("expected 1 error notification, got %d", len(reporter.errors))
	}
}

func TestGatherDirectoryIsNotFound(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	reporter := &recordingReporter{}
	result, err := New(WithBaseDir(dir), WithReporter(reporter)).Gather(context.Background(), []string{"pkg"})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if e, _ := result.Get(sub); e.Kind != KindNotFound {
		t.Errorf("kind = %v, want %v", e.Kind, KindNotFound)
	}
	if len(reporter.warnings) != 1 || len(reporter.errors) != 0 {
		t.Errorf("warnings=%v errors=%v", reporter.warnings, reporter.errors)
	}
}

func TestGatherInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binary.bin", string([]byte{0xff, 0xfe, 0x00}))

	result, err := New().Gather(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	e, _ := result.Get(path)
	if e.Kind != KindReadError {
		t.Fatalf("kind = %v, want %v", e.Kind, KindReadError)
	}
	if !errors.Is(e.Err, errInvalidUTF8) {
		t.Errorf("Err = %v, want errInvalidUTF8", e.Err)
	}
}

func TestGatherDuplicatePathsLastWins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "flaky.txt", "content")

	result, err := New(WithBaseDir(dir)).Gather(context.Background(), []string{"flaky.txt", "./flaky.txt", path})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if len(result.Order) != 1 || result.Order[0] != path {
		t.Errorf("Order = %v, want [%s]", result.Order, path)
	}

	// The second read of the same file fails; that later occurrence must win.
	var (
		mu    sync.Mutex
		calls int
	)
	reporter := &recordingReporter{}
	g := New(
		WithBaseDir(dir),
		WithReporter(reporter),
		WithConcurrency(1),
		WithReadFile(func(p string) ([]byte, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 2 {
				return nil, fmt.Errorf("transient failure")
			}
			return os.ReadFile(p)
		}),
	)
	result, err = g.Gather(context.Background(), []string{"flaky.txt", path})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	if e, _ := result.Get(path); e.Kind != KindReadError {
		t.Errorf("last occurrence should win, got kind %v", e.Kind)
	}
	if len(reporter.errors) != 1 {
		t.Errorf("expected 1 error notification, got %d", len(reporter.errors))
	}
}

func TestGatherResolvesRelativeToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# notes")
	chdir(t, dir)

	result, err := New().Gather(context.Background(), []string{"notes.md"})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(result.Order) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Order))
	}
	// Compare against the resolved temp dir; some platforms symlink it.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	want := filepath.Join(wd, "notes.md")
	if result.Order[0] != want {
		t.Errorf("resolved path = %q, want %q", result.Order[0], want)
	}
	if e := result.Entries[want]; e.Content != "# notes" {
		t.Errorf("content = %q", e.Content)
	}
}

func TestGatherPreservesInputOrderAcrossWorkers(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("f%02d.txt", i)
		writeFile(t, dir, name, name)
		paths = append(paths, name)
	}
	paths = append(paths, "absent.txt")

	reporter := &recordingReporter{}
	result, err := New(WithBaseDir(dir), WithReporter(reporter), WithConcurrency(8)).Gather(context.Background(), paths)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(result.Order) != len(paths) {
		t.Fatalf("expected %d entries, got %d", len(paths), len(result.Order))
	}
	for i, p := range paths {
		if want := filepath.Join(dir, p); result.Order[i] != want {
			t.Errorf("Order[%d] = %q, want %q", i, result.Order[i], want)
		}
	}
	if failed := result.Failed(); len(failed) != 1 || failed[0].Path != filepath.Join(dir, "absent.txt") {
		t.Errorf("Failed() = %+v", failed)
	}
}

func TestGatherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Gather(ctx, []string{"a.txt", "b.txt"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGatherWithoutReporter(t *testing.T) {
	// A nil reporter drops notifications instead of panicking.
	result, err := New(WithReporter(nil)).Gather(context.Background(), []string{"/definitely/not/here.txt"})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if e, _ := result.Get("/definitely/not/here.txt"); e.Kind != KindNotFound {
		t.Errorf("kind = %v, want %v", e.Kind, KindNotFound)
	}
}

func TestEntryJSON(t *testing.T) {
	data, err := json.Marshal(Entry{Path: "/a", Kind: KindNotFound, Message: "gone"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"not_found"`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Kind != KindNotFound {
		t.Errorf("kind = %v, want %v", e.Kind, KindNotFound)
	}
}

func TestMultiReporterForwardsToEach(t *testing.T) {
	first, second := &recordingReporter{}, &recordingReporter{}
	var buf strings.Builder
	reporter := MultiReporter{first, LogReporter{Logger: log.New(&buf, "", 0)}, second}

	result, err := New(WithReporter(reporter)).Gather(context.Background(), []string{"/definitely/not/here.txt"})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(result.Failed()) != 1 {
		t.Fatalf("expected one failed entry, got %d", len(result.Failed()))
	}

	for i, r := range []*recordingReporter{first, second} {
		if len(r.warnings) != 1 || len(r.errors) != 0 {
			t.Errorf("reporter %d got warnings %v errors %v", i, r.warnings, r.errors)
		}
	}
	if !strings.HasPrefix(buf.String(), "WARNING: ") || !strings.Contains(buf.String(), "/definitely/not/here.txt") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}
