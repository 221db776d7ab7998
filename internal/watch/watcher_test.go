// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.InfoLevel})
}

func startWatcher(t *testing.T, w *Watcher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return func() {
		stop()
		if err := <-errCh; err != nil {
			t.Errorf("Run() error: %v", err)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestWatcherDebounce verifies that multiple rapid filesystem events are
// coalesced into a single callback invocation containing all changed paths.
func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(&bytes.Buffer{}),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for _, name := range []string{"a.js", "b.js", "package.json"} {
		writeFile(t, filepath.Join(dir, name), "data")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	// Let any stray second debounce cycle run before counting.
	time.Sleep(250 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 callback invocation, got %d", calls)
	}
	for _, name := range []string{"a.js", "b.js", "package.json"} {
		if !slices.Contains(collected, filepath.Join(dir, name)) {
			t.Errorf("expected %s in changed paths, got %v", name, collected)
		}
	}
	if !slices.IsSorted(collected) {
		t.Errorf("changed paths not sorted: %v", collected)
	}
}

// TestWatcherPatternFiltering verifies that only events matching the
// configured glob patterns trigger the callback, including inside node_modules.
func TestWatcherPatternFiltering(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "node_modules", "somepkg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan []string, 10)
	w, err := New(Config{
		Dirs:     []string{dir},
		Patterns: []string{"**/package.json"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(&bytes.Buffer{}),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	writeFile(t, filepath.Join(dir, "README.md"), "ignored")
	select {
	case changed := <-fired:
		t.Fatalf("callback fired for non-matching file: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	writeFile(t, filepath.Join(dir, "package.json"), `{"jsnext:main":"es/index.js"}`)
	select {
	case changed := <-fired:
		if len(changed) != 1 || filepath.Base(changed[0]) != "package.json" {
			t.Errorf("changed = %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for manifest change")
	}
}

// TestWatcherIgnorePatterns verifies that user ignores and defaults suppress events.
func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Dirs:     []string{dir},
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(&bytes.Buffer{}),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop()

	writeFile(t, filepath.Join(dir, "debug.log"), "x")
	writeFile(t, filepath.Join(dir, "index.js.swp"), "x")
	select {
	case changed := <-fired:
		t.Fatalf("callback fired for ignored files: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSetDirs(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	missing := filepath.Join(first, "not-yet")

	fired := make(chan []string, 10)
	w, err := New(Config{
		Dirs:     []string{first, missing},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(&bytes.Buffer{}),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := w.Dirs(); len(got) != 1 || got[0] != first {
		t.Fatalf("Dirs() = %v, want only the existing directory", got)
	}

	if err := w.SetDirs([]string{second}); err != nil {
		t.Fatalf("SetDirs() error: %v", err)
	}
	if got := w.Dirs(); len(got) != 1 || got[0] != second {
		t.Fatalf("Dirs() = %v after SetDirs", got)
	}

	stop := startWatcher(t, w)
	defer stop()

	writeFile(t, filepath.Join(first, "old.js"), "x")
	select {
	case changed := <-fired:
		t.Fatalf("callback fired for a removed directory: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	writeFile(t, filepath.Join(second, "new.js"), "x")
	select {
	case changed := <-fired:
		if changed[0] != filepath.Join(second, "new.js") {
			t.Errorf("changed = %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change in the new directory")
	}
}

// TestWatcherSkipIfBusy verifies that the callback never runs concurrently
// with itself when it outlasts the debounce period.
func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu       sync.Mutex
		calls    int
		inFlight int
		overlap  bool
	)
	firstCallDone := make(chan struct{})

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(&bytes.Buffer{}),
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			callNum := calls
			inFlight++
			if inFlight > 1 {
				overlap = true
			}
			mu.Unlock()

			if callNum == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstCallDone)
			}

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "first.js"), "1")
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "second.js"), "2")

	select {
	case <-firstCallDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("callbacks overlapped")
	}
	if calls > 2 {
		t.Errorf("expected at most 2 callback invocations, got %d", calls)
	}
}

// TestWatcherClearScreen verifies that ClearScreen: true writes the ANSI
// clear escape sequence before invoking the callback.
func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	done := make(chan struct{})
	var once sync.Once
	stdoutBuf := &bytes.Buffer{}

	w, err := New(Config{
		Dirs:        []string{dir},
		Debounce:    50 * time.Millisecond,
		ClearScreen: true,
		Stdout:      stdoutBuf,
		Logger:      quietLogger(&bytes.Buffer{}),
		OnChange: func(_ context.Context, _ []string) error {
			once.Do(func() { close(done) })
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "index.js"), "x")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	stop()

	if out := stdoutBuf.String(); !strings.Contains(out, "\033[2J\033[H") {
		t.Errorf("expected ANSI clear sequence in stdout, got %q", out)
	}
}

func TestWatcherCallbackErrorIsLogged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logs := &syncBuffer{}
	done := make(chan struct{})
	var once sync.Once

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 50 * time.Millisecond,
		Logger:   log.NewWithOptions(logs, log.Options{Level: log.InfoLevel}),
		OnChange: func(_ context.Context, _ []string) error {
			defer once.Do(func() { close(done) })
			return errors.New("resolution exploded")
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "index.js"), "x")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	stop()

	if !strings.Contains(logs.String(), "resolution exploded") {
		t.Errorf("callback error not logged: %q", logs.String())
	}
}

// TestWatcherInvalidPattern verifies that New fails fast on a bad glob.
func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Patterns: []string{"[invalid"}},
		{Ignore: []string{"{unclosed"}},
	} {
		_, err := New(cfg)
		if err == nil {
			t.Fatalf("New(%+v) should return an error for an invalid glob pattern", cfg)
		}
		if !strings.Contains(err.Error(), "pattern") {
			t.Errorf("error message should mention the pattern, got: %v", err)
		}
	}
}

// TestWatcherDoubleRunError verifies that calling Run a second time returns
// an error immediately rather than starting a second event loop.
func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dirs: []string{t.TempDir()}, Logger: quietLogger(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
	stop()
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	ignores := DefaultIgnores()
	if slices.Contains(ignores, "**/node_modules/**") {
		t.Error("node_modules must not be ignored by default")
	}

	ignores[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() should return a copy")
	}

	w := &Watcher{ignores: defaultIgnores}
	tests := []struct {
		path    string
		ignored bool
	}{
		{"/proj/.git/HEAD", true},
		{"/proj/src/index.js.swp", true},
		{"/proj/.DS_Store", true},
		{"/proj/node_modules/somepkg/package.json", false},
		{"/proj/src/index.js", false},
	}
	for _, tt := range tests {
		if got := w.isIgnored(tt.path); got != tt.ignored {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}

func TestMatchPath(t *testing.T) {
	t.Parallel()

	if got := matchPath(filepath.FromSlash("/proj/node_modules/a/package.json")); got != "proj/node_modules/a/package.json" {
		t.Errorf("matchPath() = %q", got)
	}
}

// syncBuffer is a bytes.Buffer safe for the watcher's timer goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
