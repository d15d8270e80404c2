package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hengadev/obfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects processed paths behind a mutex so the watcher goroutine
// and the test can share it.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) process(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, dir string, extensions []string, rec *recorder) context.CancelFunc {
	t.Helper()

	w, err := New(Config{
		Dir:        dir,
		Extensions: extensions,
		Debounce:   50 * time.Millisecond,
	}, rec.process)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher a moment to register before files start arriving.
	time.Sleep(50 * time.Millisecond)

	return cancel
}

func TestNew_Validation(t *testing.T) {
	noop := func(ctx context.Context, path string) error { return nil }

	_, err := New(Config{}, noop)
	require.Error(t, err)
	assert.ErrorIs(t, err, obfx.ErrInvalidConfiguration)

	_, err = New(Config{Dir: t.TempDir()}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, obfx.ErrInvalidConfiguration)
}

func TestNew_NormalizesExtensions(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir(), Extensions: []string{"csv", ".CSV", ".Json"}},
		func(ctx context.Context, path string) error { return nil })
	require.NoError(t, err)

	assert.True(t, w.wants("export.csv"))
	assert.True(t, w.wants("EXPORT.CSV"))
	assert.True(t, w.wants("data.json"))
	assert.False(t, w.wants("notes.txt"))
}

func TestRun_ProcessesCreatedFile(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, []string{".csv"}, rec)

	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,email\n1,a@example.com\n"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, path, rec.snapshot()[0])
}

func TestRun_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, []string{".csv"}, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id\n1\n"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) >= 1
	}, 2*time.Second, 20*time.Millisecond)

	// Only the csv made it through, even though the txt was written first.
	assert.Equal(t, []string{csvPath}, rec.snapshot())
}

func TestRun_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, []string{".csv"}, rec)

	path := filepath.Join(dir, "export.csv")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0o644))
	}

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) >= 1
	}, 2*time.Second, 20*time.Millisecond)

	// Let any stray timers fire before counting.
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1, "rapid writes should collapse into one run")
}

func TestRun_StopsOnCancel(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir(), Debounce: 10 * time.Millisecond},
		func(ctx context.Context, path string) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	w, err := New(Config{Dir: filepath.Join(t.TempDir(), "missing")},
		func(ctx context.Context, path string) error { return nil })
	require.NoError(t, err)

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestProcessErrorDoesNotStopWatcher(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var calls int
	w, err := New(Config{Dir: dir, Extensions: []string{".csv"}, Debounce: 50 * time.Millisecond},
		func(ctx context.Context, path string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return errors.New("boom")
		})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("id\n"), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("id\n"), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, 2*time.Second, 20*time.Millisecond)
}
