package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/importfix/core/config"
	"github.com/tristendillon/importfix/core/fixer"
	"github.com/tristendillon/importfix/core/logger"
	"github.com/tristendillon/importfix/core/models"
	"github.com/tristendillon/importfix/core/runner"
	"github.com/tristendillon/importfix/core/testutil"
)

const project = `
-- src/pages/home.tsx --
import { cn } from "@/lib/utils";
-- src/lib/utils.ts --
export const cn = () => "";
-- src/components/ui/button.tsx --
import { Slot } from "./ui/slot";
`

func startWatcher(t *testing.T) (string, *FileWatcher) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, project)

	logger.SetWriterForAll(io.Discard)
	t.Cleanup(func() { logger.SetWriterForAll(os.Stdout) })

	cfg := config.Default()
	r := runner.NewRunner(dir, cfg)
	fw, err := NewFileWatcher(r, cfg.SourceRoot, fixer.Pipeline(cfg))
	require.NoError(t, err)
	fw.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		assert.NoError(t, fw.Close())
	})

	select {
	case <-fw.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return dir, fw
}

func eventuallyContains(t *testing.T, dir, name, want string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		return err == nil && strings.Contains(string(data), want)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_InitialPass(t *testing.T) {
	dir, _ := startWatcher(t)

	assert.Contains(t, testutil.ReadFile(t, dir, "src/pages/home.tsx"), `from "../lib/utils"`)
	assert.Contains(t, testutil.ReadFile(t, dir, "src/components/ui/button.tsx"), `from "./slot"`)
}

func TestWatch_FixesEditedFile(t *testing.T) {
	dir, _ := startWatcher(t)

	path := filepath.Join(dir, "src/pages/home.tsx")
	require.NoError(t, os.WriteFile(path, []byte("import { useToast } from \"@/hooks/use-toast\";\n"), 0o644))

	eventuallyContains(t, dir, "src/pages/home.tsx", `from "../hooks/use-toast"`)
}

func TestWatch_FixesFilesInNewDirectory(t *testing.T) {
	dir, _ := startWatcher(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src/pages/admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src/pages/admin/users.tsx"), []byte("import { cn } from \"@/lib/utils\";\n"), 0o644))

	eventuallyContains(t, dir, "src/pages/admin/users.tsx", `from "../../lib/utils"`)
}

func TestWatch_IgnoresOtherExtensions(t *testing.T) {
	dir, fw := startWatcher(t)

	css := "@import \"@/styles/base.css\";\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src/app.css"), []byte(css), 0o644))
	time.Sleep(4 * fw.Debounce)

	assert.Equal(t, css, testutil.ReadFile(t, dir, "src/app.css"))
}

// slowFixer holds each Fix call open long enough for Close to race it.
type slowFixer struct {
	started  chan struct{}
	once     sync.Once
	finished atomic.Bool
}

func (f *slowFixer) Name() string   { return "slow" }
func (f *slowFixer) Target() string { return "nothing" }
func (f *slowFixer) Root() string   { return "src" }

func (f *slowFixer) Fix(_, content string) (string, []models.Replacement) {
	f.once.Do(func() { close(f.started) })
	time.Sleep(100 * time.Millisecond)
	f.finished.Store(true)
	return content, nil
}

func TestClose_WaitsForRunningFlush(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, project)
	logger.SetWriterForAll(io.Discard)
	t.Cleanup(func() { logger.SetWriterForAll(os.Stdout) })

	slow := &slowFixer{started: make(chan struct{})}
	fw, err := NewFileWatcher(runner.NewRunner(dir, config.Default()), "src", []fixer.Fixer{slow})
	require.NoError(t, err)
	fw.Debounce = 10 * time.Millisecond

	fw.enqueue("src/lib/utils.ts")
	select {
	case <-slow.started:
	case <-time.After(5 * time.Second):
		t.Fatal("rerun never started")
	}

	require.NoError(t, fw.Close())
	assert.True(t, slow.finished.Load())
}

func TestClose_CancelsPendingFlush(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, project)
	logger.SetWriterForAll(io.Discard)
	t.Cleanup(func() { logger.SetWriterForAll(os.Stdout) })

	slow := &slowFixer{started: make(chan struct{})}
	fw, err := NewFileWatcher(runner.NewRunner(dir, config.Default()), "src", []fixer.Fixer{slow})
	require.NoError(t, err)
	fw.Debounce = time.Hour

	fw.enqueue("src/lib/utils.ts")
	require.NoError(t, fw.Close())
	fw.enqueue("src/pages/home.tsx")

	assert.False(t, slow.finished.Load())
}
