package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTargets_Relevant(t *testing.T) {
	root := t.TempDir()
	posts := filepath.Join(root, "posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	cfg := filepath.Join(root, "kbindex.json")
	out := filepath.Join(posts, "index.html")

	tg := newTargets([]string{posts, cfg, ""}, []string{out})

	require.True(t, tg.relevant(filepath.Join(posts, "a.html")))
	require.True(t, tg.relevant(filepath.Join(posts, "sub", "b.html")))
	require.True(t, tg.relevant(cfg))
	require.False(t, tg.relevant(out), "输出文件不应触发重建")
	require.False(t, tg.relevant(filepath.Join(posts, ".index.html.tmp-123")), "临时文件应忽略")
	require.False(t, tg.relevant(filepath.Join(root, "other.json")))

	require.Equal(t, []string{posts}, tg.watchDirs())
	require.Equal(t, []string{root}, tg.fileParents())
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()

	var (
		mu    sync.Mutex
		calls [][]string
	)
	fired := make(chan struct{}, 8)
	w := Watcher{
		Paths:    []string{dir},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) {
			mu.Lock()
			calls = append(calls, changed)
			mu.Unlock()
			fired <- struct{}{}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// 给 watcher 一点时间完成注册。
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("2"), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatalf("等待重建回调超时")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Run 未在 ctx 取消后退出")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, calls)
	require.Contains(t, calls[0], filepath.Join(dir, "a.html"))
}
