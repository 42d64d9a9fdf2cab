// Package watch 监听文章目录/配置/模板的变化，去抖后触发重建。
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/John-Robertt/kbindex/internal/logx"
)

// DefaultDebounce 是连续保存时的合并窗口。
const DefaultDebounce = 300 * time.Millisecond

// Watcher 监听 Paths（文件或目录，目录递归），安静 Debounce 之后调用一次 OnChange。
//
// 约束：
// - 以 '.' 开头的文件/目录一律忽略（包括原子写入产生的临时文件）
// - Ignore 中的路径不触发重建（例如输出文件本身位于文章目录内）
// - OnChange 在 Run 的 goroutine 中串行调用，不会重入
type Watcher struct {
	Paths    []string
	Ignore   []string
	Debounce time.Duration
	Log      *zap.Logger
	OnChange func(ctx context.Context, changed []string)
}

// Run 阻塞直到 ctx 结束；返回的 error 只来自 watcher 初始化。
func (w Watcher) Run(ctx context.Context) error {
	log := logx.OrNop(w.Log)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	t := newTargets(w.Paths, w.Ignore)
	for _, dir := range t.watchDirs() {
		if err := addTree(fw, dir); err != nil {
			return err
		}
	}
	for _, p := range t.fileParents() {
		if err := fw.Add(p); err != nil {
			return err
		}
	}
	log.Info("开始监听", zap.Strings("paths", w.Paths))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || !t.relevant(ev.Name) {
				continue
			}
			// 新建目录：递归加入监听。
			if ev.Op&fsnotify.Create != 0 && t.underDir(ev.Name) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(fw, ev.Name); err != nil {
						log.Warn("加入监听失败", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			log.Debug("文件变化", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("监听错误", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 || w.OnChange == nil {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			w.OnChange(ctx, changed)
		}
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

type targets struct {
	dirs   []string
	files  map[string]struct{}
	ignore map[string]struct{}
}

func newTargets(paths, ignore []string) targets {
	t := targets{
		files:  make(map[string]struct{}),
		ignore: make(map[string]struct{}),
	}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			t.dirs = append(t.dirs, p)
			continue
		}
		t.files[p] = struct{}{}
	}
	for _, p := range ignore {
		if p = strings.TrimSpace(p); p != "" {
			t.ignore[filepath.Clean(p)] = struct{}{}
		}
	}
	return t
}

func (t targets) watchDirs() []string { return t.dirs }

// fileParents 返回单文件目标所在目录（编辑器常用“写临时文件再 rename”，直接监听文件会丢事件）。
func (t targets) fileParents() []string {
	seen := make(map[string]struct{})
	var out []string
	for f := range t.files {
		d := filepath.Dir(f)
		if t.underDir(d) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (t targets) relevant(name string) bool {
	name = filepath.Clean(name)
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	if _, ok := t.ignore[name]; ok {
		return false
	}
	if _, ok := t.files[name]; ok {
		return true
	}
	return t.underDir(name)
}

func (t targets) underDir(name string) bool {
	sep := string(filepath.Separator)
	for _, d := range t.dirs {
		if name == d || strings.HasPrefix(name, d+sep) {
			return true
		}
	}
	return false
}
