package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/John-Robertt/kbindex/internal/app/compose"
	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/fetcher"
	"github.com/John-Robertt/kbindex/internal/source"
)

var _ compose.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的简洁进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr，不污染 stdout 的页面/JSON 输出
// - 事件驱动：compose 只发事件，CLI 决定如何展示
// - keepalive：长时间没有文件结算时定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(site domain.SiteConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startedAt.IsZero() {
		p.startedAt = now
	}
	p.total = len(site.PostFiles)

	fmt.Fprintf(p.w, "[%s] kbindex build\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "站点（生效）:")
	fmt.Fprintf(p.w, "  title: %s\n", truncate(site.Title, 80))
	fmt.Fprintf(p.w, "  posts_dir: %s (%s)\n", truncate(site.PostsDir, 120), sourceKind(site.PostsDir))
	fmt.Fprintf(p.w, "  post_files: %d\n", p.total)
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	if p.total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "fetch":
		p.stopTickerLocked()
		fmt.Fprintf(p.w, "\n抓取: files=%d ok=%d failed=%d (%s)\n",
			intField(fields, "files"), intField(fields, "ok"), intField(fields, "failed"), formatShortDuration(dur),
		)
	case "group":
		fmt.Fprintf(p.w, "分组: categories=%d (%s)\n",
			intField(fields, "categories"), formatShortDuration(dur),
		)
	case "render":
		fmt.Fprintf(p.w, "渲染: articles=%d (%s)\n",
			intField(fields, "articles"), formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, res fetcher.Result, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	if res.Record != nil {
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK category=%s (%s)\n",
			idx, total, truncate(res.Filename, 60), truncate(res.Record.Category, 40), formatShortDuration(dur),
		)
	} else {
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s (%s)\n",
			idx, total, truncate(res.Filename, 60), truncate(describeFetchError(res.Err), 120), formatShortDuration(dur),
		)
	}
	p.lastPrinted = time.Now()

	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

// Close 停止 keepalive（构建异常中断时 fetch 阶段事件可能不会到达）。
func (p *progressUI) Close() {
	p.mu.Lock()
	p.stopTickerLocked()
	p.mu.Unlock()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func sourceKind(postsDir string) string {
	if source.IsRemote(postsDir) {
		return "http"
	}
	return "dir"
}

// describeFetchError 把常见的检索错误压成一行短文本。
func describeFetchError(err error) string {
	if err == nil {
		return "unknown"
	}
	var hs *source.HTTPStatusError
	if errors.As(err, &hs) {
		return fmt.Sprintf("HTTP %d", hs.StatusCode)
	}
	var nf *source.NotFoundError
	if errors.As(err, &nf) {
		return "not found"
	}
	return err.Error()
}

// truncate 按显示宽度截断（CJK 字符占 2 列）。
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 3 {
		return runewidth.Truncate(s, max, "")
	}
	return runewidth.Truncate(s, max, "...")
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
