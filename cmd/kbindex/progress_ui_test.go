package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"go.uber.org/goleak"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/fetcher"
	"github.com/John-Robertt/kbindex/internal/source"
)

func TestTruncate_DisplayWidth(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Fatalf("短文本不应截断：%q", got)
	}
	got := truncate("知识库索引页生成工具", 10)
	if w := runewidth.StringWidth(got); w > 10 {
		t.Fatalf("截断后宽度超限：%q width=%d", got, w)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("截断后应以 ... 结尾：%q", got)
	}
}

func TestDescribeFetchError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&source.HTTPStatusError{URL: "u", StatusCode: http.StatusNotFound}, "HTTP 404"},
		{fmt.Errorf("wrap: %w", &source.NotFoundError{Path: "/x"}), "not found"},
		{errors.New("boom"), "boom"},
		{nil, "unknown"},
	}
	for _, c := range cases {
		if got := describeFetchError(c.err); got != c.want {
			t.Fatalf("期望 %q，实际 %q", c.want, got)
		}
	}
}

func TestProgressUI_Events(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	p := newProgressUI(&buf)
	p.OnStart(domain.SiteConfig{Title: "KB", PostsDir: "https://example.com/posts/", PostFiles: []string{"a.html", "b.html"}})
	p.OnItemDone(1, 2, fetcher.Result{Filename: "a.html", Record: &domain.ArticleRecord{Filename: "a.html", Category: "go"}}, 10*time.Millisecond)
	p.OnItemDone(2, 2, fetcher.Result{Filename: "b.html", Err: &source.HTTPStatusError{StatusCode: 500}}, 10*time.Millisecond)
	p.OnPhaseDone("fetch", map[string]any{"files": 2, "ok": 1, "failed": 1}, time.Second)
	p.Close()

	out := buf.String()
	for _, want := range []string{
		"posts_dir: https://example.com/posts/ (http)",
		"[1/2] a.html OK category=go",
		"[2/2] b.html FAIL HTTP 500",
		"抓取: files=2 ok=1 failed=1 (1.0s)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
}
