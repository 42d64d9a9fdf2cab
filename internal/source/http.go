package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
)

// HTTP 通过 GET 检索文章（postsDir 是 http(s) 前缀时使用）。
type HTTP struct {
	Client *http.Client
}

func (HTTP) Name() string { return "http" }

func (s HTTP) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if s.Client == nil {
		return nil, errors.New("http client 不能为空")
	}
	if strings.TrimSpace(ref) == "" {
		return nil, ErrEmptyRef
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 丢弃 body，让连接可以复用。
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{URL: ref, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return io.ReadAll(resp.Body)
}
