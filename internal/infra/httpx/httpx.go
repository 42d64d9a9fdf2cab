package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout 是单次检索的总超时。0 表示不限（与浏览器 fetch 行为一致）。
const DefaultTimeout = 20 * time.Second

const (
	userAgent = "kbindex/1.0 (+https://github.com/John-Robertt/kbindex)"
	accept    = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// Transport 给每个请求补齐 UA/Accept 头。
//
// 约束：不做重试。单个文件失败由上层降级为条目级 warning。
type Transport struct {
	Base http.RoundTripper

	UserAgent string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = userAgent
		}
		r.Header.Set("User-Agent", ua)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", accept)
	}
	return t.Base.RoundTrip(r)
}

// Options 描述构造 client 的可选项。
type Options struct {
	// ProxyURL 非空时所有请求走该代理。
	ProxyURL string
	// Timeout 为 0 表示不限；负数视为 0。
	Timeout time.Duration
	// UserAgent 为空时使用内置值。
	UserAgent string
}

// NewClient 构造用于文章检索的 HTTP client。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:               nil,
		TLSHandshakeTimeout: 10 * time.Second,
		// 并发检索不设上限：每个 host 的空闲连接数放宽，避免大批量文件时频繁建连。
		MaxIdleConnsPerHost: 32,
	}

	proxyURL := strings.TrimSpace(opts.ProxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
	}

	timeout := opts.Timeout
	if timeout < 0 {
		timeout = 0
	}

	return &http.Client{
		Transport: &Transport{Base: base, UserAgent: strings.TrimSpace(opts.UserAgent)},
		Timeout:   timeout,
	}, nil
}
