package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient_SetsDefaultHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer srv.Close()

	c, err := NewClient(Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	if gotUA != userAgent {
		t.Fatalf("期望默认 UA，实际 %q", gotUA)
	}
	if gotAccept != accept {
		t.Fatalf("期望默认 Accept，实际 %q", gotAccept)
	}
}

func TestNewClient_KeepsCallerHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := NewClient(Options{UserAgent: "custom/2"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "caller/1")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()
	if gotUA != "caller/1" {
		t.Fatalf("不应覆盖调用方 UA，实际 %q", gotUA)
	}
}

func TestNewClient_Proxy(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.(*http.Transport).Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	if _, err := NewClient(Options{ProxyURL: "http://[::1"}); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestNewClient_NegativeTimeoutMeansUnlimited(t *testing.T) {
	c, err := NewClient(Options{Timeout: -time.Second})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c.Timeout != 0 {
		t.Fatalf("期望 Timeout=0，实际 %v", c.Timeout)
	}
}
