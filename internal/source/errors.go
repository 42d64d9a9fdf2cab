package source

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// NotFoundError 表示本地目录下不存在该文件（等价于 HTTP 404 的条目级失败）。
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	return fmt.Sprintf("文件不存在：%q", e.Path)
}
