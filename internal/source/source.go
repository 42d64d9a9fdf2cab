package source

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyRef 表示检索目标为空。
var ErrEmptyRef = errors.New("source: ref 不能为空")

// Source 把“文章文件从哪里来”限制在 source 包内部；抓取流程只依赖统一接口。
//
// 约束：
// - Fetch 不做缓存、不做重试（每次构建都重新检索）
// - 非成功检索必须返回 error（由上层降级为条目级失败）
type Source interface {
	Name() string
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Join 按原始语义拼接 postsDir 与文件名：纯字符串拼接，postsDir 自带结尾分隔符。
func Join(postsDir, filename string) string {
	return postsDir + filename
}

// IsRemote 判断 postsDir 是否指向 http(s) 站点。
func IsRemote(postsDir string) bool {
	low := strings.ToLower(strings.TrimSpace(postsDir))
	return strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://")
}
