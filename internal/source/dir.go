package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Dir 从本地文件系统读取文章（postsDir 是本地目录时使用）。
//
// Root 非空时，相对路径以 Root 为基准解析（通常是配置文件所在目录），
// 这样页面里的链接可以保持相对路径。
type Dir struct {
	Root string
}

func (Dir) Name() string { return "dir" }

func (d Dir) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrEmptyRef
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Clean(filepath.FromSlash(ref))
	if d.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(d.Root, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, err
	}
	if fi.IsDir() {
		return nil, &NotFoundError{Path: path}
	}
	return os.ReadFile(path)
}
