// Package scan 在本地 posts_dir 中发现文章文件（discover=true 时使用）。
package scan

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ScanPosts 返回 root 下全部文章文件（.html/.htm，大小写不敏感）的相对路径，以 '/' 分隔并排序，
// 可以直接拼到 posts_dir 后面。
//
// exclude 的每一项可以是：
// - 绝对路径（输出文件、模板等）：命中该文件或其下全部文件
// - 相对 root 的路径：同上
// - 含通配符的模式（path.Match 语法，如 "*.draft.html"、"drafts/*"）：匹配相对路径或文件名
//
// 以 '.' 开头的目录（.git 等）总是跳过。
func ScanPosts(root string, exclude []string) ([]string, error) {
	root = filepath.Clean(root)
	m := newMatcher(root, exclude)

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || m.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsPostFile(d.Name()) && !m.excluded(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 不同文件系统的遍历顺序不一致：统一按相对路径排序。
	sort.Strings(files)
	if files == nil {
		files = []string{}
	}
	return files, nil
}

// IsPostFile 判断文件名是否是文章文件。
func IsPostFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

type matcher struct {
	prefixes []string // 相对 root、'/' 分隔
	patterns []string
}

func newMatcher(root string, exclude []string) matcher {
	var m matcher
	for _, x := range exclude {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			rel, err := filepath.Rel(root, filepath.Clean(x))
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				// 不在 root 之下：与扫描无关。
				continue
			}
			x = rel
		}
		x = path.Clean(filepath.ToSlash(x))
		if strings.ContainsAny(x, "*?[") {
			m.patterns = append(m.patterns, x)
			continue
		}
		m.prefixes = append(m.prefixes, x)
	}
	return m
}

func (m matcher) excluded(rel string) bool {
	for _, p := range m.prefixes {
		if p == "." || rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	base := path.Base(rel)
	for _, pat := range m.patterns {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}
