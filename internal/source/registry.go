package source

import (
	"fmt"
	"strings"
)

// Registry 是 source 的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Source
}

func NewRegistry(sources ...Source) (Registry, error) {
	byName := make(map[string]Source, len(sources))
	for _, s := range sources {
		if s == nil {
			return Registry{}, fmt.Errorf("source 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(s.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("source.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 source：%q", name)
		}
		byName[name] = s
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Source, bool) {
	if r.byName == nil {
		return nil, false
	}
	s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// For 按 postsDir 的形态选择 source：http(s) 前缀走 "http"，其余走 "dir"。
func (r Registry) For(postsDir string) (Source, error) {
	name := "dir"
	if IsRemote(postsDir) {
		name = "http"
	}
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("source 未注册：%q（posts_dir=%q）", name, postsDir)
	}
	return s, nil
}
