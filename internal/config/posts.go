package config

import (
	"fmt"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/scan"
)

// ResolveSite 返回本次构建使用的 SiteConfig。
//
// discover=true 且 post_files 为空时，每次调用都重新扫描本地 posts_dir
// （输出文件与模板文件自动排除），因此 serve/watch 能看到新增文章。
func (c EffectiveConfig) ResolveSite() (domain.SiteConfig, error) {
	site := c.Site.Clone()
	if !c.Discover || len(site.PostFiles) > 0 {
		return site, nil
	}
	dir := c.LocalPostsDir()
	if dir == "" {
		return site, nil
	}

	exclude := append([]string(nil), c.Exclude...)
	for _, p := range []string{c.Output, c.Template} {
		if p != "" {
			exclude = append(exclude, p)
		}
	}
	files, err := scan.ScanPosts(dir, exclude)
	if err != nil {
		return domain.SiteConfig{}, fmt.Errorf("扫描 posts_dir 失败：%w", err)
	}
	site.PostFiles = files
	return site, nil
}
