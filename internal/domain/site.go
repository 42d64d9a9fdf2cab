package domain

// SiteConfig 是站点级只读配置（由 config 包装配，显式传递，不做全局状态）。
type SiteConfig struct {
	PostsDir  string
	PostFiles []string

	Title       string
	Subtitle    string
	Description string

	GithubURL     string
	CopyrightYear string
}

// Clone 返回深拷贝，避免调用方共享 PostFiles 底层数组。
func (c SiteConfig) Clone() SiteConfig {
	c.PostFiles = append([]string(nil), c.PostFiles...)
	return c
}
