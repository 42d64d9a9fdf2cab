package domain

import "strings"

// DefaultCategory 是文章缺少分类标签（或标签为空白）时使用的哨兵分类。
const DefaultCategory = "others"

// ArticleRecord 是一次成功抓取后抽取出的文章事实。
//
// 不变量：
// - Category 已 trim，且永不为空（缺失时为 DefaultCategory）
// - Slug = Filename 去掉 .html/.htm 扩展名
// - Content 永不为空（无可用段落时回退为 Slug）
//
// 创建后视为只读；抓取失败的文件不会产生 ArticleRecord。
type ArticleRecord struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	Slug     string `json:"slug"`
	Content  string `json:"content"`
}

// SlugFromFilename 去掉结尾的 .html/.htm（大小写不敏感）。其它扩展名原样保留。
func SlugFromFilename(filename string) string {
	low := strings.ToLower(filename)
	for _, ext := range []string{".html", ".htm"} {
		if strings.HasSuffix(low, ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
