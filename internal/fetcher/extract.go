package fetcher

import (
	"bytes"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/kbindex/internal/domain"
)

const (
	// categorySelector 是文章里唯一约定的分类元数据标签。
	categorySelector = `meta[name="category"]`
	// paragraphSelector 是候选摘要段落。
	paragraphSelector = "p"
)

// Extract 把文章 HTML 解析为 ArticleRecord。必须是纯函数：相同输入 => 相同输出。
//
// 规则：
// - Category：取分类标签的 content，trim 后为空（或标签缺失）则为 domain.DefaultCategory
// - Content：文档顺序第一个 trim 后非空的段落文本；没有则回退为 Slug
// - Slug：文件名去掉 .html 扩展名
func Extract(filename string, html []byte) (domain.ArticleRecord, error) {
	if strings.TrimSpace(filename) == "" {
		return domain.ArticleRecord{}, errors.New("filename 不能为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.ArticleRecord{}, err
	}

	slug := domain.SlugFromFilename(filename)

	category := ""
	if v, ok := doc.Find(categorySelector).First().Attr("content"); ok {
		category = strings.TrimSpace(v)
	}
	if category == "" {
		category = domain.DefaultCategory
	}

	content := ""
	doc.Find(paragraphSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content = strings.TrimSpace(s.Text())
		return content == ""
	})
	if content == "" {
		content = slug
	}

	return domain.ArticleRecord{
		Filename: filename,
		Category: category,
		Slug:     slug,
		Content:  content,
	}, nil
}
