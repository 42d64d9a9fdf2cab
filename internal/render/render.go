// Package render 把 CategoryMap 与站点信息构造成 gomponents 节点。
//
// 这里只构造节点（值对象），不插入任何页面；插入由 page/compose 负责。
package render

import (
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/John-Robertt/kbindex/internal/domain"
)

// Separator 是同一分类下文章链接之间的字面分隔符。
const Separator = "; "

const (
	ShortcutsPlaceholder = "shortcuts placeholder"
	LanguagePlaceholder  = "language placeholder"
	LoadingText          = "Loading index..."

	LicenseName = "CC BY-SA 4.0"
	LicenseURL  = "https://creativecommons.org/licenses/by-sa/4.0/"
)

// CategoryList 渲染分类定义列表：分类按字节序升序，每个分类一个 <dt><b>名称</b></dt> 和一个 <dd>。
// <dd> 内的链接以 Separator 连接，链接文本为 slug，目标为 postsDir+filename。
func CategoryList(m *domain.CategoryMap, postsDir string) g.Node {
	keys := m.SortedKeys()
	items := make([]g.Node, 0, 2*len(keys))
	for _, k := range keys {
		items = append(items,
			Dt(B(g.Text(k))),
			Dd(articleLinks(m.Get(k), postsDir)...),
		)
	}
	return Dl(Class("kb-categories"), g.Group(items))
}

func articleLinks(records []domain.ArticleRecord, postsDir string) []g.Node {
	out := make([]g.Node, 0, 2*len(records))
	for i, r := range records {
		if i > 0 {
			out = append(out, g.Text(Separator))
		}
		out = append(out, A(Href(postsDir+r.Filename), Title(r.Content), g.Text(r.Slug)))
	}
	return out
}

// ShortcutsTable 是固定的一行三列布局：shortcuts 占位、分类列表、language 占位。
func ShortcutsTable(categoryList g.Node) g.Node {
	return Table(Class("kb-shortcuts"),
		TBody(
			Tr(
				Td(Class("kb-shortcuts-cell"), g.Attr("valign", "top"), g.Text(ShortcutsPlaceholder)),
				Td(Class("kb-categories-cell"), g.Attr("valign", "top"), categoryList),
				Td(Class("kb-language-cell"), g.Attr("valign", "top"), g.Text(LanguagePlaceholder)),
			),
		),
	)
}

// SiteHeader 是三行文本：标题、副标题、描述。
func SiteHeader(site domain.SiteConfig) g.Node {
	return Div(Class("kb-header"),
		H1(g.Text(site.Title)),
		P(Class("kb-subtitle"), g.Text(site.Subtitle)),
		P(Class("kb-description"), g.Text(site.Description)),
	)
}

// SiteFooter 是版权行（带固定许可证链接）与源码仓库链接。
func SiteFooter(site domain.SiteConfig) g.Node {
	owner := strings.TrimSpace(site.Title)
	return Div(Class("kb-footer"),
		P(
			g.Textf("© %s %s. Licensed under ", site.CopyrightYear, owner),
			A(Href(LicenseURL), Rel("license"), g.Text(LicenseName)),
			g.Text("."),
		),
		g.If(strings.TrimSpace(site.GithubURL) != "",
			P(A(Href(site.GithubURL), g.Text("Source on GitHub"))),
		),
	)
}

// LoadingMessage 是构建开始时的占位文本。
func LoadingMessage() g.Node {
	return P(Class("kb-loading"), g.Text(LoadingText))
}

// ErrorMessage 是流水线级失败时替换整个区域的错误文本（带醒目样式）。
func ErrorMessage(err error) g.Node {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return P(Class("kb-error"), Style("color:#c00;font-weight:bold"),
		g.Textf("Failed to build index: %s", msg),
	)
}

// String 把节点渲染成 HTML 片段。
func String(n g.Node) (string, error) {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
