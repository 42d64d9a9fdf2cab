// Package page 包装一份 HTML 页面，提供“主内容区”的定位与修改。
package page

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/render"
)

// DefaultRegion 是主内容区的默认选择器。
const DefaultRegion = "#main-content"

// Document 是一份可修改的 HTML 页面。
type Document struct {
	doc *goquery.Document
}

// Load 解析页面模板。
func Load(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// Skeleton 在没有模板时生成默认页面：只有 <title> 与一个空的 <main id="main-content">。
func Skeleton(site domain.SiteConfig) (*Document, error) {
	n := Doctype(
		HTML(Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(site.Title)),
				Meta(Name("description"), Content(site.Description)),
			),
			Body(
				Main(ID(strings.TrimPrefix(DefaultRegion, "#"))),
			),
		),
	)
	s, err := render.String(n)
	if err != nil {
		return nil, err
	}
	return Load(strings.NewReader(s))
}

// Goquery 暴露底层文档（toc 等需要直接遍历节点的场景使用）。
func (d *Document) Goquery() *goquery.Document { return d.doc }

// Region 按选择器定位主内容区；匹配多个时只取第一个。
func (d *Document) Region(selector string) (*Region, bool) {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultRegion
	}
	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil, false
	}
	return &Region{sel: s}, true
}

// Render 把整页序列化为 HTML（带 doctype）。
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// Bytes 是 Render 的便捷封装。
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Region 是页面中的一个可写区域。
type Region struct {
	sel *goquery.Selection
}

// SetText 用纯文本替换区域内容。
func (r *Region) SetText(s string) {
	r.sel.Empty()
	r.sel.AppendNodes(&html.Node{Type: html.TextNode, Data: s})
}

// Clear 清空区域。
func (r *Region) Clear() {
	r.sel.Empty()
}

// Append 把节点渲染为 HTML 片段后追加到区域末尾。
func (r *Region) Append(n g.Node) error {
	if n == nil {
		return errors.New("node 不能为空")
	}
	s, err := render.String(n)
	if err != nil {
		return err
	}
	r.sel.AppendHtml(s)
	return nil
}

// HTML 返回区域内部 HTML（测试与调试用）。
func (r *Region) HTML() (string, error) {
	return r.sel.Html()
}

// Text 返回区域内文本。
func (r *Region) Text() string {
	return r.sel.Text()
}
