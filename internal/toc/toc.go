// Package toc 为页面生成目录：给标题分配锚点 id，并在容器中渲染链接列表。
package toc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	g "maragu.dev/gomponents"
	gh "maragu.dev/gomponents/html"

	"github.com/John-Robertt/kbindex/internal/render"
)

const (
	DefaultSelector    = "h1, h2, h3, h4, h5, h6"
	DefaultContainerID = "toc"

	styleID = "kb-toc-style"
)

// Style 返回作用于指定容器的目录样式（默认不注入）。
func Style(containerID string) string {
	if containerID == "" {
		containerID = DefaultContainerID
	}
	sel := strings.ReplaceAll(idSelector(containerID), "<", `\3c `)
	return strings.ReplaceAll(`{c}{border:1px solid #ddd;padding:.5em 1em;margin:1em 0}
{c} ul{list-style:none;margin:0;padding:0}
{c} li.toc-h2{padding-left:1em}
{c} li.toc-h3{padding-left:2em}
{c} li.toc-h4,{c} li.toc-h5,{c} li.toc-h6{padding-left:3em}`, "{c}", sel)
}

// Options 控制 TOC 生成。零值即默认行为。
type Options struct {
	Selector    string
	ContainerID string
	// Title 非空时在列表前输出一行标题。
	Title string
	// InjectStyle 为 true 时在 <head> 追加 Style(ContainerID)（已存在则跳过）。
	InjectStyle bool
}

// Entry 是目录中的一项。
type Entry struct {
	Level int
	ID    string
	Text  string
}

// Apply 扫描 doc 中的标题（文档顺序，跳过容器内部），为缺少 id 的标题分配唯一 id，
// 然后把链接列表渲染进容器；容器不存在时在 <body> 开头创建。
//
// 没有可用标题时不修改页面，返回空结果。
func Apply(doc *goquery.Document, opts Options) ([]Entry, error) {
	if doc == nil {
		return nil, errors.New("doc 不能为空")
	}
	selector := strings.TrimSpace(opts.Selector)
	if selector == "" {
		selector = DefaultSelector
	}
	containerID := strings.TrimSpace(opts.ContainerID)
	if containerID == "" {
		containerID = DefaultContainerID
	}

	container := doc.Find(idSelector(containerID)).First()

	used := map[string]struct{}{containerID: {}}
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && id != "" {
			used[id] = struct{}{}
		}
	})

	var entries []Entry
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if container.Length() > 0 && insideContainer(s, container) {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		id, _ := s.Attr("id")
		id = strings.TrimSpace(id)
		if id == "" {
			id = uniqueID(Slugify(text), used)
			used[id] = struct{}{}
			s.SetAttr("id", id)
		}
		entries = append(entries, Entry{Level: headingLevel(s), ID: id, Text: text})
	})
	if len(entries) == 0 {
		return nil, nil
	}

	if container.Length() == 0 {
		body := doc.Find("body").First()
		if body.Length() == 0 {
			return nil, errors.New("页面缺少 <body>，无法创建目录容器")
		}
		body.PrependHtml(fmt.Sprintf(`<nav id="%s" class="kb-toc"></nav>`, html.EscapeString(containerID)))
		container = body.Children().First()
	}

	s, err := render.String(List(entries, opts.Title))
	if err != nil {
		return nil, err
	}
	container.Empty()
	container.AppendHtml(s)

	if opts.InjectStyle && doc.Find(idSelector(styleID)).Length() == 0 {
		head := doc.Find("head").First()
		if head.Length() > 0 {
			head.AppendHtml(fmt.Sprintf(`<style id="%s">%s</style>`, styleID, Style(containerID)))
		}
	}
	return entries, nil
}

// List 渲染目录链接列表。
func List(entries []Entry, title string) g.Node {
	return g.Group([]g.Node{
		g.If(strings.TrimSpace(title) != "", gh.P(gh.Class("kb-toc-title"), g.Text(title))),
		gh.Ul(g.Map(entries, func(e Entry) g.Node {
			return gh.Li(gh.Class(fmt.Sprintf("toc-h%d", e.Level)), gh.A(gh.Href("#"+e.ID), g.Text(e.Text)))
		})),
	})
}

func idSelector(id string) string {
	return fmt.Sprintf(`[id="%s"]`, strings.ReplaceAll(id, `"`, `\"`))
}

func insideContainer(s, container *goquery.Selection) bool {
	c := container.Get(0)
	for n := s.Get(0); n != nil; n = n.Parent {
		if n == c {
			return true
		}
	}
	return false
}

func headingLevel(s *goquery.Selection) int {
	switch s.Get(0).DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	default:
		// 自定义选择器可能选中非标题元素：视为最深一级。
		return 6
	}
}

func uniqueID(base string, used map[string]struct{}) string {
	if _, ok := used[base]; !ok {
		return base
	}
	for i := 2; ; i++ {
		id := fmt.Sprintf("%s-%d", base, i)
		if _, ok := used[id]; !ok {
			return id
		}
	}
}
