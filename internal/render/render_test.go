package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/kbindex/internal/domain"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("解析渲染结果失败：%v", err)
	}
	return doc
}

func TestCategoryList_SortedByteOrder(t *testing.T) {
	m := domain.NewCategoryMap()
	for _, c := range []string{"zebra", "Alpha", "beta"} {
		m.Add(domain.ArticleRecord{Filename: c + ".html", Category: c, Slug: c, Content: c})
	}

	s, err := String(CategoryList(m, "posts/"))
	if err != nil {
		t.Fatalf("渲染失败：%v", err)
	}
	doc := mustDoc(t, s)

	var got []string
	doc.Find("dl > dt > b").Each(func(_ int, b *goquery.Selection) {
		got = append(got, b.Text())
	})
	if want := []string{"Alpha", "beta", "zebra"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("分类顺序不正确：got=%v want=%v", got, want)
	}
	if doc.Find("dl > dd").Length() != 3 {
		t.Fatalf("每个分类应有一个 dd：%s", s)
	}
}

func TestCategoryList_SeparatorCount(t *testing.T) {
	m := domain.NewCategoryMap()
	for _, f := range []string{"a", "b", "c"} {
		m.Add(domain.ArticleRecord{Filename: f + ".html", Category: "x", Slug: f, Content: f})
	}

	s, err := String(CategoryList(m, "posts/"))
	if err != nil {
		t.Fatalf("渲染失败：%v", err)
	}
	dd := mustDoc(t, s).Find("dd").First()
	text := dd.Text()
	if n := strings.Count(text, Separator); n != 2 {
		t.Fatalf("期望 2 个分隔符，实际 %d：%q", n, text)
	}
	if strings.HasSuffix(text, Separator) || strings.HasSuffix(strings.TrimSpace(text), ";") {
		t.Fatalf("最后一个链接后不应有分隔符：%q", text)
	}
	if text != "a; b; c" {
		t.Fatalf("dd 文本不符合预期：%q", text)
	}

	var hrefs []string
	dd.Find("a").Each(func(_ int, a *goquery.Selection) {
		h, _ := a.Attr("href")
		hrefs = append(hrefs, h)
	})
	if want := []string{"posts/a.html", "posts/b.html", "posts/c.html"}; !reflect.DeepEqual(hrefs, want) {
		t.Fatalf("链接目标不正确：got=%v want=%v", hrefs, want)
	}
}

func TestShortcutsTable_OneRowThreeCells(t *testing.T) {
	m := domain.NewCategoryMap()
	m.Add(domain.ArticleRecord{Filename: "a.html", Category: "x", Slug: "a", Content: "Hello"})

	s, err := String(ShortcutsTable(CategoryList(m, "p/")))
	if err != nil {
		t.Fatalf("渲染失败：%v", err)
	}
	doc := mustDoc(t, s)

	if doc.Find("table tr").Length() != 1 {
		t.Fatalf("期望恰好一行：%s", s)
	}
	cells := doc.Find("table tr > td")
	if cells.Length() != 3 {
		t.Fatalf("期望恰好三列，实际 %d", cells.Length())
	}
	if got := strings.TrimSpace(cells.Eq(0).Text()); got != ShortcutsPlaceholder {
		t.Fatalf("第一列应为 shortcuts 占位：%q", got)
	}
	if cells.Eq(1).Find("dl").Length() != 1 {
		t.Fatalf("第二列应包含分类列表")
	}
	if got := strings.TrimSpace(cells.Eq(2).Text()); got != LanguagePlaceholder {
		t.Fatalf("第三列应为 language 占位：%q", got)
	}
}

func TestSiteHeaderAndFooter(t *testing.T) {
	site := domain.SiteConfig{
		Title:         "My KB",
		Subtitle:      "notes",
		Description:   "things I learned",
		GithubURL:     "https://github.com/example/kb",
		CopyrightYear: "2026",
	}

	hs, err := String(SiteHeader(site))
	if err != nil {
		t.Fatalf("渲染失败：%v", err)
	}
	h := mustDoc(t, hs)
	if h.Find("h1").Text() != "My KB" || h.Find(".kb-subtitle").Text() != "notes" || h.Find(".kb-description").Text() != "things I learned" {
		t.Fatalf("header 不符合预期：%s", hs)
	}

	fs, err := String(SiteFooter(site))
	if err != nil {
		t.Fatalf("渲染失败：%v", err)
	}
	f := mustDoc(t, fs)
	links := f.Find("a")
	if links.Length() != 2 {
		t.Fatalf("footer 应有许可证与仓库两个链接：%s", fs)
	}
	if href, _ := links.Eq(0).Attr("href"); href != LicenseURL {
		t.Fatalf("第一个链接应为许可证：%q", href)
	}
	if href, _ := links.Eq(1).Attr("href"); href != site.GithubURL {
		t.Fatalf("第二个链接应为仓库：%q", href)
	}
	if !strings.Contains(f.Text(), "© 2026 My KB") {
		t.Fatalf("版权行不符合预期：%q", f.Text())
	}

	site.GithubURL = ""
	fs, _ = String(SiteFooter(site))
	if mustDoc(t, fs).Find("a").Length() != 1 {
		t.Fatalf("无仓库地址时只保留许可证链接：%s", fs)
	}
}

func TestErrorMessage_IncludesDescription(t *testing.T) {
	s, err := String(ErrorMessage(errors.New("boom <x>")))
	if err != nil {
		t.Fatalf("渲染失败：%v", err)
	}
	doc := mustDoc(t, s)
	p := doc.Find("p.kb-error")
	if p.Length() != 1 {
		t.Fatalf("期望一个错误段落：%s", s)
	}
	if !strings.Contains(p.Text(), "boom <x>") {
		t.Fatalf("错误信息应包含原始描述：%q", p.Text())
	}
	if style, _ := p.Attr("style"); style == "" {
		t.Fatalf("错误信息应带样式")
	}
}
