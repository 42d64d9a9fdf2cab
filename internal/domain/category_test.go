package domain

import (
	"reflect"
	"testing"
)

func TestCategoryMap_CaseSensitiveBuckets(t *testing.T) {
	m := NewCategoryMap()
	m.Add(ArticleRecord{Filename: "a.html", Category: "Lang"})
	m.Add(ArticleRecord{Filename: "b.html", Category: "lang"})
	m.Add(ArticleRecord{Filename: "c.html", Category: "Lang"})

	if m.Len() != 2 {
		t.Fatalf("期望 2 个分类，实际 %d：%v", m.Len(), m.Keys())
	}
	if len(m.Get("Lang")) != 2 || len(m.Get("lang")) != 1 {
		t.Fatalf("分桶不正确：Lang=%v lang=%v", m.Get("Lang"), m.Get("lang"))
	}
	if m.Total() != 3 {
		t.Fatalf("期望总数 3，实际 %d", m.Total())
	}
}

func TestCategoryMap_SortedKeys_ByteOrder(t *testing.T) {
	m := NewCategoryMap()
	for _, c := range []string{"zebra", "Alpha", "beta"} {
		m.Add(ArticleRecord{Category: c})
	}

	if got, want := m.Keys(), []string{"zebra", "Alpha", "beta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys 应保持首次出现顺序：got=%v want=%v", got, want)
	}
	if got, want := m.SortedKeys(), []string{"Alpha", "beta", "zebra"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedKeys 排序不正确：got=%v want=%v", got, want)
	}
}

func TestCategoryMap_SortedKeys_UTF16Order(t *testing.T) {
	m := NewCategoryMap()
	for _, c := range []string{"\uFF21", "\U0001F600", "b"} {
		m.Add(ArticleRecord{Category: c})
	}

	// 辅助平面字符的代理对（D83D）小于 U+FF21。
	if got, want := m.SortedKeys(), []string{"b", "\U0001F600", "\uFF21"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedKeys 应按 UTF-16 码元排序：got=%q want=%q", got, want)
	}
}

func TestCategoryMap_GetReturnsCopy(t *testing.T) {
	m := NewCategoryMap()
	m.Add(ArticleRecord{Filename: "a.html", Category: "Go"})

	got := m.Get("Go")
	got[0].Filename = "changed.html"
	_ = append(got, ArticleRecord{Filename: "x.html"})

	if rs := m.Get("Go"); len(rs) != 1 || rs[0].Filename != "a.html" {
		t.Fatalf("修改 Get 的结果不应影响桶：%+v", rs)
	}
}

func TestSlugFromFilename(t *testing.T) {
	cases := map[string]string{
		"a.html":        "a",
		"notes.HTML":    "notes",
		"old.htm":       "old",
		"v1.2.html":     "v1.2",
		"readme.md":     "readme.md",
		"html":          "html",
		"posts.html.gz": "posts.html.gz",
	}
	for in, want := range cases {
		if got := SlugFromFilename(in); got != want {
			t.Fatalf("SlugFromFilename(%q)=%q，期望 %q", in, got, want)
		}
	}
}
