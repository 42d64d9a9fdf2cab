package domain

import (
	"slices"
	"unicode/utf16"
)

// CategoryMap 是 分类 -> 文章列表 的有序映射。
//
// 不变量：每条记录恰好出现在以其 Category 为键的一个桶里；桶内保持 Add 的先后顺序。
// 每次构建都重新生成，不做持久化。
type CategoryMap struct {
	order   []string
	buckets map[string][]ArticleRecord
}

func NewCategoryMap() *CategoryMap {
	return &CategoryMap{buckets: make(map[string][]ArticleRecord, 16)}
}

// Add 把记录追加到其 Category 对应的桶（精确匹配，不做大小写/空白规范化）。
func (m *CategoryMap) Add(r ArticleRecord) {
	if m.buckets == nil {
		m.buckets = make(map[string][]ArticleRecord, 16)
	}
	if _, ok := m.buckets[r.Category]; !ok {
		m.order = append(m.order, r.Category)
	}
	m.buckets[r.Category] = append(m.buckets[r.Category], r)
}

// Get 返回某个分类下的文章副本（按加入顺序）。
func (m *CategoryMap) Get(category string) []ArticleRecord {
	if m == nil {
		return nil
	}
	return slices.Clone(m.buckets[category])
}

// Keys 按首次出现的顺序返回分类名。
func (m *CategoryMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// SortedKeys 按 UTF-16 码元序返回分类名（大写在小写之前）。
// 对 BMP 字符与字节序一致；辅助平面字符排在 U+E000..U+FFFF 之前。
func (m *CategoryMap) SortedKeys() []string {
	keys := m.Keys()
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// Len 返回分类数量。
func (m *CategoryMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Total 返回全部桶内的文章总数。
func (m *CategoryMap) Total() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, rs := range m.buckets {
		n += len(rs)
	}
	return n
}
