package app

import (
	"github.com/John-Robertt/kbindex/internal/domain"
)

// GroupByCategory 把文章记录按 Category 分桶。
//
// - 分组键精确匹配：不做大小写/空白规范化（抽取阶段已 trim）
// - 桶内顺序 = records 的顺序；fetcher 按输入下标返回结果，因此桶内顺序即配置中 post_files 的顺序
func GroupByCategory(records []domain.ArticleRecord) *domain.CategoryMap {
	m := domain.NewCategoryMap()
	for _, r := range records {
		m.Add(r)
	}
	return m
}
