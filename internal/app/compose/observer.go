package compose

import (
	"time"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/fetcher"
)

// Observer 用于把“构建进度/阶段/条目结果”从核心流程中解耦出来。
//
// 约束：
// - compose 包只负责发事件，不做任何输出（避免污染 stdout 的页面/JSON 输出）。
// - Observer 的实现必须并发安全：OnItemDone 来自多个抓取 goroutine。
type Observer interface {
	// OnStart 在定位到主内容区、开始抓取前调用；区域缺失时不调用。
	OnStart(site domain.SiteConfig)
	// OnPhaseDone 在阶段结束时调用：fetch、group、render。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在单个文件检索结算时调用；idx 是已结算数量（从 1 开始）。
	OnItemDone(idx, total int, res fetcher.Result, dur time.Duration)
}
