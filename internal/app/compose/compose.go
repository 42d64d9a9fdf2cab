package compose

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	g "maragu.dev/gomponents"

	"github.com/John-Robertt/kbindex/internal/app"
	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/fetcher"
	"github.com/John-Robertt/kbindex/internal/logx"
	"github.com/John-Robertt/kbindex/internal/page"
	"github.com/John-Robertt/kbindex/internal/render"
	"github.com/John-Robertt/kbindex/internal/source"
)

// ErrRegionNotFound 表示页面中找不到主内容区。
var ErrRegionNotFound = errors.New("主内容区不存在")

// Region 是页面中可写的主内容区。
type Region interface {
	SetText(s string)
	Clear()
	Append(n g.Node) error
}

// Page 负责按选择器定位区域。
type Page interface {
	Lookup(selector string) (Region, bool)
}

type documentPage struct{ doc *page.Document }

func (p documentPage) Lookup(selector string) (Region, bool) {
	r, ok := p.doc.Region(selector)
	if !ok {
		return nil, false
	}
	return r, true
}

// PageOf 把 page.Document 适配为 Page。
func PageOf(doc *page.Document) Page { return documentPage{doc: doc} }

// Composer 编排一次完整的索引构建：抓取 -> 分组 -> 渲染 -> 写入主内容区。
type Composer struct {
	Sources  source.Registry
	Log      *zap.Logger
	Observer Observer
}

// Compose 在 p 的主内容区里构建索引，并返回对外稳定的 BuildReport。
//
// - 区域不存在：记录 error 并直接返回，不对页面做任何修改
// - 单个文件失败：只体现在 report.Items，不影响整体
// - 流水线失败（含 panic）：区域整体替换为错误信息；不重试
func (c Composer) Compose(ctx context.Context, site domain.SiteConfig, selector string, p Page) domain.BuildReport {
	log := logx.OrNop(c.Log)
	obs := c.Observer

	rr := domain.BuildReport{
		PostsDir:  site.PostsDir,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, len(site.PostFiles)),
	}
	if selector == "" {
		selector = page.DefaultRegion
	}
	region, ok := p.Lookup(selector)
	if !ok {
		log.Error("找不到主内容区，放弃构建", zap.String("selector", selector))
		rr.ErrorCode = domain.ErrCodeRegionNotFound
		rr.ErrorMsg = fmt.Sprintf("%v：%s", ErrRegionNotFound, selector)
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	if obs != nil {
		obs.OnStart(site)
	}
	region.SetText(render.LoadingText)

	nodes, items, err := c.pipeline(ctx, site, log)
	rr.Items = append(rr.Items, items...)
	if err == nil {
		region.Clear()
		for _, n := range nodes {
			if err = region.Append(n); err != nil {
				err = fmt.Errorf("写入主内容区失败：%w", err)
				break
			}
		}
	}
	if err != nil {
		log.Error("构建索引失败", zap.Error(err))
		region.Clear()
		if e := region.Append(render.ErrorMessage(err)); e != nil {
			region.SetText("Failed to build index: " + err.Error())
		}
		rr.ErrorCode = errorCode(err)
		rr.ErrorMsg = err.Error()
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// pipeline 是唯一的顶层失败边界：panic 也在这里转成 error。
func (c Composer) pipeline(ctx context.Context, site domain.SiteConfig, log *zap.Logger) (nodes []g.Node, items []domain.ItemResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("pipeline panic", zap.ByteString("stack", debug.Stack()))
			nodes = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	obs := c.Observer

	src, err := c.Sources.For(site.PostsDir)
	if err != nil {
		return nil, nil, err
	}

	total := len(site.PostFiles)
	var done atomic.Int64
	f := fetcher.Fetcher{Source: src, Log: log}
	if obs != nil {
		f.OnItemDone = func(r fetcher.Result, dur time.Duration) {
			obs.OnItemDone(int(done.Add(1)), total, r, dur)
		}
	}

	fetchStarted := time.Now()
	results, err := f.FetchAll(ctx, site.PostsDir, site.PostFiles)
	if err != nil {
		return nil, nil, err
	}
	items = itemResults(results)
	records := fetcher.Records(results)
	if obs != nil {
		obs.OnPhaseDone("fetch", map[string]any{
			"files":  total,
			"ok":     len(records),
			"failed": len(results) - len(records),
		}, time.Since(fetchStarted))
	}

	groupStarted := time.Now()
	cm := app.GroupByCategory(records)
	if obs != nil {
		obs.OnPhaseDone("group", map[string]any{
			"categories": cm.Len(),
		}, time.Since(groupStarted))
	}

	renderStarted := time.Now()
	table := render.ShortcutsTable(render.CategoryList(cm, site.PostsDir))
	nodes = []g.Node{
		render.SiteHeader(site),
		table,
		render.SiteFooter(site),
	}
	if obs != nil {
		obs.OnPhaseDone("render", map[string]any{
			"articles": cm.Total(),
		}, time.Since(renderStarted))
	}

	log.Info("索引构建完成",
		zap.Int("articles", cm.Total()),
		zap.Int("categories", cm.Len()),
		zap.Int("failed", len(results)-len(records)),
	)
	return nodes, items, nil
}

func itemResults(results []fetcher.Result) []domain.ItemResult {
	out := make([]domain.ItemResult, 0, len(results))
	for _, r := range results {
		it := domain.ItemResult{
			Filename: r.Filename,
			URL:      r.URL,
			Status:   domain.StatusOK,
		}
		if r.Record != nil {
			it.Category = r.Record.Category
		} else {
			it.Status = domain.StatusFailed
			it.ErrorCode = domain.ErrCodeFetchFailed
			if r.Err != nil {
				it.ErrorMsg = r.Err.Error()
			}
		}
		out = append(out, it)
	}
	return out
}

func errorCode(err error) string {
	var pe *fetcher.ParseError
	if errors.As(err, &pe) {
		return domain.ErrCodeParseFailed
	}
	return domain.ErrCodePipelineFailed
}
