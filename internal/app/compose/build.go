package compose

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/John-Robertt/kbindex/internal/config"
	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/page"
)

// Builder 把生效配置、页面模板与 Composer 组合成一次完整构建（build/serve/watch 共用）。
type Builder struct {
	Composer Composer
	Config   config.EffectiveConfig
}

// Build 读取模板（未配置时使用内置骨架）、执行 Compose，并返回序列化后的整页。
//
// 返回 error 只表示“页面本身无法产出”（模板读取/解析、文章发现、序列化失败）；
// 索引构建失败体现在 BuildReport.ErrorCode，页面照常返回（主内容区是错误信息）。
func (b Builder) Build(ctx context.Context) ([]byte, domain.BuildReport, error) {
	site, err := b.Config.ResolveSite()
	if err != nil {
		return nil, failedReport(b.Config, domain.ErrCodeIOFailed, err), err
	}

	doc, err := b.loadPage(site)
	if err != nil {
		return nil, failedReport(b.Config, domain.ErrCodeIOFailed, err), err
	}

	rr := b.Composer.Compose(ctx, site, b.Config.Region, PageOf(doc))
	rr.Output = b.Config.Output

	out, err := doc.Bytes()
	if err != nil {
		err = fmt.Errorf("序列化页面失败：%w", err)
		return nil, failedReport(b.Config, domain.ErrCodeIOFailed, err), err
	}
	return out, rr, nil
}

func (b Builder) loadPage(site domain.SiteConfig) (*page.Document, error) {
	if b.Config.Template == "" {
		return page.Skeleton(site)
	}
	raw, err := os.ReadFile(b.Config.Template)
	if err != nil {
		return nil, fmt.Errorf("读取模板失败：%w", err)
	}
	doc, err := page.Load(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("解析模板失败：%w", err)
	}
	return doc, nil
}

func failedReport(cfg config.EffectiveConfig, code string, err error) domain.BuildReport {
	now := time.Now().UTC()
	rr := domain.BuildReport{
		PostsDir:   cfg.Site.PostsDir,
		Output:     cfg.Output,
		StartedAt:  now,
		FinishedAt: now,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
		Items:      []domain.ItemResult{},
	}
	rr.Finalize()
	return rr
}
