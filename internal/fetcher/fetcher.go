package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/logx"
	"github.com/John-Robertt/kbindex/internal/source"
)

// Result 是单个文件的检索结果。Record 为 nil 表示该文件被降级为条目级失败（Err 非 nil）。
type Result struct {
	Filename string
	URL      string
	Record   *domain.ArticleRecord
	Err      error
}

// ParseError 表示检索成功但文档无法解析；属于流水线级失败，会终止整次构建。
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("解析 %s 失败：%v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fetcher 并发检索全部文章并抽取元数据。
type Fetcher struct {
	Source source.Source
	Log    *zap.Logger

	// OnItemDone 在单个文件结算后调用；会来自多个 goroutine，实现必须并发安全。
	OnItemDone func(r Result, dur time.Duration)
}

// FetchAll 对每个文件名检索 postsDir+filename，全部结算后才返回（join-all）。
//
// - files 为空：不发起任何检索，记录 warning，返回空结果
// - 单个文件检索失败：记录 warning，对应 Result.Record=nil，不影响其他文件
// - 解析失败 / ctx 取消：返回 error（流水线级）
//
// 返回的 results 与 files 下标一一对应；并发不设上限，也不重试。
func (f Fetcher) FetchAll(ctx context.Context, postsDir string, files []string) ([]Result, error) {
	log := logx.OrNop(f.Log)
	if len(files) == 0 {
		log.Warn("post_files 为空，没有可检索的文章", zap.String("posts_dir", postsDir))
		return []Result{}, nil
	}
	if f.Source == nil {
		return nil, errors.New("source 不能为空")
	}

	results := make([]Result, len(files))
	var g errgroup.Group
	for i, name := range files {
		i, name := i, name
		g.Go(func() (err error) {
			// goroutine 内的 panic 无法被调用方 recover：在这里转成流水线级错误。
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("检索 %s 时 panic：%v", name, r)
				}
			}()
			started := time.Now()
			r, ferr := f.fetchOne(ctx, postsDir, name, log)
			results[i] = r
			if f.OnItemDone != nil {
				f.OnItemDone(r, time.Since(started))
			}
			return ferr
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f Fetcher) fetchOne(ctx context.Context, postsDir, name string, log *zap.Logger) (Result, error) {
	ref := source.Join(postsDir, name)
	r := Result{Filename: name, URL: ref}

	b, err := f.Source.Fetch(ctx, ref)
	if err != nil {
		r.Err = err
		log.Warn("检索文章失败，已跳过", zap.String("file", name), zap.String("url", ref), zap.Error(err))
		return r, nil
	}

	rec, err := Extract(name, b)
	if err != nil {
		pe := &ParseError{Filename: name, Err: err}
		r.Err = pe
		return r, pe
	}
	r.Record = &rec
	return r, nil
}

// Records 过滤掉失败条目，保持 results 的顺序。
func Records(results []Result) []domain.ArticleRecord {
	out := make([]domain.ArticleRecord, 0, len(results))
	for _, r := range results {
		if r.Record == nil {
			continue
		}
		out = append(out, *r.Record)
	}
	return out
}
