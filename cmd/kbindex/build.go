package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/kbindex/internal/app/compose"
	"github.com/John-Robertt/kbindex/internal/config"
	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/infra/fsx"
)

type buildFlags struct {
	template string
	output   string
	region   string
}

func newBuildCmd(a *cli) *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "构建一次索引页",
		Long: `构建一次索引页：抓取文章 -> 按分类聚合 -> 渲染 shortcuts 表格 -> 写入主内容区。

--out 为空时页面写 stdout；否则原子写入文件，且 stdout 非 TTY 时输出一个 BuildReport JSON。
存在失败文件或构建失败时退出码为 1（页面仍会写出）。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.template, "template", "", "页面模板（默认使用内置骨架）")
	cmd.Flags().StringVarP(&f.output, "out", "o", "", "输出文件（默认 stdout）")
	cmd.Flags().StringVar(&f.region, "region", "", "主内容区选择器（默认 #main-content）")
	return cmd
}

func (a *cli) runBuild(ctx context.Context, f buildFlags) error {
	eff, log, err := a.load(config.CLIArgs{Template: f.template, Output: f.output, Region: f.region})
	if err != nil {
		a.emitReport(reportForConfigError(err), true)
		return &exitError{code: 1}
	}
	defer func() { _ = log.Sync() }()

	var ui *progressUI
	var obs compose.Observer
	if a.errTTY {
		ui = newProgressUI(a.err)
		obs = ui
	}
	b, err := newBuilder(eff, log, obs)
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	rr, err := buildOnce(ctx, b, a.out)
	if ui != nil {
		ui.Close()
	}
	a.emitReport(rr, eff.Output != "")
	if ui != nil && eff.Output != "" {
		fmt.Fprintf(a.err, "out: %s\n", eff.Output)
	}
	if err != nil || rr.ErrorCode != "" || rr.Summary.Failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// buildOnce 构建并写出页面：Output 为空时写 stdout。
func buildOnce(ctx context.Context, b compose.Builder, stdout io.Writer) (domain.BuildReport, error) {
	out, rr, err := b.Build(ctx)
	if err != nil {
		return rr, err
	}
	if b.Config.Output == "" {
		if _, err := stdout.Write(out); err != nil {
			return markIOFailed(rr, err), err
		}
		return rr, nil
	}
	if err := fsx.WriteFileAtomic(b.Config.Output, out); err != nil {
		err = fmt.Errorf("写入 %s 失败：%w", b.Config.Output, err)
		return markIOFailed(rr, err), err
	}
	return rr, nil
}

func markIOFailed(rr domain.BuildReport, err error) domain.BuildReport {
	rr.ErrorCode = domain.ErrCodeIOFailed
	rr.ErrorMsg = err.Error()
	return rr
}

// emitReport 遵守 stdout 契约：
// - 页面写文件且 stdout 非 TTY：stdout 必须且仅输出一个 BuildReport JSON
// - 其余情况：摘要与失败明细写 stderr
func (a *cli) emitReport(rr domain.BuildReport, stdoutFree bool) {
	if stdoutFree && !a.outTTY {
		_ = json.NewEncoder(a.out).Encode(rr)
	}
	fmt.Fprintf(a.err, "完成：ok=%d failed=%d categories=%d\n",
		rr.Summary.OK, rr.Summary.Failed, rr.Summary.Categories,
	)
	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		fmt.Fprintf(a.err, "%s %s: %s\n", it.Filename, it.ErrorCode, truncate(it.ErrorMsg, 160))
	}
	if rr.ErrorCode != "" {
		fmt.Fprintf(a.err, "%s: %s\n", rr.ErrorCode, rr.ErrorMsg)
	}
}

func reportForConfigError(err error) domain.BuildReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr := domain.BuildReport{
		StartedAt:  now,
		FinishedAt: now,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
		Items:      []domain.ItemResult{},
	}
	rr.Finalize()
	return rr
}

func logBuild(log *zap.Logger, rr domain.BuildReport, dur time.Duration) {
	fields := []zap.Field{
		zap.Int("ok", rr.Summary.OK),
		zap.Int("failed", rr.Summary.Failed),
		zap.Int("categories", rr.Summary.Categories),
		zap.Duration("dur", dur),
	}
	if rr.ErrorCode != "" {
		log.Warn("重建完成（有错误）", append(fields, zap.String("error_code", rr.ErrorCode))...)
		return
	}
	log.Info("重建完成", fields...)
}
