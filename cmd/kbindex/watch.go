package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/kbindex/internal/config"
	"github.com/John-Robertt/kbindex/internal/watch"
)

func newWatchCmd(a *cli) *cobra.Command {
	var (
		f        buildFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "先构建一次，然后在文章目录/配置/模板变化时重建",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context(), f, debounce)
		},
	}
	cmd.Flags().StringVar(&f.template, "template", "", "页面模板（默认使用内置骨架）")
	cmd.Flags().StringVarP(&f.output, "out", "o", "", "输出文件（必填，可由配置 output 提供）")
	cmd.Flags().StringVar(&f.region, "region", "", "主内容区选择器（默认 #main-content）")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "变化合并窗口")
	return cmd
}

func (a *cli) runWatch(ctx context.Context, f buildFlags, debounce time.Duration) error {
	cliArgs := config.CLIArgs{Template: f.template, Output: f.output, Region: f.region}
	eff, log, err := a.load(cliArgs)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	defer func() { _ = log.Sync() }()
	if eff.Output == "" {
		return &exitError{code: 2, err: errors.New("watch 需要输出文件：--out 或配置 output")}
	}

	rebuild := func(ctx context.Context, eff config.EffectiveConfig) {
		started := time.Now()
		b, err := newBuilder(eff, log, nil)
		if err != nil {
			log.Error("初始化失败", zap.Error(err))
			return
		}
		rr, err := buildOnce(ctx, b, a.out)
		if err != nil {
			log.Error("重建失败", zap.Error(err))
			return
		}
		logBuild(log, rr, time.Since(started))
	}
	rebuild(ctx, eff)

	paths := []string{eff.ConfigPath}
	if dir := eff.LocalPostsDir(); dir != "" {
		paths = append(paths, dir)
	}
	if eff.Template != "" {
		paths = append(paths, eff.Template)
	}

	w := watch.Watcher{
		Paths:    paths,
		Ignore:   []string{eff.Output},
		Debounce: debounce,
		Log:      log,
		OnChange: func(ctx context.Context, changed []string) {
			log.Info("检测到变化", zap.Strings("paths", changed))
			// 配置可能被改动：每次重建前重新加载；失败时沿用上一份。
			next, _, err := a.load(cliArgs)
			if err != nil {
				log.Warn("重新加载配置失败，沿用上一份", zap.Error(err))
			} else {
				eff = next
			}
			rebuild(ctx, eff)
		},
	}
	if err := w.Run(ctx); err != nil {
		return &exitError{code: 1, err: err}
	}
	return nil
}
