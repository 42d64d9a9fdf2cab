package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/kbindex/internal/config"
	"github.com/John-Robertt/kbindex/internal/server"
)

func newServeCmd(a *cli) *cobra.Command {
	var (
		addr     string
		template string
		region   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务：每次请求首页都重新构建索引",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eff, log, err := a.load(config.CLIArgs{Addr: addr, Template: template, Region: region})
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			defer func() { _ = log.Sync() }()

			b, err := newBuilder(eff, log, nil)
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			h := server.New(server.Options{
				Build:       b.Build,
				PostsDir:    eff.LocalPostsDir(),
				PostsPrefix: eff.Site.PostsDir,
				Log:         log,
			})
			if err := listenAndServe(cmd.Context(), eff.Addr, h, log); err != nil {
				return &exitError{code: 1, err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "监听地址（默认 :8080）")
	cmd.Flags().StringVar(&template, "template", "", "页面模板（默认使用内置骨架）")
	cmd.Flags().StringVar(&region, "region", "", "主内容区选择器（默认 #main-content）")
	return cmd
}

// listenAndServe 在 ctx 结束时优雅关闭。
func listenAndServe(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("服务已启动", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("正在关闭服务")
		return srv.Shutdown(shutdownCtx)
	}
}
