package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/John-Robertt/kbindex/internal/app/compose"
	"github.com/John-Robertt/kbindex/internal/config"
	"github.com/John-Robertt/kbindex/internal/infra/httpx"
	"github.com/John-Robertt/kbindex/internal/logx"
	"github.com/John-Robertt/kbindex/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], streams{
		out:    os.Stdout,
		err:    os.Stderr,
		outTTY: isTTY(os.Stdout),
		errTTY: isTTY(os.Stderr),
	})
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

// streams 把 stdout/stderr 与“是否交互终端”一起传递，便于测试替换。
type streams struct {
	out, err       io.Writer
	outTTY, errTTY bool
}

// exitError 携带退出码；err 为 nil 表示输出已经处理完毕，只需退出。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// execute 运行 CLI 并返回退出码：0 成功；1 运行失败；2 参数错误。
func execute(ctx context.Context, args []string, s streams) int {
	root := newRootCmd(s)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(s.err, "错误：%v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(s.err, "参数错误：%v\n\n", err)
	fmt.Fprint(s.err, root.UsageString())
	return 2
}

type cli struct {
	streams

	configPath string
	logLevel   string
}

func newRootCmd(s streams) *cobra.Command {
	a := &cli{streams: s}

	root := &cobra.Command{
		Use:           "kbindex",
		Short:         "为个人知识库生成分类索引页与目录",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(s.out)
	root.SetErr(s.err)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "配置文件（默认在当前目录查找 kbindex.{json,yaml,yml,toml}）")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "日志级别：debug|info|warn|error")

	root.AddCommand(
		newBuildCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newTocCmd(a),
	)
	return root
}

// load 读取生效配置并构造 logger。extra 中的空字段表示未指定。
func (a *cli) load(extra config.CLIArgs) (config.EffectiveConfig, *zap.Logger, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, nil, fmt.Errorf("读取当前目录失败：%w", err)
	}
	extra.Config = a.configPath
	extra.LogLevel = a.logLevel
	eff, err := config.LoadEffective(cwd, extra)
	if err != nil {
		return config.EffectiveConfig{}, nil, err
	}
	log, err := logx.New(eff.LogLevel)
	if err != nil {
		return config.EffectiveConfig{}, nil, err
	}
	return eff, log, nil
}

// newBuilder 按配置装配 source 与 Composer。
func newBuilder(eff config.EffectiveConfig, log *zap.Logger, obs compose.Observer) (compose.Builder, error) {
	client, err := httpx.NewClient(httpx.Options{ProxyURL: eff.ProxyURL, Timeout: eff.Timeout})
	if err != nil {
		return compose.Builder{}, fmt.Errorf("初始化 http client 失败：%w", err)
	}
	reg, err := source.NewRegistry(
		source.HTTP{Client: client},
		source.Dir{Root: eff.BaseDir},
	)
	if err != nil {
		return compose.Builder{}, fmt.Errorf("初始化 source registry 失败：%w", err)
	}
	return compose.Builder{
		Composer: compose.Composer{Sources: reg, Log: log, Observer: obs},
		Config:   eff,
	}, nil
}

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
