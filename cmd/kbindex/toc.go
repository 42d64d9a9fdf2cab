package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/kbindex/internal/infra/fsx"
	"github.com/John-Robertt/kbindex/internal/logx"
	"github.com/John-Robertt/kbindex/internal/page"
	"github.com/John-Robertt/kbindex/internal/toc"
)

type tocFlags struct {
	output    string
	container string
	selector  string
	title     string
	style     bool
}

func newTocCmd(a *cli) *cobra.Command {
	var f tocFlags
	cmd := &cobra.Command{
		Use:   "toc <file>",
		Short: "为页面生成目录（TOC）",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runToc(args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "out", "o", "", "输出文件（默认 stdout；可与输入相同以原地更新）")
	cmd.Flags().StringVar(&f.container, "container", toc.DefaultContainerID, "目录容器 id（不存在时在 <body> 开头创建）")
	cmd.Flags().StringVar(&f.selector, "selector", toc.DefaultSelector, "标题选择器")
	cmd.Flags().StringVar(&f.title, "title", "", "目录标题（默认不输出）")
	cmd.Flags().BoolVar(&f.style, "style", false, "在 <head> 注入默认样式")
	return cmd
}

func (a *cli) runToc(in string, f tocFlags) error {
	log, err := logx.New(a.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	raw, err := os.ReadFile(in)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("读取页面失败：%w", err)}
	}
	doc, err := page.Load(bytes.NewReader(raw))
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("解析页面失败：%w", err)}
	}

	entries, err := toc.Apply(doc.Goquery(), toc.Options{
		Selector:    f.selector,
		ContainerID: f.container,
		Title:       f.title,
		InjectStyle: f.style,
	})
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	if len(entries) == 0 {
		log.Warn("页面没有可用的标题，未生成目录", zap.String("file", in))
	} else {
		log.Info("目录已生成", zap.String("file", in), zap.Int("entries", len(entries)))
	}

	out, err := doc.Bytes()
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	if f.output == "" {
		if _, err := a.out.Write(out); err != nil {
			return &exitError{code: 1, err: err}
		}
		return nil
	}
	if err := fsx.WriteFileAtomic(f.output, out); err != nil {
		return &exitError{code: 1, err: fmt.Errorf("写入 %s 失败：%w", f.output, err)}
	}
	return nil
}
