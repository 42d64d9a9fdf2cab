// Package server 提供 serve 子命令的 HTTP 路由：每次请求首页都重新构建索引。
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/logx"
)

// BuildFunc 产出一次完整页面。
type BuildFunc func(ctx context.Context) ([]byte, domain.BuildReport, error)

// Options 描述路由依赖。
type Options struct {
	Build BuildFunc
	// PostsDir 是本地 posts_dir 的绝对路径；为空表示远程，不挂载文章文件。
	PostsDir string
	// PostsPrefix 是页面链接中的 posts_dir（相对路径，如 "posts/"），决定挂载位置。
	PostsPrefix string
	Log         *zap.Logger
}

// New 构造路由：
// - GET /         每次重新构建并返回页面
// - GET /report   最近一次构建报告（JSON）
// - GET /health   存活检查
// - GET /<posts>/* 本地 posts_dir 时直接提供文章文件
func New(opts Options) http.Handler {
	log := logx.OrNop(opts.Log)
	s := &state{}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		out, rr, err := opts.Build(req.Context())
		s.set(rr)
		if err != nil {
			log.Error("构建页面失败", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(out)
	})
	r.Get("/report", func(w http.ResponseWriter, _ *http.Request) {
		rr, ok := s.get()
		if !ok {
			http.Error(w, "尚未构建", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rr)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if prefix, ok := mountPrefix(opts.PostsDir, opts.PostsPrefix); ok {
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(opts.PostsDir)))
		r.Handle(prefix+"*", fs)
		log.Debug("挂载文章目录", zap.String("prefix", prefix), zap.String("dir", opts.PostsDir))
	} else if opts.PostsDir != "" {
		log.Warn("posts_dir 不是相对路径，文章文件不经 serve 提供", zap.String("posts_dir", opts.PostsPrefix))
	}
	return r
}

// mountPrefix 把 "posts/"、"./notes/posts" 之类的相对 posts_dir 变为 "/posts/"。
func mountPrefix(dir, prefix string) (string, bool) {
	if dir == "" {
		return "", false
	}
	p := strings.TrimPrefix(strings.TrimSpace(prefix), "./")
	if p == "" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "../") || strings.Contains(p, "://") {
		return "", false
	}
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return "", false
	}
	return "/" + p + "/", true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("dur", time.Since(started)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
