package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/kbindex/internal/domain"
	"github.com/John-Robertt/kbindex/internal/infra/httpx"
	"github.com/John-Robertt/kbindex/internal/logx"
	"github.com/John-Robertt/kbindex/internal/source"
)

const (
	// ErrCodeNotFound 表示找不到配置文件（--config 指定的文件不存在，或 cwd 下没有候选文件）。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingPosts 表示合并后仍没有 posts_dir。
	ErrCodeMissingPosts = "config_missing_posts"
)

const (
	// DefaultAddr 是 serve 的默认监听地址。
	DefaultAddr = ":8080"
	// EnvPrefix 是环境变量覆盖项的统一前缀。
	EnvPrefix = "KBINDEX_"
)

// Candidates 是未指定 --config 时在 cwd 依次查找的文件名（先到先得）。
var Candidates = []string{"kbindex.json", "kbindex.yaml", "kbindex.yml", "kbindex.toml"}

// CLIArgs 是 CLI 暴露的覆盖项；空串表示未指定。
type CLIArgs struct {
	Config string

	Template string
	Output   string
	Region   string
	Addr     string
	LogLevel string
}

// FileConfig 对应 kbindex.{json,yaml,yml,toml} 的解析结构。
type FileConfig struct {
	PostsDir  string   `json:"posts_dir" yaml:"posts_dir" toml:"posts_dir"`
	PostFiles []string `json:"post_files" yaml:"post_files" toml:"post_files"`

	Title         string `json:"title" yaml:"title" toml:"title"`
	Subtitle      string `json:"subtitle" yaml:"subtitle" toml:"subtitle"`
	Description   string `json:"description" yaml:"description" toml:"description"`
	GithubURL     string `json:"github_url" yaml:"github_url" toml:"github_url"`
	CopyrightYear Scalar `json:"copyright_year" yaml:"copyright_year" toml:"copyright_year"`

	Template string `json:"template" yaml:"template" toml:"template"`
	Output   string `json:"output" yaml:"output" toml:"output"`
	Region   string `json:"region" yaml:"region" toml:"region"`
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`

	// Timeout 是单次检索的总超时，Go duration 字符串（"20s"）或整数秒；"0" 表示不限。
	Timeout  Scalar   `json:"timeout" yaml:"timeout" toml:"timeout"`
	Discover *bool    `json:"discover" yaml:"discover" toml:"discover"`
	Exclude  []string `json:"exclude" yaml:"exclude" toml:"exclude"`

	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	ProxyURL string `json:"proxy_url" yaml:"proxy_url" toml:"proxy_url"`
}

// envOverrides 是 KBINDEX_* 环境变量的解析结构（前缀由 EnvPrefix 统一加上）。
type envOverrides struct {
	PostsDir      string   `env:"POSTS_DIR"`
	PostFiles     []string `env:"POST_FILES" envSeparator:","`
	Title         string   `env:"TITLE"`
	Subtitle      string   `env:"SUBTITLE"`
	Description   string   `env:"DESCRIPTION"`
	GithubURL     string   `env:"GITHUB_URL"`
	CopyrightYear string   `env:"COPYRIGHT_YEAR"`
	Template      string   `env:"TEMPLATE"`
	Output        string   `env:"OUTPUT"`
	Region        string   `env:"REGION"`
	Addr          string   `env:"ADDR"`
	Timeout       string   `env:"TIMEOUT"`
	Discover      string   `env:"DISCOVER"`
	LogLevel      string   `env:"LOG_LEVEL"`
	ProxyURL      string   `env:"PROXY_URL"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Site domain.SiteConfig

	// ConfigPath 是实际读取的配置文件（绝对路径）。
	ConfigPath string
	// BaseDir 是配置文件所在目录；本地 posts_dir 的相对路径以它为基准。
	BaseDir string

	// Template/Output 为绝对路径；空串分别表示“使用内置骨架”“写 stdout”。
	Template string
	Output   string
	Region   string
	Addr     string

	Timeout  time.Duration
	Discover bool
	Exclude  []string

	LogLevel string
	ProxyURL string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPosts:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 posts_dir", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，叠加环境变量与 CLI 参数，得到最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：读取该文件（必须存在）
// 2) 否则在 cwd 依次查找 Candidates（必须找到一个）
//
// 覆盖优先级（固定）：CLI > 环境变量（含配置目录下的 .env）> 配置文件 > 默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath, err := discover(cwdAbs, cli.Config)
	if err != nil {
		return EffectiveConfig{}, err
	}

	fc, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	environ, err := loadEnviron(filepath.Dir(cfgPath))
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	var ov envOverrides
	if err := env.ParseWithOptions(&ov, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("环境变量无效：%w", err)}
	}

	return merge(cwdAbs, cfgPath, cli, ov, fc)
}

func discover(cwdAbs, explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		p = absCleanFrom(cwdAbs, p)
		fi, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return "", &Error{Code: ErrCodeNotFound, Path: p, Err: os.ErrNotExist}
			}
			return "", &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if fi.IsDir() {
			return "", &Error{Code: ErrCodeInvalid, Path: p, Err: errors.New("配置路径是目录")}
		}
		return p, nil
	}
	for _, name := range Candidates {
		p := filepath.Join(cwdAbs, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", &Error{Code: ErrCodeNotFound, Path: filepath.Join(cwdAbs, Candidates[0]), Err: os.ErrNotExist}
}

func merge(cwdAbs, cfgPath string, cli CLIArgs, ov envOverrides, fc FileConfig) (EffectiveConfig, error) {
	baseDir := filepath.Dir(cfgPath)
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	site := domain.SiteConfig{
		PostsDir:      pick(ov.PostsDir, fc.PostsDir),
		Title:         pick(ov.Title, fc.Title),
		Subtitle:      pick(ov.Subtitle, fc.Subtitle),
		Description:   pick(ov.Description, fc.Description),
		GithubURL:     pick(ov.GithubURL, fc.GithubURL),
		CopyrightYear: pick(ov.CopyrightYear, fc.CopyrightYear.String()),
	}
	files := fc.PostFiles
	if len(ov.PostFiles) > 0 {
		files = ov.PostFiles
	}
	for _, f := range files {
		if f = strings.TrimSpace(f); f != "" {
			site.PostFiles = append(site.PostFiles, f)
		}
	}

	if site.PostsDir == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPosts, Path: cfgPath}
	}
	// postsDir 与文件名按字符串拼接：统一保证结尾有 '/'。
	if !strings.HasSuffix(site.PostsDir, "/") {
		site.PostsDir += "/"
	}
	if source.IsRemote(site.PostsDir) {
		u, err := url.Parse(site.PostsDir)
		if err != nil || u.Host == "" {
			return invalid(fmt.Errorf("posts_dir 无效：%q", site.PostsDir))
		}
	}

	// 路径类字段：CLI/环境变量相对 cwd，配置文件相对配置目录。
	template := pathFrom(cwdAbs, cli.Template, cwdAbs, ov.Template, baseDir, fc.Template)
	output := pathFrom(cwdAbs, cli.Output, cwdAbs, ov.Output, baseDir, fc.Output)

	region := pick(cli.Region, ov.Region, fc.Region)
	addr := pick(cli.Addr, ov.Addr, fc.Addr, DefaultAddr)

	logLevel := pick(cli.LogLevel, ov.LogLevel, fc.LogLevel, "info")
	if _, err := logx.ParseLevel(logLevel); err != nil {
		return invalid(err)
	}

	timeout := httpx.DefaultTimeout
	if raw := pick(ov.Timeout, fc.Timeout.String()); raw != "" {
		d, err := parseTimeout(raw)
		if err != nil {
			return invalid(err)
		}
		timeout = d
	}

	discoverPosts := false
	if fc.Discover != nil {
		discoverPosts = *fc.Discover
	}
	if raw := strings.TrimSpace(ov.Discover); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return invalid(fmt.Errorf("%sDISCOVER 无效：%q", EnvPrefix, raw))
		}
		discoverPosts = b
	}
	if discoverPosts && source.IsRemote(site.PostsDir) {
		return invalid(errors.New("discover=true 只支持本地 posts_dir"))
	}

	proxyURL := pick(ov.ProxyURL, fc.ProxyURL)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return invalid(fmt.Errorf("proxy_url 无效：%w", err))
		}
	}

	return EffectiveConfig{
		Site:       site,
		ConfigPath: cfgPath,
		BaseDir:    baseDir,
		Template:   template,
		Output:     output,
		Region:     region,
		Addr:       addr,
		Timeout:    timeout,
		Discover:   discoverPosts,
		Exclude:    append([]string(nil), fc.Exclude...),
		LogLevel:   strings.ToLower(logLevel),
		ProxyURL:   proxyURL,
	}, nil
}

// LocalPostsDir 返回本地 posts_dir 的绝对路径；远程 posts_dir 返回空串。
func (c EffectiveConfig) LocalPostsDir() string {
	if source.IsRemote(c.Site.PostsDir) {
		return ""
	}
	return absCleanFrom(c.BaseDir, filepath.FromSlash(c.Site.PostsDir))
}

// pick 返回第一个 trim 后非空的值。
func pick(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// pathFrom 按 (base, value) 对依次取第一个非空 value，并以对应 base 变为绝对路径。
func pathFrom(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			return absCleanFrom(pairs[i], v)
		}
	}
	return ""
}

func parseTimeout(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("timeout 不能为负数：%q", raw)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("timeout 无效：%q", raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout 不能为负数：%q", raw)
	}
	return d, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 按扩展名选择解析器。
func readFileConfig(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, err
	}
	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	case ".toml":
		err = toml.Unmarshal(b, &fc)
	default:
		return FileConfig{}, fmt.Errorf("不支持的配置格式：%q（只支持 json/yaml/yml/toml）", filepath.Ext(path))
	}
	if err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}

// loadEnviron 返回进程环境变量；dir 下有 .env 时作为补充（进程环境变量优先）。
func loadEnviron(dir string) (map[string]string, error) {
	m := make(map[string]string, 64)
	p := filepath.Join(dir, ".env")
	if _, err := os.Stat(p); err == nil {
		dotenv, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("读取 %s 失败：%w", p, err)
		}
		maps.Copy(m, dotenv)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m, nil
}
