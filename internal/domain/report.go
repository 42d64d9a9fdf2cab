package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

const (
	ErrCodeFetchFailed       = "fetch_failed"
	ErrCodeParseFailed       = "parse_failed"
	ErrCodeRegionNotFound    = "region_not_found"
	ErrCodePipelineFailed    = "pipeline_failed"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPost = "config_missing_posts"
)

// BuildReport 是一次构建对外稳定输出（stdout JSON）的结构。
type BuildReport struct {
	PostsDir string `json:"posts_dir"`
	Output   string `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// ErrorCode/ErrorMsg 仅在流水线级失败时非空（条目级失败记录在 Items 中）。
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Summary    ReportSummary  `json:"summary"`
	Categories map[string]int `json:"categories"`
	Items      []ItemResult   `json:"items"`
}

type ReportSummary struct {
	OK         int `json:"ok"`
	Failed     int `json:"failed"`
	Categories int `json:"categories"`
}

type ItemResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Category string `json:"category"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 filename 字典序；filename=="" 的条目排在最后
// 3) summary/categories 由 items 计算得出
func (r *BuildReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Filename
		b := r.Items[j].Filename
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	cats := make(map[string]int, 16)
	for _, it := range r.Items {
		switch it.Status {
		case StatusOK:
			s.OK++
			cats[it.Category]++
		case StatusFailed:
			s.Failed++
		}
	}
	s.Categories = len(cats)
	r.Summary = s
	r.Categories = cats
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// encoding/json 对 map 键排序，categories 的输出顺序天然稳定。
func (r BuildReport) MarshalJSON() ([]byte, error) {
	type Alias BuildReport
	return json.Marshal(Alias(r))
}
