package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanPosts_SortedSlashPaths(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "b.html"))
	touch(t, filepath.Join(root, "a.HTML"))
	touch(t, filepath.Join(root, "notes", "c.htm"))
	touch(t, filepath.Join(root, "notes", "ignore.txt"))
	touch(t, filepath.Join(root, ".git", "x.html"))

	got, err := ScanPosts(root, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"a.HTML", "b.html", "notes/c.htm"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("扫描结果不符 (-want +got):\n%s", diff)
	}
}

func TestScanPosts_Exclude(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "drafts", "wip.html"))
	touch(t, filepath.Join(root, "index.html"))
	touch(t, filepath.Join(root, "ok.html"))
	touch(t, filepath.Join(root, "todo.draft.html"))
	touch(t, filepath.Join(root, "sub", "later.draft.html"))

	got, err := ScanPosts(root, []string{
		"drafts",
		filepath.Join(root, "index.html"), // 绝对路径：输出文件
		"*.draft.html",
		filepath.Join(t.TempDir(), "elsewhere.html"), // 不在 root 下：忽略
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if diff := cmp.Diff([]string{"ok.html"}, got); diff != "" {
		t.Fatalf("扫描结果不符 (-want +got):\n%s", diff)
	}
}

func TestScanPosts_EmptyDir(t *testing.T) {
	got, err := ScanPosts(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("期望空切片，实际 %#v", got)
	}
}

func TestScanPosts_MissingRoot(t *testing.T) {
	_, err := ScanPosts(filepath.Join(t.TempDir(), "nope"), nil)
	if err == nil {
		t.Fatalf("期望目录不存在时报错")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
