// Package fsx 负责产物（页面）的原子落盘。
package fsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// renameFunc 可在测试中替换，用于模拟 EXDEV 等 rename 失败。
var renameFunc = os.Rename

// DefaultPerm 是新页面的权限；覆盖已有页面时沿用旧权限。
const DefaultPerm os.FileMode = 0o644

// PathTypeConflictError 表示输出路径已被目录占用。
type PathTypeConflictError struct {
	Path string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("输出路径 %q 是目录，无法写入页面", e.Path)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示临时文件与目标不在同一文件系统（EXDEV）。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨文件系统 rename 失败（EXDEV）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨文件系统错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Rename 封装 os.Rename，并把 EXDEV 标记为 CrossDeviceError。
func Rename(src, dst string) error {
	err := renameFunc(src, dst)
	if err != nil && isEXDEV(err) {
		return &CrossDeviceError{Src: src, Dst: dst, Err: err}
	}
	return err
}

// WriteFileAtomic 把 data 写入 path：同目录临时文件 + fsync + rename。
//
// serve/watch 期间页面可能正被读取：读者要么看到旧页面，要么看到完整的新页面。
// 父目录不存在时自动创建；任何失败都不会留下临时文件，也不会动到旧页面。
func WriteFileAtomic(path string, data []byte) error {
	path = filepath.Clean(path)
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	perm := DefaultPerm
	if fi, err := os.Lstat(path); err == nil {
		if fi.IsDir() {
			return &PathTypeConflictError{Path: path}
		}
		perm = fi.Mode().Perm()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// 临时文件以 '.' 开头：watch 会忽略它，静态服务器也不会当成页面列出。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := Rename(tmpName, path); err != nil {
		return err
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir 让 rename 本身落盘；best-effort，Windows 上不支持目录 fsync。
func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
