// Package logx 构造全局统一风格的 zap logger。
//
// 约束：日志一律写 stderr；stdout 只留给页面/报告输出。
package logx

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel 把 debug/info/warn/error 解析为 zap 级别；空串视为 info。
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("log_level 只能是 debug/info/warn/error，实际是 %q", s)
	}
}

// New 返回写 stderr 的 console logger。
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewWithSink(lvl, zapcore.Lock(os.Stderr)), nil
}

// NewWithSink 允许测试把日志写到自定义 sink。
func NewWithSink(lvl zapcore.Level, sink zapcore.WriteSyncer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, zap.NewAtomicLevelAt(lvl))
	return zap.New(core)
}

// Nop 返回丢弃一切的 logger；nil logger 统一用它兜底。
func Nop() *zap.Logger { return zap.NewNop() }

// OrNop 在 l 为 nil 时返回 Nop。
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
