package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level 將設定檔的等級字串轉為 zapcore.Level
// "debug", "info", "warn", "error"，空字串預設 info
func Level(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New 依配置建立 zap Logger
//
// 參數:
//
//	level: Log 等級
//	development: true 時使用人類易讀的 console 格式，否則輸出 JSON
//
// 回傳值:
//
//	*zap.Logger: Logger 實例
//	error: 等級不合法或建立失敗
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := Level(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// log 寫到 stderr，stdout 留給指令輸出 (對帳單表格)
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}
