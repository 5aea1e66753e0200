// Package logger owns the process-wide zap logger, configured from
// config.Log. File rotation is delegated to lumberjack when FileEnabled is
// set.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kheina-com/tagsvc/config"
)

// Log defaults to a no-op logger so library code may log before InitLogger
// runs (and so tests need no logging setup).
var Log = zap.NewNop()
var m sync.Mutex

func InitLogger(logDriver string) {
	m.Lock()
	defer m.Unlock()

	Log = newZapLogger()

	if Log != nil {
		Log.Info("Logger initialized successfully",
			zap.String("driver", logDriver),
			zap.Bool("file_enabled", config.GetConfig().Log.FileEnabled),
			zap.String("file_path", config.GetConfig().Log.FilePath),
			zap.String("level", config.GetConfig().Log.Level),
		)
	}
}

func newZapLogger() *zap.Logger {
	cfg := config.GetConfig().Log

	level := zapcore.InfoLevel
	_ = level.UnmarshalText([]byte(cfg.Level))

	stacktraceLevel := zapcore.ErrorLevel
	if cfg.StacktraceLevel != "" {
		_ = stacktraceLevel.UnmarshalText([]byte(cfg.StacktraceLevel))
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.FileEnabled && cfg.FilePath != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.FileSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.FileCompress,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(stacktraceLevel))
}
