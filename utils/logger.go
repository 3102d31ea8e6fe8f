package utils

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.RWMutex
	sugar    *zap.SugaredLogger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	sugar = l.Sugar()
}

// SetLogLevel sets the minimum level the global logger emits, rebuilding
// it with the matching zap config. Valid levels are debug, info, warning,
// error; an empty level leaves the default (info) untouched.
func SetLogLevel(level string) {
	if level == "" {
		return
	}
	level = strings.TrimSpace(strings.ToLower(level))
	var zl zap.AtomicLevel
	switch level {
	case "debug":
		zl = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zl = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warning":
		zl = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zl = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		panic("invalid log level: " + level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zl
	l, err := cfg.Build()
	if err != nil {
		return
	}
	loggerMu.Lock()
	sugar = l.Sugar()
	loggerMu.Unlock()
}

// SetLogger replaces the global logger outright, for callers that want to
// inject a *zap.Logger wired to an observer core or a different encoder.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	sugar = l.Sugar()
	loggerMu.Unlock()
}

func current() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return sugar
}

func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warningf(format string, args ...interface{}) {
	current().Warnf(format, args...)
}
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }
