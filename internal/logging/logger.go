// Package logging builds the zap logger shared by every component.
package logging

import (
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a JSON zap logger writing to stdout/stderr.  level is one of
// debug, info, warn or error (info when unknown).  Development mode adds
// stack traces on warnings and a human friendly caller.
func New(level, env string) (*zap.Logger, error) {
    var logLevel zapcore.Level
    switch strings.ToLower(level) {
    case "debug":
        logLevel = zap.DebugLevel
    case "warn":
        logLevel = zap.WarnLevel
    case "error":
        logLevel = zap.ErrorLevel
    default:
        logLevel = zap.InfoLevel
    }

    encoderConfig := zapcore.EncoderConfig{
        TimeKey:        "time",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        MessageKey:     "msg",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.StringDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }

    cfg := zap.Config{
        Level:            zap.NewAtomicLevelAt(logLevel),
        Development:      strings.EqualFold(env, "development"),
        Encoding:         "json",
        EncoderConfig:    encoderConfig,
        OutputPaths:      []string{"stdout"},
        ErrorOutputPaths: []string{"stderr"},
    }
    return cfg.Build()
}
