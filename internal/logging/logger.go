// Package logging is the central logging package of the CLI. It holds our custom log formatters for zap.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewProductionLogger returns a logger that prints Info messages to stdout and warnings & errors to stderr.
// Debug output is discarded.
func NewProductionLogger() *zap.SugaredLogger {
	return newLogger(os.Stdout, os.Stderr, false)
}

// NewDebugLogger is similar to our production logger, however it also includes debug output, timestamps & stacktraces
func NewDebugLogger() *zap.SugaredLogger {
	return newLogger(os.Stdout, os.Stderr, true)
}

func newLogger(stdout, stderr io.Writer, debug bool) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		// These strings are meaningless - they just need to be non-empty for the console encoder.
		MessageKey: "M",
		LevelKey:   "L",
		EncodeLevel: func(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			// Anything other than "info" logs will have a capitalized level prefix.
			if lvl != zapcore.InfoLevel {
				zapcore.CapitalColorLevelEncoder(lvl, enc)
			}
		},
	}

	if debug {
		encoderConfig.NameKey = "N"
		encoderConfig.StacktraceKey = "S"
		encoderConfig.TimeKey = "T"
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	infoLevels := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level == zapcore.InfoLevel
	})

	errorLevels := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		if level == zapcore.DebugLevel {
			return debug
		}

		return !infoLevels(level)
	})

	logger := zap.New(zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(stdout), infoLevels),
		zapcore.NewCore(encoder, zapcore.AddSync(stderr), errorLevels),
	))

	if debug {
		logger = logger.WithOptions(zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return logger.Sugar()
}
