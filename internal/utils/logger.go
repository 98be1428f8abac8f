package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const standardErrorOutputPath = "stderr"

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
// When logFilePath is empty the logger writes to standard error, otherwise it appends to the file.
func NewApplicationLogger(logFilePath string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.LevelKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	outputPath := standardErrorOutputPath
	if logFilePath != "" {
		outputPath = logFilePath
		config.EncoderConfig.TimeKey = "time"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.OutputPaths = []string{outputPath}
	config.ErrorOutputPaths = []string{standardErrorOutputPath}
	return config.Build()
}
