package main

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// encoderConfig provides the common encoding settings of log entries.
func encoderConfig(isProduction bool) zapcore.EncoderConfig {
	var zapConfig zapcore.EncoderConfig
	if isProduction {
		zapConfig = zap.NewProductionEncoderConfig()
	} else {
		zapConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapConfig.TimeKey = "timestamp"
	zapConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.LevelKey = "level"
	zapConfig.NameKey = "name"
	zapConfig.MessageKey = "msg"
	zapConfig.CallerKey = "caller"
	zapConfig.StacktraceKey = "stacktrace"
	return zapConfig
}

// SetupLogging is a helper function that initialize the logging module.
// In production all logs are saved to the defined file. In development
// the same logs are printed to standard output as well. It only adds
// stacktrace to error level logs. All logs come with commit & tag value.
func SetupLogging(config *Config, logFile *os.File) (*zap.Logger, func()) {
	zapConfig := encoderConfig(config.IsProduction)
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zapConfig), zapcore.AddSync(logFile), config.LogLevel)

	var zapCore zapcore.Core
	if config.IsProduction {
		zapCore = zapcore.NewTee(fileCore)
	} else {
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(os.Stdout), config.LogLevel)
		zapCore = zapcore.NewTee(fileCore, consoleCore)
	}

	logger := zap.New(zapCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	logger = logger.With(zap.String("commit", config.GitCommit), zap.String("tag", config.GitTag))

	flusher := func() {
		if err := logger.Sync(); err != nil {
			log.Println("error during flushing any buffered log entries:", err)
		}
	}

	return logger, flusher
}
