package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gatherhq/gather/pkg/logger/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *types.Logger

// Config represents configuration options for logger initialization
type Config struct {
	Debug     bool   // Enable debug logging
	LogToFile bool   // Enable logging to a file
	LogsDir   string // Set the directory for logs (default: current working directory)
}

// Init is a function to initialize logger with extended configuration
func Init(config Config) error {
	var l types.Logger
	l.Name = "main"

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	// Set log directory, default to current working directory
	if config.LogsDir == "" {
		l.LogsPath = wd
	} else {
		l.LogsPath = filepath.Join(wd, config.LogsDir)
	}

	// Ensure log directory exists
	err = os.MkdirAll(l.LogsPath, os.ModePerm)
	if err != nil {
		return err
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     timeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var level zapcore.Level
	if config.Debug {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	// Console encoder with colors
	consoleEncoderConfig := encoderConfig
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)

	// File encoder without colors
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)

	var cores []zapcore.Core

	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)
	cores = append(cores, consoleCore)

	if config.LogToFile {
		mainLogPath := filepath.Join(l.LogsPath, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02 15:04")))
		fileWriter, errOpenFile := os.OpenFile(mainLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if errOpenFile != nil {
			return errOpenFile
		}

		fileCore := zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), level)
		cores = append(cores, fileCore)
	}

	combinedCore := zapcore.NewTee(cores...)
	log := zap.New(combinedCore, zap.AddCaller())

	l.SugaredLogger = log.Named(l.Name).Sugar()
	Log = &l

	return nil
}

// Named returns a new logger with the specified name ("service", "database", etc.)
func Named(name string) (*types.Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &types.Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		LogsPath:      Log.LogsPath,
		Name:          name,
	}, nil
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format("2006-01-02 15:04:05"))
}
