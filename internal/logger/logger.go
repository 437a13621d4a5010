// Package logger configures logrus for the whole process: console plus a
// rotating file, and adapters for GORM and the fiber request logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"

	"quickloan/internal/config"
)

// Setup initializes logrus with a rotating file sink.
func Setup(cfg config.LogConfig, production bool) {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
	}
	logrus.SetOutput(out)

	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// GormLogger returns a GORM logger backed by the standard logrus logger.
func GormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	if logrus.GetLevel() >= logrus.DebugLevel {
		level = gormlogger.Info
	}
	return gormlogger.New(
		logrus.StandardLogger(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Writer is used by the HTTP access log middleware.
func Writer() io.Writer {
	return logrus.StandardLogger().WriterLevel(logrus.InfoLevel)
}
