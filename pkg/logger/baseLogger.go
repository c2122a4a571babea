package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const componentField = "component"

// Config описывает вывод логов: уровень, формат и необязательный файл с ротацией.
type Config struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT" validate:"omitempty,oneof=text json"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
}

type BaseLogger struct {
	mu     sync.Mutex
	prefix string
	entry  *logrus.Logger
}

// NewLogger пишет в writer и дублирует в stderr.
func NewLogger(writer io.Writer, prefix string) *BaseLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	if writer != nil {
		l.SetOutput(io.MultiWriter(os.Stderr, writer))
	} else {
		l.SetOutput(os.Stderr)
	}
	return &BaseLogger{prefix: prefix, entry: l}
}

// NewFromConfig строит логгер по конфигурации. Если задан файл, вывод ротируется через lumberjack.
func NewFromConfig(cfg Config, prefix string) *BaseLogger {
	var writer io.Writer
	if cfg.File != "" {
		writer = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
	}
	l := NewLogger(writer, prefix)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.entry.SetLevel(level)

	if cfg.Format == "json" {
		l.entry.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	}
	return l
}

func (l *BaseLogger) fields() *logrus.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry.WithField(componentField, l.prefix)
}

func (l *BaseLogger) Log(format string, v ...interface{}) {
	l.fields().Info(fmt.Sprintf(format, v...))
}

func (l *BaseLogger) Debug(format string, v ...interface{}) {
	l.fields().Debug(fmt.Sprintf(format, v...))
}

func (l *BaseLogger) Warn(format string, v ...interface{}) {
	l.fields().Warn(fmt.Sprintf(format, v...))
}

func (l *BaseLogger) Error(format string, v ...interface{}) {
	l.fields().Error(fmt.Sprintf(format, v...))
}

var _ Logger = (*BaseLogger)(nil)

// WithPrefix возвращает логгер с тем же выводом и дополненным префиксом.
func (l *BaseLogger) WithPrefix(extraPrefix string) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := extraPrefix
	if l.prefix != "" {
		prefix = l.prefix + " " + extraPrefix
	}
	return &BaseLogger{
		entry:  l.entry,
		prefix: prefix,
	}
}

func (l *BaseLogger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
}

func (l *BaseLogger) SetWriter(writer io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry.SetOutput(writer)
}

func (l *BaseLogger) SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	l.entry.SetLevel(parsed)
}
