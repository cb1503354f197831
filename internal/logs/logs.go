package logs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultFilePath = "./logs/uri-analyzer.log"

type Options struct {
	Level          string
	Output         string // stdout|stderr|file|both
	Format         string // json|console
	Component      string // added as "component" when set
	FilePath       string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
	FileCompress   bool
}

func New(level string) zerolog.Logger {
	return NewWithOptions(Options{Level: level, Output: "stdout"})
}

// NewWithOptions builds a zerolog logger writing to stdout, a rotated file
// or both. Console format only applies to the terminal writer.
func NewWithOptions(opt Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var term io.Writer
	switch opt.Output {
	case "", "stdout", "both":
		term = os.Stdout
	case "stderr":
		term = os.Stderr
	}
	if term != nil && opt.Format == "console" {
		term = zerolog.ConsoleWriter{Out: term, TimeFormat: time.RFC3339}
	}

	var writers []io.Writer
	if term != nil {
		writers = append(writers, term)
	}
	if opt.Output == "file" || opt.Output == "both" {
		writers = append(writers, fileWriter(opt))
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = os.Stdout
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(w).With().Timestamp()
	if opt.Component != "" {
		ctx = ctx.Str("component", opt.Component)
	}
	return ctx.Logger().Level(ParseLevel(opt.Level))
}

func fileWriter(opt Options) io.Writer {
	path := opt.FilePath
	if path == "" {
		path = defaultFilePath
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    max(1, opt.FileMaxSizeMB),
		MaxBackups: max(0, opt.FileMaxBackups),
		MaxAge:     max(0, opt.FileMaxAgeDays),
		Compress:   opt.FileCompress,
	}
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
