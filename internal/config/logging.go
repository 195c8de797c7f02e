package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the operational logger. With a log file configured
// the output rotates at 10 MB keeping three generations; otherwise it
// goes to stderr. The returned closer is a no-op for stderr.
func NewLogger(cfg *Config, prefix string) (*log.Logger, io.Closer) {
	if cfg == nil || cfg.LogFile == "" {
		return log.New(os.Stderr, prefix, log.LstdFlags), nopCloser{}
	}

	if dir := filepath.Dir(cfg.LogFile); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}
	w := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return log.New(w, prefix, log.LstdFlags), w
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
