package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging installs the default go-ethereum logger described by c. The
// returned closer flushes the log file, if any.
func SetupLogging(c LogConfig) (io.Closer, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var (
		out      io.Writer = os.Stderr
		useColor           = false
		closer   io.Closer = nopCloser{}
	)

	if c.File != "" {
		lj := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		}
		out, closer = lj, lj
	} else if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		out = colorable.NewColorableStderr()
		useColor = true
	}

	var handler slog.Handler = log.NewTerminalHandlerWithLevel(out, level, useColor)
	if c.JSON {
		handler = log.JSONHandlerWithLevel(out, level)
	}

	log.SetDefault(log.NewLogger(handler))

	return closer, nil
}

// ParseLevel maps a level name to its go-ethereum slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "trace", "trce":
		return log.LevelTrace, nil
	case "debug", "dbug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error", "eror":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
