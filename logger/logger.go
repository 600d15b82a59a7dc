package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

/*
LogConfiguration describes how the logger returned by New is set up. Zero value
is a usable configuration: debug level console output to stderr.
*/
type LogConfiguration struct {
	Level           string `yaml:"defaultLevel"`
	Format          string `yaml:"format"`
	OutputPath      string `yaml:"outputPath"`
	TimeFormat      string `yaml:"timeFormat"`
	ShowCaller      bool   `yaml:"showCaller"`
	ShowGoroutineID bool   `yaml:"showGoroutineID"`
	// when set OutputPath is ignored
	Writer io.Writer `yaml:"-"`
}

// New creates a logger according to the configuration.
func New(cfg *LogConfiguration) (*zerolog.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log configuration is nil")
	}
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}
	out, err := cfg.writer()
	if err != nil {
		return nil, fmt.Errorf("creating log writer: %w", err)
	}

	var l zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case "", FormatConsole:
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:          out,
			NoColor:      !isTerminal(out),
			TimeFormat:   consoleTimeFormat(cfg.TimeFormat),
			FormatCaller: consoleFormatCallerLastTwoDirs,
		})
	case FormatJSON:
		l = zerolog.New(out)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	ctx := l.Level(lvl).With()
	if cfg.TimeFormat != "none" {
		ctx = ctx.Timestamp()
	}
	if cfg.ShowCaller {
		ctx = ctx.Caller()
	}
	l = ctx.Logger()
	if cfg.ShowGoroutineID {
		l = l.Hook(goRoutineIDHook{})
	}
	return &l, nil
}

func (cfg *LogConfiguration) writer() (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}
	switch strings.ToLower(cfg.OutputPath) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0700); err != nil {
			return nil, fmt.Errorf("creating directory for log file: %w", err)
		}
		return os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	}
}

func levelFromString(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.DebugLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

func consoleTimeFormat(format string) string {
	switch format {
	case "", "none":
		return time.StampMilli
	default:
		return format
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
