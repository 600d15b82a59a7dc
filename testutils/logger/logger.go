package logger

import (
	"os"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
)

/*
New returns logger for test t on debug level. Output goes through t.Log so
it is shown only for failing tests (or with -v).
*/
func New(t testing.TB) *zerolog.Logger {
	return NewLvl(t, zerolog.DebugLevel)
}

// NewLvl returns logger for test t on given level.
func NewLvl(t testing.TB, level zerolog.Level) *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{
		Out:        testLogWriter{t},
		NoColor:    !colorsEnabled(),
		TimeFormat: "15:04:05.0000",
	}).Level(level).With().Timestamp().Logger()
	return &l
}

/*
colorsEnabled returns false when AH_TEST_LOG_NO_COLORS env var is set to true.
Colors are on by default, some IDEs do not render them.
*/
func colorsEnabled() bool {
	s, ok := os.LookupEnv("AH_TEST_LOG_NO_COLORS")
	if !ok {
		return true
	}
	noColors, err := strconv.ParseBool(s)
	return err != nil || !noColors
}

type testLogWriter struct {
	t testing.TB
}

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	// ConsoleWriter terminates lines, t.Log adds its own newline
	s := string(p)
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	w.t.Log(s)
	return len(p), nil
}
