package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Init builds the process logger and installs it as the zerolog global.
// The dev API writes to stdout; the console passes stderr so log lines never mix with command output.
func Init(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	zerolog.SetGlobalLevel(ParseLevel(level))

	var l zerolog.Logger
	if strings.EqualFold(format, FormatJSON) {
		l = zerolog.New(out).With().Timestamp().Caller().Logger()
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}).With().Timestamp().Logger()
	}

	log.Logger = l
	return l
}

// ParseLevel maps a level name to zerolog. Unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
