// Package logging builds the zap logger used for diagnostics on stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	gray   = "\033[90m"
	red    = "\033[91m"
	yellow = "\033[93m"
	white  = "\033[97m"
)

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Verbose forces debug level.
	Verbose bool
	// Output defaults to os.Stderr.
	Output io.Writer
	// Color enables ANSI colors. Nil means auto-detect from Output.
	Color *bool
}

// ParseLevel parses a log level string.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning", "":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.WarnLevel, fmt.Errorf("invalid log level: %s", s)
	}
}

func levelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return gray
	case zapcore.InfoLevel:
		return white
	case zapcore.WarnLevel:
		return yellow
	default:
		return red
	}
}

// consoleEncoder creates a compact console encoder: HH:MM:SS, one-letter
// level, message, fields.
func consoleEncoder(color bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.CallerKey = ""
	cfg.NameKey = ""

	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		ts := t.Format("15:04:05")
		if color {
			ts = dim + ts + reset
		}
		enc.AppendString(ts)
	}

	cfg.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		s := strings.ToUpper(level.String()[:1])
		if color {
			s = levelColor(level) + bold + s + reset
		}
		enc.AppendString(s)
	}

	return zapcore.NewConsoleEncoder(cfg)
}

// New creates a logger from opts. An invalid level is reported as an error
// alongside a usable logger at warn level.
func New(opts Options) (*zap.Logger, error) {
	level, levelErr := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	color := false
	if opts.Color != nil {
		color = *opts.Color
	} else if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	core := zapcore.NewCore(consoleEncoder(color), zapcore.AddSync(out), level)
	return zap.New(core), levelErr
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
