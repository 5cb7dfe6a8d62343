// Package debug builds the console logger used by the CLI commands.
package debug

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

func callerSkipFrameCount(e *zerolog.Event) int {
	// zerolog keeps the skip count unexported
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")

	if field.IsValid() && field.CanInt() {
		return int(field.Int())
	}

	return 0
}

// TimeHook stamps each event with a millisecond precision time.
type TimeHook struct {
	Format string
}

func (t TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		format = "2006-01-02T15:04:05.000Z07:00"
	}
	e.Str("time", time.Now().Format(format))
}

// CallerHook adds a short pkg:file:line caller field.
type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(callerSkipFrameCount(e) + 3)
	if !ok {
		return
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return
	}

	pkg, _ := PackageAndFunc(fn.Name())

	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

// PackageAndFunc splits a runtime function name such as
// "github.com/walteh/tmls/pkg/lsp.(*Server).Hover" into its package path and
// function part.
func PackageAndFunc(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(name[lastSlash:], '.') + lastSlash
	if firstDot < lastSlash {
		return name, ""
	}

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	return pkg, function
}

func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")

		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ParseLevel accepts zerolog level names. The empty string is info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, errors.Errorf("parsing log level %q: %w", s, err)
	}
	return lvl, nil
}

// NewConsoleLogger writes human readable logs to w with time and caller
// fields. Color follows colorize.
func NewConsoleLogger(w io.Writer, level zerolog.Level, colorize bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !colorize,
		PartsOrder: []string{zerolog.LevelFieldName, "caller", zerolog.MessageFieldName},
		FieldsExclude: []string{
			"caller", "time",
		},
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			s = strings.ToUpper(fmt.Sprintf("%-5s", s))
			if !colorize {
				return s
			}
			return levelColor(s).Sprint(s)
		},
	}

	return zerolog.New(out).
		Level(level).
		Hook(TimeHook{}).
		Hook(CallerHook{WithColor: colorize})
}

func levelColor(level string) *color.Color {
	switch strings.TrimSpace(level) {
	case "TRACE":
		return color.New(color.Faint)
	case "DEBUG":
		return color.New(color.FgMagenta)
	case "INFO":
		return color.New(color.FgGreen)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR", "FATAL", "PANIC":
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.Reset)
}
