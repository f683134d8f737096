// Package logx routes log records to an optional *slog.Logger obtained from
// a LoggerProvider. A nil logger disables logging.
package logx

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/srlehn/drmswap/internal/errors"
)

func Log(msg string, logger *slog.Logger, lvl slog.Level, skip int, args ...any) {
	if logger == nil || !logger.Enabled(context.Background(), lvl) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	r := slog.NewRecord(time.Now(), lvl, msg, pcs[0])
	r.Add(args...)
	_ = logger.Handler().Handle(context.Background(), r)
}

func Debug(msg string, loggerProv LoggerProvider, args ...any) {
	if loggerProv == nil {
		return
	}
	Log(msg, loggerProv.Logger(), slog.LevelDebug, 3, args...)
}
func Info(msg string, loggerProv LoggerProvider, args ...any) {
	if loggerProv == nil {
		return
	}
	Log(msg, loggerProv.Logger(), slog.LevelInfo, 3, args...)
}
func Warn(msg string, loggerProv LoggerProvider, args ...any) {
	if loggerProv == nil {
		return
	}
	Log(msg, loggerProv.Logger(), slog.LevelWarn, 3, args...)
}
func Error(msg string, loggerProv LoggerProvider, args ...any) {
	if loggerProv == nil {
		return
	}
	Log(msg, loggerProv.Logger(), slog.LevelError, 3, args...)
}

// IsErr logs every member of a joined err at lvl and reports whether err is
// non-nil.
func IsErr(err error, loggerProv LoggerProvider, lvl slog.Level, args ...any) bool {
	if err == nil {
		return false
	}
	if loggerProv == nil {
		return true
	}
	logger := loggerProv.Logger()
	for _, e := range errors.Split(err) {
		Log(e.Error(), logger, lvl, 3, args...)
	}
	return true
}

func TimeIt(fn func() error, msg string, loggerProv LoggerProvider, args ...any) error {
	if fn == nil {
		return errors.New(`provided nil func`)
	}
	if len(msg) == 0 {
		msg = `duration measurement for function`
	}
	start := time.Now()
	err := fn()
	Debug(msg, loggerProv, append([]any{`duration`, time.Since(start)}, args...)...)
	return err
}

func TimeIt2[T any](fn func() (T, error), msg string, loggerProv LoggerProvider, args ...any) (T, error) {
	var ret T
	if fn == nil {
		return ret, errors.New(`provided nil func`)
	}
	if len(msg) == 0 {
		msg = `duration measurement for function`
	}
	start := time.Now()
	ret, err := fn()
	Debug(msg, loggerProv, append([]any{`duration`, time.Since(start)}, args...)...)
	return ret, err
}

type LoggerProvider interface{ Logger() *slog.Logger }

var _ LoggerProvider = (*loggerProvider)(nil)

type loggerProvider struct{ logger *slog.Logger }

func (p *loggerProvider) Logger() *slog.Logger {
	if p == nil {
		return nil
	}
	return p.logger
}

func Prov(logger *slog.Logger) LoggerProvider { return &loggerProvider{logger: logger} }

// Throttle lets at most one record per Interval pass. It is meant for
// per-frame logs and is not safe for concurrent use.
type Throttle struct {
	Interval time.Duration
	last     time.Time
	dropped  int
}

// Debug logs like the package level Debug if the interval since the last
// passed record has elapsed at now. The number of suppressed records is added
// as "dropped".
func (t *Throttle) Debug(msg string, loggerProv LoggerProvider, now time.Time, args ...any) {
	if t == nil || loggerProv == nil {
		return
	}
	logger := loggerProv.Logger()
	if logger == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		t.dropped++
		return
	}
	t.last = now
	args = append(args, `dropped`, t.dropped)
	t.dropped = 0
	Log(msg, logger, slog.LevelDebug, 3, args...)
}

// Discard is a provider without a logger. All calls through it are no-ops.
var Discard LoggerProvider = Prov(nil)

// NewTextLogger returns a text logger writing to w at lvl.
func NewTextLogger(w io.Writer, lvl slog.Level) *slog.Logger {
	if w == nil {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: lvl <= slog.LevelDebug, Level: lvl}))
}
