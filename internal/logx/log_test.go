package logx_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
)

func TestThrottle(t *testing.T) {
	var buf bytes.Buffer
	prov := logx.Prov(logx.NewTextLogger(&buf, slog.LevelDebug))
	th := logx.Throttle{Interval: time.Second}
	start := time.Unix(100, 0)
	for i := 0; i < 5; i++ {
		th.Debug(`frame`, prov, start.Add(time.Duration(i)*300*time.Millisecond), `n`, i)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `n=0`)
	assert.Contains(t, lines[1], `n=4`)
	assert.Contains(t, lines[1], `dropped=3`)
}

func TestIsErrSplitsJoined(t *testing.T) {
	var buf bytes.Buffer
	prov := logx.Prov(logx.NewTextLogger(&buf, slog.LevelInfo))
	err := errors.Join(errors.New(`first`), errors.Kindf(errors.ErrConfig, `second`))
	assert.True(t, logx.IsErr(err, prov, slog.LevelError))
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "\n"), out)
	assert.Contains(t, out, `first`)
	assert.Contains(t, out, `display configuration error: second`)

	assert.False(t, logx.IsErr(nil, prov, slog.LevelError))
	assert.True(t, logx.IsErr(err, logx.Discard, slog.LevelError))
}
