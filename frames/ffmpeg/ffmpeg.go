// Package ffmpeg converts videos to raw I420 frame files for the composite
// renderer by running the ffmpeg command.
package ffmpeg

import (
	"bytes"
	"context"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
)

// Command is the ffmpeg executable.
var Command = `ffmpeg`

// Args returns the ffmpeg arguments for converting vidFilename into raw
// yuv420p frames of sizePixels at fps frames per second, written to out.
// extra output options are placed before the output format.
func Args(vidFilename, out string, sizePixels image.Point, fps int, extra ...string) []string {
	args := []string{
		`-i`, vidFilename,
		`-hide_banner`,
		`-loglevel`, `error`,
		`-nostdin`,
		`-y`,
		`-an`,
	}
	var filters []string
	if fps > 0 {
		filters = append(filters, `fps=`+strconv.Itoa(fps))
	}
	if sizePixels.X > 0 && sizePixels.Y > 0 {
		filters = append(filters, `scale=`+strconv.Itoa(sizePixels.X)+`:`+strconv.Itoa(sizePixels.Y))
	}
	if len(filters) > 0 {
		args = append(args, `-vf`, strings.Join(filters, `,`))
	}
	args = append(args, extra...)
	return append(args, `-pix_fmt`, `yuv420p`, `-f`, `rawvideo`, out)
}

// ExtractFrames writes the frames of vidFilename to out. With an empty out a
// file in a new temporary directory is used. The path written is returned.
func ExtractFrames(ctx context.Context, vidFilename, out string, sizePixels image.Point, fps int, extra ...string) (string, error) {
	if sizePixels.X <= 0 || sizePixels.Y <= 0 {
		return ``, errors.Kindf(errors.ErrConfig, `invalid frame size %dx%d`, sizePixels.X, sizePixels.Y)
	}
	path, err := exec.LookPath(Command)
	if err != nil {
		return ``, errors.New(err)
	}
	if len(out) == 0 {
		dir, err := os.MkdirTemp(``, consts.LibraryName+`_*`)
		if err != nil {
			return ``, errors.New(err)
		}
		name := filepath.Base(vidFilename)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		out = filepath.Join(dir, name+`_`+strconv.Itoa(sizePixels.X)+`x`+strconv.Itoa(sizePixels.Y)+`.yuv`)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, Args(vidFilename, out, sizePixels, fps, extra...)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); len(msg) > 0 {
			return ``, errors.WrapPrefix(err, msg, 0)
		}
		return ``, errors.New(err)
	}
	return out, nil
}
