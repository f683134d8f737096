package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rkoesters/xdg/basedir"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/shell"

	"github.com/srlehn/drmswap/frames/ffmpeg"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
)

func init() {
	rootCmd.AddCommand(extractCmd)
	f := extractCmd.Flags()
	f.StringVar(&extractSizeFlag, `size`, ``, `frame size, <w>x<h>`)
	f.IntVar(&extractFPSFlag, `fps`, 0, `frame rate, 0 keeps the source rate`)
	f.StringVarP(&extractOutFlag, `out`, `o`, ``, `output file (default in the user cache directory)`)
	f.StringVar(&extractArgsFlag, `ffmpeg-args`, ``, `extra ffmpeg output arguments, shell quoted`)
}

var extractCmd = &cobra.Command{
	Use:   `extract <video>`,
	Short: `convert a video to raw frames`,
	Long:  `convert a video with ffmpeg to a raw yuv420p frame file for the composite renderer`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(func(ctx context.Context) error { return extract(ctx, args[0]) })
	},
}

var (
	extractSizeFlag string
	extractFPSFlag  int
	extractOutFlag  string
	extractArgsFlag string
)

func extract(ctx context.Context, video string) error {
	size, err := parseSize(extractSizeFlag)
	if err != nil {
		return err
	}
	extra, err := shell.Fields(extractArgsFlag, nil)
	if err != nil {
		return errors.Kind(errors.ErrConfig, err)
	}
	out := extractOutFlag
	if len(out) == 0 {
		dir := filepath.Join(basedir.CacheHome, consts.LibraryName)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.New(err)
		}
		name := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
		out = filepath.Join(dir, fmt.Sprintf(`%s_%dx%d.yuv`, name, size.X, size.Y))
	}
	path, err := logx.TimeIt2(func() (string, error) {
		return ffmpeg.ExtractFrames(ctx, video, out, size, extractFPSFlag, extra...)
	}, `extract frames`, stderrLogger(), `video`, video)
	if err != nil {
		return err
	}
	fmt.Println(path)
	fmt.Fprintf(os.Stderr, "%s run --renderer %s --frames %s --frame-size %dx%d\n",
		rootCmd.Name(), consts.RendererComposite, path, size.X, size.Y)
	return nil
}
