package main

import (
	"context"
	"image"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/srlehn/drmswap"
	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
	"github.com/srlehn/drmswap/internal/procextra"
	"github.com/srlehn/drmswap/quit"
	"github.com/srlehn/drmswap/render"
	_ "github.com/srlehn/drmswap/render/all"
	"github.com/srlehn/drmswap/resize"
)

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringVarP(&runDeviceFlag, `device`, `d`, consts.DefaultDevice, `DRM device`)
	f.IntVarP(&runBuffersFlag, `buffers`, `b`, drmswap.DefaultBufferCount, `scanout buffers (1 or 2)`)
	f.StringVarP(&runRendererFlag, `renderer`, `r`, consts.RendererSolid, `renderer (`+strings.Join(render.Names(), `, `)+`)`)
	f.StringVar(&runFramesFlag, `frames`, ``, `raw yuv420p frame file for the composite renderer`)
	f.StringVar(&runFrameSizeFlag, `frame-size`, ``, `size of the raw frames, <w>x<h>`)
	f.StringVar(&runResizerFlag, `resizer`, resize.Default, `frame scaler (`+strings.Join(resize.Names(), `, `)+`)`)
	f.BoolVar(&runSimFlag, `sim`, false, `present to a simulated display instead of the device`)
	f.StringVar(&runConnectorFlag, `connector`, ``, `connector name or id, e.g. HDMI-A-1`)
	f.StringVar(&runModeFlag, `mode`, ``, `display mode, <w>x<h>[@<refresh>]`)
	f.BoolVar(&runStatsFlag, `stats`, false, `print frame statistics`)
	f.DurationVar(&runDrainFlag, `drain-timeout`, 0, `wait for the last flip on exit at most this long (0 waits until it completed)`)
}

var runCmd = &cobra.Command{
	Use:   `run`,
	Short: `show rendered frames until interrupted`,
	Long:  `show rendered frames until a key is pressed or the process is interrupted`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		run(runFunc)
	},
}

var (
	runDeviceFlag    string
	runBuffersFlag   int
	runRendererFlag  string
	runFramesFlag    string
	runFrameSizeFlag string
	runResizerFlag   string
	runSimFlag       bool
	runConnectorFlag string
	runModeFlag      string
	runStatsFlag     bool
	runDrainFlag     time.Duration
)

func runFunc(ctx context.Context) error {
	opts := drmswap.Options{
		drmswap.SetBufferCount(runBuffersFlag),
		drmswap.SetDrainTimeout(runDrainFlag),
	}
	lvl, err := logLevel()
	if err != nil {
		return err
	}
	if len(logFileFlag) > 0 {
		opts = append(opts, drmswap.SetLogFile(logFileFlag, lvl))
	} else if !silentFlag {
		opts = append(opts, drmswap.SetSLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}), true))
	}

	spec, err := display.ParseModeSpec(runModeFlag)
	if err != nil {
		return err
	}
	dopts := display.Options{Connector: runConnectorFlag, Mode: spec}
	if runSimFlag {
		opts = append(opts, drmswap.SetSimulation(dopts))
	} else {
		opts = append(opts, drmswap.SetDevice(runDeviceFlag, dopts), drmswap.SetConsoleGraphics(os.Stdin))
		if servers, err := procextra.DisplayServers(); err == nil && len(servers) > 0 {
			logx.Warn(`display server running, mode setting may be refused`, stderrLogger(), `process`, servers[0].Name, `pid`, servers[0].PID)
		}
	}

	rendOpts, closeFrames, err := rendererOptions()
	if err != nil {
		return err
	}
	defer closeFrames()
	opts = append(opts, drmswap.SetRendererName(runRendererFlag, rendOpts))

	sig, err := quit.Signal()
	if err != nil {
		return err
	}
	defer sig.Close()
	srcs := []flip.Waitable{sig}
	if in, err := quit.NewInput(os.Stdin); err == nil {
		defer in.Close()
		srcs = append(srcs, in)
	} else {
		logx.Debug(`keyboard quit unavailable`, stderrLogger(), `err`, err)
	}
	opts = append(opts, drmswap.SetQuitSources(srcs...))

	var status *statusLine
	if runStatsFlag {
		// mode is known after initialization
		opts = append(opts, drmswap.SetReporter(func(st flip.Stats) {
			if status != nil {
				status.Report(st)
			}
		}))
	}

	s, err := drmswap.Initialize(ctx, opts)
	if err != nil {
		return err
	}
	if runStatsFlag {
		status = newStatusLine(os.Stderr, s.Target().Mode())
		defer status.Finish()
	}
	return s.Run(ctx)
}

// rendererOptions opens the frame file of the composite renderer.
func rendererOptions() (render.Options, func(), error) {
	var opts render.Options
	noop := func() {}
	if len(runFramesFlag) == 0 {
		return opts, noop, nil
	}
	size, err := parseSize(runFrameSizeFlag)
	if err != nil {
		return opts, noop, err
	}
	resizer, err := resize.New(runResizerFlag)
	if err != nil {
		return opts, noop, err
	}
	f, err := os.Open(runFramesFlag)
	if err != nil {
		return opts, noop, errors.Kind(errors.ErrConfig, err)
	}
	opts.Frames = f
	opts.FrameSize = size
	opts.Resizer = resizer
	return opts, func() { _ = f.Close() }, nil
}

func parseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), `x`)
	if !ok {
		return image.Point{}, errors.Kindf(errors.ErrConfig, `size %q not "<w>x<h>"`, s)
	}
	x, errW := strconv.Atoi(w)
	y, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || x <= 0 || y <= 0 {
		return image.Point{}, errors.Kindf(errors.ErrConfig, `size %q not "<w>x<h>"`, s)
	}
	return image.Pt(x, y), nil
}
