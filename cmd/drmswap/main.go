package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
)

var rootCmd = &cobra.Command{
	Use:              filepath.Base(os.Args[0]),
	Short:            "drmswap shows rendered frames on a DRM/KMS display",
	Long:             "drmswap shows continuously rendered frames on a Linux DRM/KMS display, flipping buffers at vertical blank",
	SilenceUsage:     true,
	SilenceErrors:    true,
	TraverseChildren: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().BoolVar(&debugFlag, `debug`, false, `print error stacks`)
	rootCmd.PersistentFlags().BoolVarP(&silentFlag, `silent`, `s`, false, `silence errors`)
	rootCmd.PersistentFlags().StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, `log-level`, `info`, `log level (debug, info, warn, error)`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	debugFlag    bool
	silentFlag   bool
	logFileFlag  string
	logLevelFlag string
)

// logLevel parses --log-level. --debug implies debug logs.
func logLevel() (slog.Level, error) {
	if debugFlag {
		return slog.LevelDebug, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevelFlag)); err != nil {
		return 0, errors.Kind(errors.ErrConfig, err)
	}
	return lvl, nil
}

// stderrLogger is used by commands without a session.
func stderrLogger() logx.LoggerProvider {
	if silentFlag {
		return logx.Discard
	}
	lvl, err := logLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return logx.Prov(logx.NewTextLogger(os.Stderr, lvl))
}

func run(fn func(ctx context.Context) error) {
	var exitCode int
	defer func() {
		if r := recover(); r != nil {
			exitCode = 1
			if !silentFlag {
				if stackFramer, ok := r.(interface{ ErrorStack() string }); ok {
					fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
				} else {
					fmt.Fprintln(os.Stderr, r)
					debug.PrintStack()
				}
			}
		}
		os.Exit(exitCode)
	}()
	if fn == nil {
		panic(errors.NilParam())
	}
	if err := fn(context.Background()); err != nil {
		exitCode = 1
		if !silentFlag {
			if stackFramer, ok := err.(interface{ ErrorStack() string }); debugFlag && ok {
				fmt.Fprintln(os.Stderr, "\n"+stackFramer.ErrorStack())
			} else {
				fmt.Fprintln(os.Stderr, "\n"+err.Error())
			}
		}
	}
}
