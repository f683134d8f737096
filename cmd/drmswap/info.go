//go:build linux

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/srlehn/drmswap/display"
	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/procextra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVarP(&infoAllModesFlag, `all`, `a`, false, `list all modes`)
}

var infoCmd = &cobra.Command{
	Use:   `info [device]`,
	Short: `list connectors and modes`,
	Long:  `list the connectors and modes of a DRM device and the processes holding it open`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := consts.DefaultDevice
		if len(args) > 0 {
			path = args[0]
		}
		run(func(context.Context) error { return printInfo(path) })
	},
}

var infoAllModesFlag bool

func printInfo(path string) error {
	info, err := display.Describe(path)
	if err != nil {
		return err
	}
	r := lipgloss.NewRenderer(os.Stdout)
	var (
		title    = r.NewStyle().Bold(true).Underline(true)
		dim      = r.NewStyle().Faint(true)
		ok       = r.NewStyle().Foreground(lipgloss.Color(`#5fd75f`))
		selected = r.NewStyle().Bold(true)
		block    = r.NewStyle().PaddingLeft(2)
	)

	var b strings.Builder
	fmt.Fprintln(&b, title.Render(info.Path), dim.Render(info.Driver+` `+info.Version))
	crtcs := make([]string, 0, len(info.Crtcs))
	for _, id := range info.Crtcs {
		crtcs = append(crtcs, strconv.FormatUint(uint64(id), 10))
	}
	fmt.Fprintln(&b, dim.Render(`crtcs `)+strings.Join(crtcs, ` `))

	for _, c := range info.Connectors {
		name := c.Name
		if c.Selected {
			name = selected.Render(name + ` *`)
		}
		state := dim.Render(`disconnected`)
		if c.Connected {
			state = ok.Render(`connected`)
		}
		var lines []string
		lines = append(lines, fmt.Sprintf(`%s %s %s`, name, dim.Render(`#`+strconv.FormatUint(uint64(c.ID), 10)), state))
		if len(c.Preferred) > 0 {
			lines = append(lines, block.Render(dim.Render(`mode `)+c.Preferred))
		}
		if infoAllModesFlag && len(c.Modes) > 0 {
			lines = append(lines, block.Render(dim.Render(`modes `)+strings.Join(c.Modes, ` `)))
		}
		fmt.Fprintln(&b, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	if holders, err := procextra.DeviceHolders(path); err == nil && len(holders) > 0 {
		fmt.Fprintln(&b, title.Render(`opened by`))
		for _, h := range holders {
			fmt.Fprintln(&b, block.Render(fmt.Sprintf(`%s %s`, h.Name, dim.Render(strconv.Itoa(h.PID)))))
		}
	}
	_, err = fmt.Fprint(os.Stdout, b.String())
	return err
}
