package drmswap

import "github.com/srlehn/drmswap/display"

func openDevice(path string, opts display.Options) (display.Target, error) {
	t, err := display.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return t, nil
}
