// Package all registers every renderer.
package all

import (
	_ "github.com/srlehn/drmswap/render/composite"
	_ "github.com/srlehn/drmswap/render/raster"
	_ "github.com/srlehn/drmswap/render/solid"
)
