// Package resize selects one of the frame scaling backends by name.
package resize

import (
	"sort"

	"github.com/iancoleman/strcase"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/render"
	"github.com/srlehn/drmswap/resize/bild"
	"github.com/srlehn/drmswap/resize/caire"
	"github.com/srlehn/drmswap/resize/gift"
	"github.com/srlehn/drmswap/resize/imaging"
	"github.com/srlehn/drmswap/resize/nfnt"
	"github.com/srlehn/drmswap/resize/rdefault"
	"github.com/srlehn/drmswap/resize/rez"
	"github.com/srlehn/drmswap/resize/xdraw"
)

// Default is the backend used for an empty name.
const Default = `default`

var backends = map[string]func() render.Resizer{
	Default:       func() render.Resizer { return rdefault.New() },
	`bild`:        func() render.Resizer { return &bild.Resizer{} },
	`caire`:       func() render.Resizer { return &caire.Resizer{} },
	`gift`:        func() render.Resizer { return &gift.Resizer{} },
	`imaging`:     func() render.Resizer { return &imaging.Resizer{} },
	`nfnt`:        func() render.Resizer { return nfnt.New() },
	`rez`:         func() render.Resizer { return &rez.Resizer{} },
	`nearest`:     xdraw.NearestNeighbor,
	`bilinear`:    xdraw.BiLinear,
	`catmull-rom`: xdraw.CatmullRom,
}

// New returns a fresh resizer. Resizers keep per-size state and must not be
// shared between renderers. Names are matched in kebab case, "CatmullRom"
// selects "catmull-rom".
func New(name string) (render.Resizer, error) {
	if len(name) == 0 {
		name = Default
	}
	name = strcase.ToKebab(name)
	f, ok := backends[name]
	if !ok {
		return nil, errors.Kindf(errors.ErrConfig, `unknown resizer %q (available: %v)`, name, Names())
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
