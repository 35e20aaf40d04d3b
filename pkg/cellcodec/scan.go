package cellcodec

import (
	"context"

	"github.com/sandfall/strata/pkg/world"
)

// Scan sweeps the whole grid for embedded presets. It decodes once per
// header cell rather than once per marker cell, so a grid full of large
// embeddings costs one decode each. Damaged embeddings are collected as
// errors instead of aborting the sweep.
func Scan(ctx context.Context, w world.World) ([]*Result, []error) {
	d := &Decoder{World: w}
	gw, gh := w.Size()

	var (
		results []*Result
		errs    []error
	)
	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			c, ok := w.Get(x, y)
			if !ok || c.Ctype != Magic || c.Flags&FlagHeader == 0 {
				continue
			}
			res, err := d.Decode(ctx, x, y)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if res != nil {
				results = append(results, res)
			}
		}
	}
	return results, errs
}
