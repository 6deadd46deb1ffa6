package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var ErrSizeMismatch = errors.New("images differ in size")

// Denominator selects which image's visible pixels a coverage ratio is
// measured against.
type Denominator int

const (
	// DenominatorUser: what share of the user's ink lies on the reference.
	DenominatorUser Denominator = iota
	// DenominatorReference: what share of the reference the user covered.
	DenominatorReference
)

func (d Denominator) String() string {
	if d == DenominatorReference {
		return "reference"
	}
	return "user"
}

// DefaultAlphaThreshold is the alpha a pixel must exceed to count as ink.
const DefaultAlphaThreshold = 128

// OverlapCoverage counts pixels visible in both images and divides by the
// visible pixels of the image chosen by denom. The result is 0 when nothing
// matches or nothing is visible. Images of different sizes are rejected.
func OverlapCoverage(ctx context.Context, reference, user *image.NRGBA, alphaThreshold int, denom Denominator) (float64, error) {
	rs, us := reference.Bounds().Size(), user.Bounds().Size()
	if rs != us {
		return 0, fmt.Errorf("%w: reference %v, user %v", ErrSizeMismatch, rs, us)
	}

	var matching, visibleUser, visibleReference atomic.Int64
	rb, ub := reference.Bounds(), user.Bounds()
	workers := runtime.GOMAXPROCS(0)
	band := (rs.Y + workers - 1) / workers
	if band < 1 {
		band = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	for y0 := 0; y0 < rs.Y; y0 += band {
		y0 := y0
		y1 := min(y0+band, rs.Y)
		g.Go(func() error {
			var m, vu, vr int64
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for x := 0; x < rs.X; x++ {
					r := Visible(reference, rb.Min.X+x, rb.Min.Y+y, alphaThreshold)
					u := Visible(user, ub.Min.X+x, ub.Min.Y+y, alphaThreshold)
					if r {
						vr++
					}
					if u {
						vu++
						if r {
							m++
						}
					}
				}
			}
			matching.Add(m)
			visibleUser.Add(vu)
			visibleReference.Add(vr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := visibleUser.Load()
	if denom == DenominatorReference {
		total = visibleReference.Load()
	}
	if matching.Load() == 0 || total == 0 {
		return 0, nil
	}
	return float64(matching.Load()) / float64(total), nil
}
