// Package pack places sprite rectangles inside a square atlas, growing the
// atlas until every rectangle fits.
package pack

import (
	"github.com/chewxy/math32"

	"chimatools/chima"
)

// MaxAtlasSize is the largest atlas side ever attempted.
const MaxAtlasSize = 16384

// Size is the extent of one rectangle to place, padding included.
type Size struct {
	W, H int
}

// Point is the top-left corner assigned to a rectangle.
type Point struct {
	X, Y int
}

// Packer is a rectangle bin packer. Pack returns one placement per rect, in
// input order, or false when the rects do not fit a binW×binH bin. It must
// be deterministic for equal input.
type Packer interface {
	Pack(rects []Size, binW, binH int) ([]Point, bool)
}

// Options controls the atlas growth loop.
type Options struct {
	// Initial is the first square side tried.
	Initial int
	// Growth multiplies the side after every failed attempt.
	Growth float32
	// Max is the largest side tried before giving up.
	Max int
}

// DefaultOptions returns a 512 initial side doubling up to MaxAtlasSize.
func DefaultOptions() Options {
	return Options{
		Initial: 512,
		Growth:  2,
		Max:     MaxAtlasSize,
	}
}

// Result is a successful packing.
type Result struct {
	// Size is the side of the square atlas the rects were packed into.
	Size int
	// Places holds one corner per input rect, in input order.
	Places []Point
	// Attempts lists every side tried, the last one being Size.
	Attempts []int
}

func (o Options) validate(op string) error {
	switch {
	case o.Initial < 1:
		return chima.Errorf(chima.InvalidArgument, op, "initial atlas size %d", o.Initial)
	case o.Growth < 1 || math32.IsNaN(o.Growth) || math32.IsInf(o.Growth, 0):
		return chima.Errorf(chima.InvalidArgument, op, "atlas growth factor %v", o.Growth)
	case o.Max < 1 || o.Max > MaxAtlasSize:
		return chima.Errorf(chima.InvalidArgument, op, "maximum atlas size %d", o.Max)
	}
	return nil
}

// next grows side by the factor, always by at least one pixel so the
// attempted sizes strictly increase.
func (o Options) next(side int) int {
	n := int(math32.Round(float32(side) * o.Growth))
	if n <= side {
		n = side + 1
	}
	return n
}

// Pack runs p at increasing square sizes, starting at opts.Initial, until the
// rects fit or the size passes opts.Max.
func Pack(p Packer, rects []Size, opts Options) (*Result, error) {
	const op = "pack.Pack"
	if p == nil {
		return nil, chima.Errorf(chima.InvalidArgument, op, "nil packer")
	}
	if len(rects) == 0 {
		return nil, chima.Errorf(chima.InvalidArgument, op, "no rectangles to pack")
	}
	if err := opts.validate(op); err != nil {
		return nil, err
	}
	for i, r := range rects {
		if r.W <= 0 || r.H <= 0 {
			return nil, chima.Errorf(chima.InvalidArgument, op, "rect %d has size %dx%d", i, r.W, r.H)
		}
	}

	var attempts []int
	for side := opts.Initial; side <= opts.Max; side = opts.next(side) {
		attempts = append(attempts, side)
		places, ok := p.Pack(rects, side, side)
		if !ok {
			continue
		}
		if len(places) != len(rects) {
			panic("pack: packer returned a placement count different from the rect count")
		}
		return &Result{Size: side, Places: places, Attempts: attempts}, nil
	}
	return nil, chima.Errorf(chima.PackingFailed, op,
		"%d rects do not fit in %dx%d (tried %v)", len(rects), opts.Max, opts.Max, attempts)
}
