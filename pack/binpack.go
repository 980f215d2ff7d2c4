package pack

import (
	"sort"

	"azul3d.org/engine/binpack"
)

// BinPacker is the default Packer, backed by azul3d's growing bin packer.
// Rects are fed to binpack largest side first; the result fits when the
// packed extent is within the bin.
type BinPacker struct{}

// scratch adapts one Pack call to binpack.Packable. It is owned by that
// call and never shares memory with the returned placements.
type scratch struct {
	rects  []Size
	order  []int
	places []Point
}

func (s *scratch) Len() int { return len(s.order) }

func (s *scratch) Size(n int) (width, height int) {
	r := s.rects[s.order[n]]
	return r.W, r.H
}

func (s *scratch) Place(n, x, y int) {
	s.places[s.order[n]] = Point{X: x, Y: y}
}

func (BinPacker) Pack(rects []Size, binW, binH int) ([]Point, bool) {
	s := &scratch{
		rects:  rects,
		order:  make([]int, len(rects)),
		places: make([]Point, len(rects)),
	}
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		ra, rb := rects[s.order[a]], rects[s.order[b]]
		return max(ra.W, ra.H) > max(rb.W, rb.H)
	})

	w, h := binpack.Pack(s)
	if w < 0 || h < 0 || w > binW || h > binH {
		return nil, false
	}
	return s.places, true
}
