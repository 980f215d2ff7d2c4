package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"chimatools/sheet"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(false)
	t.SetColumnSeparator("")
	t.SetCenterSeparator("")
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

// inspect prints the atlas shape, the sprite table with UV transforms and
// the animation table of the sheet at path.
func inspect(w io.Writer, path string, flip sheet.Flip) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "error inspecting %s", path)
		}
	}()

	s, err := sheet.Load(path)
	if err != nil {
		return err
	}
	defer s.Release()

	a := s.Atlas
	fmt.Fprintf(w, "atlas %dx%d, %d channels, %v\n", a.Width, a.Height, a.Channels, a.Depth)
	fmt.Fprintf(w, "%d sprites, %d animations\n\n", len(s.Sprites), len(s.Animations))

	t := newTable(w, "#", "NAME", "X", "Y", "W", "H", "DURATION", "U", "V")
	for i, sp := range s.Sprites {
		uv := s.UV(i, flip)
		t.Append([]string{
			strconv.Itoa(i), sp.Name,
			u32(sp.X), u32(sp.Y), u32(sp.Width), u32(sp.Height), u32(sp.Duration),
			fmt.Sprintf("%.6g*u%+.6g", uv.XLin, uv.XCon),
			fmt.Sprintf("%.6g*v%+.6g", uv.YLin, uv.YCon),
		})
	}
	t.Render()
	if len(s.Animations) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	t = newTable(w, "ANIMATION", "START", "COUNT")
	for _, an := range s.Animations {
		t.Append([]string{an.Name, u32(an.Start), u32(an.Count)})
	}
	t.Render()
	return nil
}
