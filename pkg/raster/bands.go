// Package raster models the band-level view of a Sentinel-2 scene: which
// bands a dataset carries, which of them the super-resolution model
// consumes, and the georeferencing profile of the produced image.
package raster

import (
	"fmt"
	"regexp"
	"strings"
)

// Sentinel2Bands is the ordered set of bands eligible for processing.
// B10 (cirrus) is never super-resolved and is deliberately absent.
var Sentinel2Bands = []string{
	"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B8A", "B9", "B11", "B12",
}

var wavelengthRe = regexp.MustCompile(`(.*?), central wavelength (\d+) nm`)

// NormalizeDescription rewrites a dataset band description into the short
// form used in output band metadata:
//
//	"B4, central wavelength 665 nm" -> "B4 (665 nm)"
//
// Descriptions in any other format pass through unchanged.
func NormalizeDescription(description string) string {
	m := wavelengthRe.FindStringSubmatch(description)
	if m != nil {
		return m[1] + " (" + m[2] + " nm)"
	}
	return description
}

// ShortName extracts the band name from a normalized description.
func ShortName(description string) string {
	if i := strings.Index(description, ","); i >= 0 {
		return description[:i]
	}
	if i := strings.Index(description, " "); i >= 0 {
		return description[:i]
	}
	if len(description) > 3 {
		return description[:3]
	}
	return description
}

// Selection is the validated subset of a dataset's bands that take part in
// a run: band names, their zero-based indices in the source dataset, and
// the normalized description per band.
type Selection struct {
	Bands        []string
	Indices      []int
	Descriptions map[string]string
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s.Bands) == 0
}

// SelectBands walks a dataset's band descriptions in order and keeps the
// ones naming a Sentinel-2 band, each band at most once.
func SelectBands(descriptions []string) Selection {
	remaining := make(map[string]bool, len(Sentinel2Bands))
	for _, b := range Sentinel2Bands {
		remaining[b] = true
	}

	sel := Selection{Descriptions: make(map[string]string)}
	for i, raw := range descriptions {
		desc := NormalizeDescription(raw)
		name := ShortName(desc)
		if !remaining[name] {
			continue
		}
		delete(remaining, name)
		sel.Bands = append(sel.Bands, name)
		sel.Indices = append(sel.Indices, i)
		sel.Descriptions[name] = desc
	}
	return sel
}

// BandPlan is the complete band layout of one run.
type BandPlan struct {
	B10 Selection // native 10 m bands
	B20 Selection // 20 m bands to be super-resolved
	B60 Selection // 60 m bands to be super-resolved
}

// SuperResolved returns the output band order: 20 m bands first, then
// 60 m, matching the concatenation the model performs.
func (p BandPlan) SuperResolved() []string {
	out := make([]string, 0, len(p.B20.Bands)+len(p.B60.Bands))
	out = append(out, p.B20.Bands...)
	out = append(out, p.B60.Bands...)
	return out
}

// AllDescriptions merges the per-resolution description maps.
func (p BandPlan) AllDescriptions() map[string]string {
	out := make(map[string]string)
	for _, sel := range []Selection{p.B10, p.B20, p.B60} {
		for k, v := range sel.Descriptions {
			out[k] = v
		}
	}
	return out
}

// Validate checks that every resolution contributes at least one band;
// without all three there is nothing to super-resolve.
func (p BandPlan) Validate() error {
	if p.B10.Empty() || p.B20.Empty() || p.B60.Empty() {
		return fmt.Errorf("scene is missing bands at one or more resolutions, nothing to super-resolve")
	}
	return nil
}
