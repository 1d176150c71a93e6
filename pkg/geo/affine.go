// Package geo provides the georeferencing primitives a block run needs:
// affine geotransforms, pixel windows aligned to the 60 m grid, and the
// mapping from area-of-interest parameters to those windows.
package geo

import (
	"encoding/json"
	"fmt"
)

// Affine is a six-coefficient geotransform mapping pixel space to
// projected coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Apply maps a pixel location to projected coordinates.
func (t Affine) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Invert maps projected coordinates back to pixel space. Offsets are
// subtracted first, so the returned transform expects (x-C, y-F) inputs
// applied via InvertPoint; callers normally use InvertPoint directly.
func (t Affine) InvertPoint(x, y float64) (col, row float64, err error) {
	det := t.A*t.E - t.D*t.B
	if det == 0 {
		return 0, 0, fmt.Errorf("geotransform is not invertible")
	}
	xp := x - t.C
	yp := y - t.F
	detInv := 1.0 / det
	col = (t.E*xp - t.B*yp) * detInv
	row = (-t.D*xp + t.A*yp) * detInv
	return col, row, nil
}

// Translate composes the transform with a pixel-space translation, the
// operation used to georeference a window cut out of a larger scene.
func (t Affine) Translate(cols, rows float64) Affine {
	out := t
	out.C = t.A*cols + t.B*rows + t.C
	out.F = t.D*cols + t.E*rows + t.F
	return out
}

// MarshalJSON encodes the transform as the [A,B,C,D,E,F] array used in
// profile documents.
func (t Affine) MarshalJSON() ([]byte, error) {
	return json.Marshal([6]float64{t.A, t.B, t.C, t.D, t.E, t.F})
}

func (t *Affine) UnmarshalJSON(data []byte) error {
	var coeffs [6]float64
	if err := json.Unmarshal(data, &coeffs); err != nil {
		return fmt.Errorf("geotransform must be a six-element array: %w", err)
	}
	t.A, t.B, t.C, t.D, t.E, t.F = coeffs[0], coeffs[1], coeffs[2], coeffs[3], coeffs[4], coeffs[5]
	return nil
}

// FromGDAL converts a GDAL-ordered geotransform
// [originX, pxWidth, rowRot, originY, colRot, pxHeight].
func FromGDAL(gt [6]float64) Affine {
	return Affine{A: gt[1], B: gt[2], C: gt[0], D: gt[4], E: gt[5], F: gt[3]}
}
