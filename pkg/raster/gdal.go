package raster

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"blockforge/pkg/geo"
	"blockforge/pkg/runner"
)

// Resolution keys of the SAFE subdatasets the block consumes.
const (
	Res10m = "10m"
	Res20m = "20m"
	Res60m = "60m"
)

// Dataset is the description of one opened subdataset, as reported by
// gdalinfo. Raster IO itself stays in the inference process; the runner
// only needs geometry and band metadata.
type Dataset struct {
	Name         string
	Width        int
	Height       int
	Transform    geo.Affine
	Descriptions []string
	DType        string
	CRS          string
}

// gdalinfo -json output, reduced to the fields used here.
type gdalInfo struct {
	Size         []int       `json:"size"`
	GeoTransform [6]float64  `json:"geoTransform"`
	Bands        []gdalBand  `json:"bands"`
	Metadata     gdalMeta    `json:"metadata"`
	CoordSystem  gdalCoordCS `json:"coordinateSystem"`
}

type gdalBand struct {
	Band        int    `json:"band"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type gdalMeta struct {
	Subdatasets map[string]string `json:"SUBDATASETS"`
}

type gdalCoordCS struct {
	WKT string `json:"wkt"`
}

// Subdatasets lists the per-resolution subdataset names of a SAFE product,
// keyed by Res10m/Res20m/Res60m. The product path is the MTD*.xml metadata
// file of the scene.
func Subdatasets(ctx context.Context, cr runner.CommandRunner, productPath string) (map[string]string, error) {
	info, err := runGdalinfo(ctx, cr, productPath)
	if err != nil {
		return nil, err
	}
	if len(info.Metadata.Subdatasets) == 0 {
		return nil, fmt.Errorf("product %s exposes no subdatasets", productPath)
	}

	// SUBDATASET_<n>_NAME keys, in index order for determinism
	keys := make([]string, 0, len(info.Metadata.Subdatasets))
	for k := range info.Metadata.Subdatasets {
		if strings.HasSuffix(k, "_NAME") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make(map[string]string, 3)
	for _, k := range keys {
		name := info.Metadata.Subdatasets[k]
		switch {
		case strings.Contains(name, Res10m):
			out[Res10m] = name
		case strings.Contains(name, Res20m):
			out[Res20m] = name
		case strings.Contains(name, Res60m):
			out[Res60m] = name
		}
	}

	for _, res := range []string{Res10m, Res20m, Res60m} {
		if _, ok := out[res]; !ok {
			return nil, fmt.Errorf("product %s has no %s subdataset", productPath, res)
		}
	}
	return out, nil
}

// Describe opens a subdataset with gdalinfo and returns its description.
func Describe(ctx context.Context, cr runner.CommandRunner, name string) (Dataset, error) {
	info, err := runGdalinfo(ctx, cr, name)
	if err != nil {
		return Dataset{}, err
	}
	if len(info.Size) != 2 {
		return Dataset{}, fmt.Errorf("dataset %s: unexpected size %v", name, info.Size)
	}

	ds := Dataset{
		Name:      name,
		Width:     info.Size[0],
		Height:    info.Size[1],
		Transform: geo.FromGDAL(info.GeoTransform),
		CRS:       info.CoordSystem.WKT,
	}
	for _, b := range info.Bands {
		ds.Descriptions = append(ds.Descriptions, b.Description)
		if ds.DType == "" {
			ds.DType = strings.ToLower(b.Type)
		}
	}
	if len(ds.Descriptions) == 0 {
		return Dataset{}, fmt.Errorf("dataset %s reports no bands", name)
	}
	return ds, nil
}

func runGdalinfo(ctx context.Context, cr runner.CommandRunner, target string) (*gdalInfo, error) {
	out, err := cr.RunCommand(ctx, "gdalinfo", "-json", target)
	if err != nil {
		return nil, fmt.Errorf("gdalinfo %s: %w", target, err)
	}
	var info gdalInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, fmt.Errorf("parsing gdalinfo output for %s: %w", target, err)
	}
	return &info, nil
}
