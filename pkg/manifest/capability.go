package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Upgrade is the capability marker meaning "upgraded relative to the
// input". It is only meaningful on output capabilities.
const Upgrade = ">"

// Field is a scalar capability value: either a concrete value (textual or
// numeric) or the Upgrade marker.
type Field struct {
	Upgraded bool
	Value    string
	Num      float64
	IsNum    bool
}

// IsZero reports whether the field was absent from the document.
func (f Field) IsZero() bool {
	return !f.Upgraded && f.Value == "" && !f.IsNum
}

func (f Field) String() string {
	switch {
	case f.Upgraded:
		return Upgrade
	case f.IsNum:
		return strconv.FormatFloat(f.Num, 'g', -1, 64)
	default:
		return f.Value
	}
}

func (f *Field) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Num = num
		f.IsNum = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("capability field must be a string or number: %s", string(data))
	}
	if s == Upgrade {
		f.Upgraded = true
		return nil
	}
	f.Value = s
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	switch {
	case f.Upgraded:
		return json.Marshal(Upgrade)
	case f.IsNum:
		return json.Marshal(f.Num)
	default:
		return json.Marshal(f.Value)
	}
}

// BandField is a band list capability: either concrete band names or the
// Upgrade marker.
type BandField struct {
	Upgraded bool
	Bands    []string
}

func (b BandField) IsZero() bool {
	return !b.Upgraded && len(b.Bands) == 0
}

func (b *BandField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != Upgrade {
			return fmt.Errorf("bands capability must be a list or %q, got %q", Upgrade, s)
		}
		b.Upgraded = true
		return nil
	}
	return json.Unmarshal(data, &b.Bands)
}

func (b BandField) MarshalJSON() ([]byte, error) {
	if b.Upgraded {
		return json.Marshal(Upgrade)
	}
	return json.Marshal(b.Bands)
}

// RasterCapability is the contract for raster inputs or outputs.
type RasterCapability struct {
	Format          Field     `json:"format,omitempty"`
	Sensor          Field     `json:"sensor,omitempty"`
	Resolution      Field     `json:"resolution,omitempty"`
	DType           Field     `json:"dtype,omitempty"`
	Bands           BandField `json:"bands,omitempty"`
	ProcessingLevel Field     `json:"processing_level,omitempty"`
}

// dtypeRank orders pixel types by information content, for the upgrade
// comparison. Unknown types rank below everything.
var dtypeRank = map[string]int{
	"uint8":   1,
	"uint16":  2,
	"int16":   2,
	"uint32":  3,
	"int32":   3,
	"float32": 4,
	"float64": 5,
}
