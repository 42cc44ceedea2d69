package layout

import (
	"strconv"
	"strings"
)

// 布局结果统一以毫米（mm）为单位；演示文稿的尺寸常量习惯用英寸书写，
// 字号用 pt 书写，这里负责三者之间的换算。

// Unit represents the unit a length was authored in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // CSS pixels (1/96 in), used by SVG diagrams
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4
	PxToMm = InToMm / 96.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// In builds an inch length.
func In(v float64) Length { return Length{Value: v, Unit: UnitIN} }

// Pt builds a point length.
func Pt(v float64) Length { return Length{Value: v, Unit: UnitPT} }

// Px builds a pixel length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPX} }

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts the length to millimeters. Unit-less values pass through.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * InToMm
	case UnitPT:
		return l.Value * PtToMm
	case UnitPX:
		return l.Value * PxToMm
	default:
		return l.Value
	}
}

// ToPT converts the length to points.
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

// String renders the length the way it would be written, e.g. "0.5in".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses "12pt", "0.5in", "3mm", "96px" or "1cm". A bare number
// is unit-less; garbage yields the zero length.
func ParseLength(value string) Length {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}
	}
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}
