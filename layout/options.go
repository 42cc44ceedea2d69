package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Options 配置画布尺寸。盒子的摆放常量与画布无关，画布过小时内容直接溢出。
type Options struct {
	Width  Length
	Height Length
}

// DefaultOptions 返回 16:9 的 10in × 5.625in 画布。
func DefaultOptions() Options {
	return Options{Width: In(10), Height: In(5.625)}
}

// ParseCanvas 解析形如 "10in,7.5in" 或 "254mm x 190.5mm" 的画布尺寸。
func ParseCanvas(value string) (Options, error) {
	sep := ","
	if !strings.Contains(value, sep) {
		sep = "x"
	}
	parts := strings.SplitN(value, sep, 2)
	if len(parts) != 2 {
		return Options{}, fmt.Errorf("画布尺寸 %q 需要宽高两个值", value)
	}
	w, h := ParseLength(parts[0]), ParseLength(parts[1])
	if w.ToMM() <= 0 || h.ToMM() <= 0 {
		return Options{}, fmt.Errorf("画布尺寸 %q 无法解析", value)
	}
	return Options{Width: w, Height: h}, nil
}

// placement 描述一类盒子的固定摆放方式（英寸 / pt）。
type placement struct {
	x, width, height, gap Length
	fontSize              Length
	font                  string
	bold, italic          bool
	align                 string
	color                 string
	fill                  string
	border                string
	padding               Length
}

// 布局使用的字体名，由渲染器映射到具体字体。
const (
	FontBody = "Body"
	FontMono = "Mono"
)

var (
	topMargin = In(0.5)

	titlePlacement    = placement{x: In(0.5), width: In(9), height: In(1), gap: In(0.5), fontSize: Pt(32), font: FontBody, bold: true, align: "center", color: "#1F2937"}
	subtitlePlacement = placement{x: In(0.5), width: In(9), height: In(1), gap: In(0.2), fontSize: Pt(24), font: FontBody, align: "center", color: "#4B5563"}
	bulletsPlacement  = placement{x: In(1), width: In(8), height: In(0.5), gap: In(0.5), fontSize: Pt(18), font: FontBody, color: "#1F2937"}

	contentPlacements = map[BoxKind]placement{
		BoxCode:    {x: In(1), width: In(8), height: In(2), gap: In(0.5), fontSize: Pt(14), font: FontMono, color: "#00FF00", fill: "#1A1A1A", padding: In(0.2)},
		BoxDiagram: {x: In(1), width: In(8), height: In(3), gap: In(0.5), fontSize: Pt(12), font: FontMono, color: "#1F2937"},
		BoxQuote:   {x: In(1.5), width: In(7), height: In(1), gap: In(0.2), fontSize: Pt(16), font: FontBody, italic: true, color: "#666666"},
		BoxOrdered: {x: In(1), width: In(8), height: In(0.8), gap: In(0.2), fontSize: Pt(16), font: FontBody, color: "#374151"},
		BoxText:    {x: In(1), width: In(8), height: In(0.8), gap: In(0.2), fontSize: Pt(16), font: FontBody, color: "#374151"},
	}

	// placeholderStyle 用于图表渲染全部失败时的占位盒子。
	placeholderStyle = placement{fontSize: Pt(11), font: FontMono, color: "#B91C1C", fill: "#FEF2F2", border: "#DC2626", padding: In(0.1)}
)

func (p placement) style() TextStyle {
	s := TextStyle{
		Font:       p.font,
		FontSize:   p.fontSize.ToMM(),
		LineHeight: 1.2,
		Bold:       p.bold,
		Italic:     p.italic,
		Align:      p.align,
		Color:      mustColor(p.color),
		Padding:    p.padding.ToMM(),
	}
	if p.fill != "" {
		c := mustColor(p.fill)
		s.Fill = &c
	}
	if p.border != "" {
		c := mustColor(p.border)
		s.Border = &c
	}
	return s
}

// PlaceholderStyle 返回占位盒子的样式。
func PlaceholderStyle() TextStyle { return placeholderStyle.style() }

// ParseColor 解析 #RGB、#RRGGBB 或 #RRGGBBAA（忽略透明度）。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return hexColor(r, g, b)
	case 6, 8:
		return hexColor(value[0:2], value[2:4], value[4:6])
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func hexColor(r, g, b string) (Color, error) {
	var out [3]int
	for i, s := range []string{r, g, b} {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色分量 %s 无法解析: %w", s, err)
		}
		out[i] = int(v)
	}
	return Color{R: out[0], G: out[1], B: out[2]}, nil
}

func mustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}
