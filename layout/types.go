package layout

import "github.com/ByLCY/slidescript/dsl"

// 该文件定义布局结果，供布局计算、导出渲染与调试 JSON 共用。坐标均为 mm，原点在幻灯片左上角。

// Deck 保存全部幻灯片的布局结果与文档元信息。
type Deck struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Slides []SlideLayout `json:"slides"`
	Meta   DocumentMeta  `json:"meta"`
}

// SlideLayout 是单张幻灯片上按顺序摆放的盒子。
type SlideLayout struct {
	Index int   `json:"index"`
	Boxes []Box `json:"boxes"`
}

// BoxKind 标识盒子的来源。
type BoxKind string

const (
	BoxTitle       BoxKind = "title"
	BoxSubtitle    BoxKind = "subtitle"
	BoxBullets     BoxKind = "bullets"
	BoxText        BoxKind = "text"
	BoxQuote       BoxKind = "quote"
	BoxOrdered     BoxKind = "ordered"
	BoxCode        BoxKind = "code"
	BoxDiagram     BoxKind = "diagram"
	BoxPlaceholder BoxKind = "diagram-error"
)

// Box 表示一个已经确定位置与尺寸的元素。
// 文本类盒子的 Paragraphs 至少有一项（bullets 每条一项）；diagram 盒子携带
// Definition，导出阶段再填充 Image 或者改写为占位盒子。
type Box struct {
	Kind       BoxKind     `json:"kind"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
	Style      TextStyle   `json:"style"`
	Definition string      `json:"definition,omitempty"`
	Image      *ImageBox   `json:"image,omitempty"`
}

// Text 返回盒子内全部段落的纯文本，段落之间以换行连接。
func (b Box) Text() string {
	switch len(b.Paragraphs) {
	case 0:
		return ""
	case 1:
		return b.Paragraphs[0].Text
	}
	out := b.Paragraphs[0].Text
	for _, p := range b.Paragraphs[1:] {
		out += "\n" + p.Text
	}
	return out
}

// Paragraph 是去掉标记后的纯文本，以及对应的强调片段。
type Paragraph struct {
	Text string    `json:"text"`
	Runs []dsl.Run `json:"runs,omitempty"`
}

// TextStyle 描述渲染提示。FontSize 与 Padding 为 mm。
type TextStyle struct {
	Font       string  `json:"font"`
	FontSize   float64 `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"` // 行高倍数
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Align      string  `json:"align,omitempty"` // left/center/right，默认 left
	Color      Color   `json:"color"`
	Fill       *Color  `json:"fill,omitempty"`
	Border     *Color  `json:"border,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
	Bullet     bool    `json:"bullet,omitempty"`
}

// ImageBox 记录导出阶段得到的图片，X/Y/Width/Height 为图片在页面上的实际位置（mm）。
type ImageBox struct {
	Format string  `json:"format"` // png | svg
	Data   []byte  `json:"data"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DocumentMeta 保存导出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
