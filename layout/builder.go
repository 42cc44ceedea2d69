package layout

import (
	"github.com/ByLCY/slidescript/dsl"
)

// Build 根据编译后的文档生成每张幻灯片的盒子布局。
//
// 布局是纯函数：每张幻灯片从顶部边距开始，依次放置标题、副标题、
// 项目符号列表，再按文档顺序放置内容项；每个盒子的高度只取决于类型
// （列表取决于条数），光标按“高度 + 固定间距”推进。不做换页或回流，
// 超出画布的盒子原样落在可见区域之外。
func Build(doc dsl.Document, opts Options) *Deck {
	if opts.Width.IsZero() || opts.Height.IsZero() {
		opts = DefaultOptions()
	}
	deck := &Deck{
		Width:  opts.Width.ToMM(),
		Height: opts.Height.ToMM(),
		Slides: make([]SlideLayout, 0, len(doc.Slides)),
		Meta:   collectMeta(doc),
	}
	for i, slide := range doc.Slides {
		deck.Slides = append(deck.Slides, BuildSlide(i, slide))
	}
	return deck
}

// BuildSlide 计算单张幻灯片的布局。
func BuildSlide(index int, slide dsl.Slide) SlideLayout {
	out := SlideLayout{Index: index}
	cursor := &slideCursor{y: topMargin.ToMM()}

	if title := slide.Title.Plain(); title != "" {
		out.Boxes = append(out.Boxes, cursor.place(BoxTitle, titlePlacement, 1, paragraphOf(slide.Title)))
	}
	if subtitle := slide.Subtitle.Plain(); subtitle != "" {
		out.Boxes = append(out.Boxes, cursor.place(BoxSubtitle, subtitlePlacement, 1, paragraphOf(slide.Subtitle)))
	}
	if n := len(slide.Bullets); n > 0 {
		paras := make([]Paragraph, 0, n)
		for _, b := range slide.Bullets {
			paras = append(paras, paragraphOf(b))
		}
		box := cursor.place(BoxBullets, bulletsPlacement, float64(n), paras...)
		box.Style.Bullet = true
		out.Boxes = append(out.Boxes, box)
	}

	for _, item := range slide.Content {
		out.Boxes = append(out.Boxes, placeContent(cursor, item))
	}
	return out
}

func placeContent(cursor *slideCursor, item dsl.ContentItem) Box {
	switch item.Kind {
	case dsl.KindCode:
		return cursor.place(BoxCode, contentPlacements[BoxCode], 1, Paragraph{
			Text: item.Raw,
			Runs: []dsl.Run{{Text: item.Raw, Code: true}},
		})
	case dsl.KindDiagram:
		box := cursor.place(BoxDiagram, contentPlacements[BoxDiagram], 1)
		box.Definition = item.Raw
		return box
	case dsl.KindQuote:
		return cursor.place(BoxQuote, contentPlacements[BoxQuote], 1, quoted(paragraphOf(item.Text)))
	case dsl.KindOrdered:
		return cursor.place(BoxOrdered, contentPlacements[BoxOrdered], 1, paragraphOf(item.Text))
	default:
		return cursor.place(BoxText, contentPlacements[BoxText], 1, paragraphOf(item.Text))
	}
}

// slideCursor 是贯穿整张幻灯片的纵向光标（mm）。
type slideCursor struct {
	y float64
}

// place 在当前光标处放置盒子，高度为 p.height × units，随后推进光标。
func (c *slideCursor) place(kind BoxKind, p placement, units float64, paras ...Paragraph) Box {
	height := p.height.ToMM() * units
	box := Box{
		Kind:       kind,
		X:          p.x.ToMM(),
		Y:          c.y,
		Width:      p.width.ToMM(),
		Height:     height,
		Paragraphs: paras,
		Style:      p.style(),
	}
	c.y += height + p.gap.ToMM()
	return box
}

func paragraphOf(text dsl.StyledText) Paragraph {
	return Paragraph{Text: text.Plain(), Runs: text.Runs()}
}

// quoted 给引用加上双引号，引号本身不带强调。
func quoted(p Paragraph) Paragraph {
	runs := make([]dsl.Run, 0, len(p.Runs)+2)
	runs = append(runs, dsl.Run{Text: `"`})
	runs = append(runs, p.Runs...)
	runs = append(runs, dsl.Run{Text: `"`})
	return Paragraph{Text: `"` + p.Text + `"`, Runs: runs}
}

// PlaceholderBox 把无法渲染的图表盒子改写为带原始定义文本的占位盒子，位置与尺寸保持不变。
func PlaceholderBox(diagram Box) Box {
	return Box{
		Kind:       BoxPlaceholder,
		X:          diagram.X,
		Y:          diagram.Y,
		Width:      diagram.Width,
		Height:     diagram.Height,
		Paragraphs: []Paragraph{{Text: diagram.Definition, Runs: []dsl.Run{{Text: diagram.Definition, Code: true}}}},
		Style:      PlaceholderStyle(),
		Definition: diagram.Definition,
	}
}

func collectMeta(doc dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "SlideScript"}
	for _, slide := range doc.Slides {
		if title := slide.Title.Plain(); title != "" {
			meta.Title = title
			break
		}
	}
	return meta
}
