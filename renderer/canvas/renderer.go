package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/npillmayer/schuko/tracing"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/slidescript/dsl"
	"github.com/ByLCY/slidescript/fonts"
	"github.com/ByLCY/slidescript/layout"
	"github.com/ByLCY/slidescript/renderer"
)

const borderWidth = 0.4

// tracer traces with key 'slidescript.renderer'.
func tracer() tracing.Trace {
	return tracing.Select("slidescript.renderer")
}

// Renderer draws layout results into a PDF via github.com/tdewolff/canvas.
// It cannot embed SVG, so diagram boxes must carry PNG images.
type Renderer struct {
	baseDir string

	// injected font files, keyed "<Family>-<Style>", e.g. "Body-Bold"
	fontBlobs map[string][]byte

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer       = (*Renderer)(nil)
	_ renderer.VectorEmbedder = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Fonts overrides the built-in faces. Keys are a layout font name plus a
	// style suffix: "Body-Regular", "Body-Bold", "Mono-Italic", ...
	Fonts map[string]Resource
}

// Resource can be provided either by Bytes or by Path. A relative Path is
// resolved against BaseDir.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		fontBlobs: map[string][]byte{},
		families:  map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			path := res.Path
			if !filepath.IsAbs(path) && r.baseDir != "" {
				path = filepath.Join(r.baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				tracer().Errorf("读取字体 %s 失败，改用内置字体: %v", res.Path, err)
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// AcceptsVector reports false: diagrams reach this renderer as PNG.
func (r *Renderer) AcceptsVector() bool { return false }

// Render renders the deck into a PDF byte slice, one page per slide.
func (r *Renderer) Render(deck *layout.Deck) ([]byte, error) {
	if deck == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("缺少可渲染的幻灯片")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, deck.Width, deck.Height, nil)
	r.applyMeta(writer, deck.Meta)
	for i, slide := range deck.Slides {
		if i > 0 {
			writer.NewPage(deck.Width, deck.Height)
		}
		c := canvas.New(deck.Width, deck.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawSlide(ctx, deck, slide); err != nil {
			return nil, fmt.Errorf("第 %d 张幻灯片: %w", slide.Index+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawSlide(ctx *canvas.Context, deck *layout.Deck, slide layout.SlideLayout) error {
	// 白色背景
	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(deck.Width, deck.Height))

	for _, box := range slide.Boxes {
		if err := r.drawBox(ctx, box); err != nil {
			return fmt.Errorf("%s 盒子: %w", box.Kind, err)
		}
	}
	return nil
}

func (r *Renderer) drawBox(ctx *canvas.Context, box layout.Box) error {
	r.drawFrame(ctx, box)
	if box.Image != nil {
		return r.drawImage(ctx, *box.Image)
	}
	if len(box.Paragraphs) == 0 {
		return nil
	}
	return r.drawParagraphs(ctx, box)
}

// drawFrame 绘制盒子的背景与边框。
func (r *Renderer) drawFrame(ctx *canvas.Context, box layout.Box) {
	if box.Style.Fill == nil && box.Style.Border == nil {
		return
	}
	if box.Style.Fill != nil {
		ctx.SetFillColor(colorFromLayout(*box.Style.Fill))
	} else {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if box.Style.Border != nil {
		ctx.SetStrokeColor(colorFromLayout(*box.Style.Border))
		ctx.SetStrokeWidth(borderWidth)
	} else {
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	}
	ctx.DrawPath(box.X, box.Y, canvas.Rectangle(box.Width, box.Height))
}

func (r *Renderer) drawImage(ctx *canvas.Context, img layout.ImageBox) error {
	if img.Format != "png" && img.Format != "jpeg" {
		return fmt.Errorf("不支持的图片格式 %q", img.Format)
	}
	data, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("解码图片失败: %w", err)
	}
	width := img.Width
	if width <= 0 {
		width = float64(data.Bounds().Dx()) / 4.0
	}
	dpmm := float64(data.Bounds().Dx()) / width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(img.X, img.Y, data, canvas.DPMM(dpmm))
	return nil
}

// drawParagraphs 在盒子内边距以内逐行绘制段落，段落内的强调片段各用对应字体。
func (r *Renderer) drawParagraphs(ctx *canvas.Context, box layout.Box) error {
	style := box.Style
	pad := style.Padding
	innerX := box.X + pad
	innerW := box.Width - 2*pad
	cursorY := box.Y + pad

	for i, para := range box.Paragraphs {
		runs := para.Runs
		if len(runs) == 0 {
			runs = []dsl.Run{{Text: para.Text}}
		}
		if style.Bullet {
			runs = append([]dsl.Run{{Text: "• "}}, runs...)
		}
		lines, err := r.wrapRuns(runs, innerW, style)
		if err != nil {
			return err
		}
		for j, line := range lines {
			if i > 0 || j > 0 {
				cursorY += line.gapBefore
			}
			x := innerX + alignOffset(style.Align, innerW, line.width)
			baseline := cursorY + line.ascent
			for _, seg := range line.segments {
				ctx.DrawText(x, baseline, canvas.NewTextLine(seg.face, seg.text, canvas.Left))
				x += seg.width
			}
			cursorY += line.height
		}
	}
	return nil
}

func alignOffset(align string, width, lineWidth float64) float64 {
	switch strings.ToLower(align) {
	case "center":
		return (width - lineWidth) / 2
	case "right", "end":
		return width - lineWidth
	}
	return 0
}

// segment 是一行中使用同一字体的连续文本。
type segment struct {
	text  string
	face  *canvas.FontFace
	width float64
}

type richLine struct {
	segments  []segment
	width     float64
	height    float64
	ascent    float64
	gapBefore float64
}

type token struct {
	text string
	face *canvas.FontFace
}

// wrapRuns 在空白处优先断行，单词超宽时在词内拆分；显式换行总是生效。
func (r *Renderer) wrapRuns(runs []dsl.Run, width float64, style layout.TextStyle) ([]richLine, error) {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	base, err := r.faceFor(style, dsl.Run{})
	if err != nil {
		return nil, err
	}
	var tokens []token
	for _, run := range runs {
		face, err := r.faceFor(style, run)
		if err != nil {
			return nil, err
		}
		for _, t := range tokenizeContent(run.Text) {
			tokens = append(tokens, token{text: t, face: face})
		}
	}

	var lines []richLine
	current := richLine{}
	emit := func(force bool) {
		if len(current.segments) == 0 && !force {
			return
		}
		lines = append(lines, current)
		current = richLine{}
	}
	add := func(t token, w float64) {
		n := len(current.segments)
		if n > 0 && current.segments[n-1].face == t.face {
			current.segments[n-1].text += t.text
			current.segments[n-1].width += w
		} else {
			current.segments = append(current.segments, segment{text: t.text, face: t.face, width: w})
		}
		current.width += w
	}

	for _, t := range tokens {
		if t.text == "\n" {
			emit(true)
			continue
		}
		tw := t.face.TextWidth(t.text)
		if current.width > 0 && current.width+tw > limit {
			emit(false)
			if isBlank(t.text) {
				continue // 行首空白不保留
			}
		}
		if tw <= limit {
			add(t, tw)
			continue
		}
		for _, chunk := range splitTokenByWidth(t.text, limit, t.face) {
			cw := t.face.TextWidth(chunk)
			if current.width > 0 && current.width+cw > limit {
				emit(false)
			}
			add(token{text: chunk, face: t.face}, cw)
		}
	}
	emit(true)

	r.measure(lines, base, style)
	return lines, nil
}

// measure 回填行高：行高取字体度量，行距为 max(字号×倍数 - 字体行高, 0)。
func (r *Renderer) measure(lines []richLine, base *canvas.FontFace, style layout.TextStyle) {
	factor := style.LineHeight
	if factor <= 0 {
		factor = 1.2
	}
	lineHeight := style.FontSize * factor
	for i := range lines {
		m := base.Metrics()
		for _, seg := range lines[i].segments {
			if sm := seg.face.Metrics(); sm.LineHeight > m.LineHeight {
				m = sm
			}
		}
		textHeight := m.LineHeight
		if textHeight <= 0 {
			textHeight = lineHeight
		}
		lines[i].height = textHeight
		lines[i].ascent = m.Ascent
		lines[i].gapBefore = math.Max(lineHeight-textHeight, 0)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (r *Renderer) faceFor(style layout.TextStyle, run dsl.Run) (*canvas.FontFace, error) {
	familyName := style.Font
	if run.Code {
		familyName = layout.FontMono
	}
	family, err := r.fontFamily(familyName)
	if err != nil {
		return nil, err
	}
	fs := canvas.FontRegular
	if style.Bold || run.Bold {
		fs = canvas.FontBold
	}
	if style.Italic || run.Italic {
		fs |= canvas.FontItalic
	}
	// 字号为 mm，创建字体面需要 pt
	return family.Face(toPt(style.FontSize), colorFromLayout(style.Color), fs, canvas.FontNormal), nil
}

var familyStyles = []struct {
	suffix       string
	style        canvas.FontStyle
	bold, italic bool
}{
	{"Regular", canvas.FontRegular, false, false},
	{"Bold", canvas.FontBold, true, false},
	{"Italic", canvas.FontItalic, false, true},
	{"BoldItalic", canvas.FontBold | canvas.FontItalic, true, true},
}

// fontFamily 懒加载布局字体名（Body/Mono）对应的字体家族，四种风格一并载入。
func (r *Renderer) fontFamily(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = layout.FontBody
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if family, ok := r.families[name]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(name)
	mono := name == layout.FontMono
	for _, fs := range familyStyles {
		data, ok := r.fontBlobs[name+"-"+fs.suffix]
		if !ok {
			var err error
			data, err = fonts.Load(fonts.Name(mono, fs.bold, fs.italic))
			if err != nil {
				return nil, err
			}
		}
		if err := family.LoadFont(data, 0, fs.style); err != nil {
			return nil, fmt.Errorf("加载字体 %s-%s 失败: %w", name, fs.suffix, err)
		}
	}
	r.families[name] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
