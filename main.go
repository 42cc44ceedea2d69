package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"

	"github.com/ByLCY/slidescript/config"
	"github.com/ByLCY/slidescript/diagram"
	"github.com/ByLCY/slidescript/dsl"
	"github.com/ByLCY/slidescript/export"
	"github.com/ByLCY/slidescript/generate"
	"github.com/ByLCY/slidescript/layout"
	"github.com/ByLCY/slidescript/preview"
	"github.com/ByLCY/slidescript/renderer"
	canvasrenderer "github.com/ByLCY/slidescript/renderer/canvas"
	"github.com/ByLCY/slidescript/renderer/manifest"
)

type options struct {
	input          string
	output         string
	format         string
	debug          string
	dump           bool
	topic          string
	settings       string
	kroki          string
	diagramTimeout time.Duration
	canvas         string
	current        int
	fonts          fontFlags
}

// fontFlags 收集可重复的 -font Body-Regular=path 参数。
type fontFlags map[string]canvasrenderer.Resource

func (f fontFlags) String() string {
	names := make([]string, 0, len(f))
	for name, res := range f {
		names = append(names, name+"="+res.Path)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (f fontFlags) Set(value string) error {
	name, path, ok := strings.Cut(value, "=")
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return fmt.Errorf("字体参数应为 名称-风格=路径，例如 Body-Regular=fonts/body.ttf，实际为 %q", value)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	f[name] = canvasrenderer.Resource{Path: abs}
	return nil
}

func main() {
	opts := options{fonts: fontFlags{}}
	flag.StringVar(&opts.input, "in", "examples/demo.slides", "幻灯片源文件路径")
	flag.StringVar(&opts.output, "out", "output/demo.pdf", "输出路径")
	flag.StringVar(&opts.format, "format", "", "输出格式 pdf|json|html，默认按输出扩展名推断")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&opts.dump, "dump", false, "打印编译后的文档结构")
	flag.StringVar(&opts.topic, "generate", "", "先按主题生成幻灯片并覆盖输入文件")
	flag.StringVar(&opts.settings, "settings", "settings.json", "生成服务配置文件")
	flag.StringVar(&opts.kroki, "kroki", diagram.DefaultKrokiURL, "Kroki 图表服务地址")
	flag.DurationVar(&opts.diagramTimeout, "diagram-timeout", 10*time.Second, "单个图表渲染超时")
	flag.StringVar(&opts.canvas, "canvas", "", "画布尺寸，例如 10in,7.5in")
	flag.IntVar(&opts.current, "current", 0, "HTML 预览中标记的当前幻灯片（从 0 开始）")
	flag.Var(opts.fonts, "font", "替换 PDF 字体，可重复，例如 Body-Regular=fonts/body.ttf")
	flag.Parse()

	if opts.topic != "" {
		if err := generateInput(opts); err != nil {
			log.Fatalf("生成幻灯片失败: %v", err)
		}
		fmt.Printf("已生成幻灯片源文件：%s\n", opts.input)
	}
	size, err := run(opts)
	if err != nil {
		log.Fatalf("导出失败: %v", err)
	}
	fmt.Printf("已生成 %s（%s）\n", opts.output, humanize.Bytes(uint64(size)))
}

// generateInput 只有在生成成功后才覆盖输入文件。
func generateInput(opts options) error {
	settings, err := config.Load(opts.settings)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	markup, err := generate.New(settings, &http.Client{}).Generate(ctx, opts.topic)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.input), 0o755); err != nil {
		return fmt.Errorf("创建输入目录失败: %w", err)
	}
	return os.WriteFile(opts.input, []byte(markup+"\n"), 0o644)
}

// run 串联编译、布局、图表解析与渲染，返回输出字节数。
func run(opts options) (int, error) {
	file, err := os.Open(opts.input)
	if err != nil {
		return 0, fmt.Errorf("无法打开源文件 %s: %w", opts.input, err)
	}
	doc, err := dsl.Parse(file)
	file.Close()
	if err != nil {
		return 0, fmt.Errorf("读取源文件失败: %w", err)
	}
	if opts.dump {
		pp.Println(doc)
	}

	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}

	var data []byte
	switch format {
	case "html":
		html, err := preview.RenderString(doc, preview.Options{Current: opts.current})
		if err != nil {
			return 0, fmt.Errorf("渲染 HTML 失败: %w", err)
		}
		data = []byte(html)
	case "pdf", "json":
		data, err = exportDeck(doc, format, opts)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("不支持的输出格式 %q", format)
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return 0, fmt.Errorf("写入输出文件失败: %w", err)
	}
	return len(data), nil
}

func exportDeck(doc dsl.Document, format string, opts options) ([]byte, error) {
	var r renderer.Renderer
	if format == "json" {
		r = &manifest.Renderer{Indent: true}
	} else {
		r = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			BaseDir: filepath.Dir(opts.input),
			Fonts:   opts.fonts,
		})
	}

	chain := diagram.NewChain(diagram.NewKrokiRenderer(opts.kroki, &http.Client{}))
	chain.Timeouts.Render = opts.diagramTimeout
	ex := export.New(chain, r)
	if opts.canvas != "" {
		canvasOpts, err := layout.ParseCanvas(opts.canvas)
		if err != nil {
			return nil, err
		}
		ex.Options = canvasOpts
	}

	ctx := context.Background()
	if opts.debug != "" {
		deck := ex.Layout(ctx, doc)
		if err := writeDebug(deck, opts.debug); err != nil {
			return nil, err
		}
		data, err := r.Render(deck)
		if err != nil {
			return nil, fmt.Errorf("渲染失败: %w", err)
		}
		return data, nil
	}
	return ex.Export(ctx, doc)
}

func writeDebug(deck *layout.Deck, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(deck, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
