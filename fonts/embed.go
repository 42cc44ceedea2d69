package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体使用 Go 字体家族（比例字体 Go 与等宽字体 Go Mono），各含常规/粗体/斜体/粗斜体。
var builtin = map[string][]byte{
	"Go-Regular":        goregular.TTF,
	"Go-Bold":           gobold.TTF,
	"Go-Italic":         goitalic.TTF,
	"Go-BoldItalic":     gobolditalic.TTF,
	"GoMono-Regular":    gomono.TTF,
	"GoMono-Bold":       gomonobold.TTF,
	"GoMono-Italic":     gomonoitalic.TTF,
	"GoMono-BoldItalic": gomonobolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Regular" 或直接 "Go-Regular"。
func Load(name string) ([]byte, error) {
	clean := strings.TrimSuffix(strings.TrimPrefix(name, "embed:"), ".ttf")
	data, ok := builtin[clean]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

// Name 返回指定风格对应的内置字体名。
func Name(mono, bold, italic bool) string {
	family := "Go"
	if mono {
		family = "GoMono"
	}
	switch {
	case bold && italic:
		return family + "-BoldItalic"
	case bold:
		return family + "-Bold"
	case italic:
		return family + "-Italic"
	}
	return family + "-Regular"
}

