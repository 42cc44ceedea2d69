package renderer

import "github.com/ByLCY/slidescript/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF 或 JSON 清单。
// Render 返回生成的二进制数据以及可能的错误；每张幻灯片对应输出中的一页/一项，顺序不变。
type Renderer interface {
	Render(deck *layout.Deck) ([]byte, error)
}

// VectorEmbedder 由能够直接嵌入 SVG 的渲染器实现。
type VectorEmbedder interface {
	AcceptsVector() bool
}

// AcceptsVector 报告 r 是否能直接嵌入矢量图；未实现 VectorEmbedder 的渲染器视为不能。
func AcceptsVector(r Renderer) bool {
	if v, ok := r.(VectorEmbedder); ok {
		return v.AcceptsVector()
	}
	return false
}
