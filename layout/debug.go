package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。图片数据会以 base64 写出。
func WriteDebugJSON(deck *Deck, path string) error {
	if deck == nil {
		return nil
	}
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
