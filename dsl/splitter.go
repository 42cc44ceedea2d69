package dsl

import "strings"

const (
	fenceMarker = "```"
	slideOpen   = "{"
	slideClose  = "}"
)

// Split partitions raw markup into slide blocks.
//
// A brace only delimits a slide when it stands alone on its line and no code
// fence is open; inside a fence it is ordinary content. An opener flushes
// whatever is pending, so a missing closer never merges two slides. Blocks
// are trimmed and empty blocks are dropped.
func Split(raw string) []string {
	var (
		blocks  []string
		current []string
		inFence bool
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			blocks = append(blocks, text)
		}
		current = current[:0]
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, fenceMarker):
			inFence = !inFence
			current = append(current, line)
		case !inFence && trimmed == slideOpen:
			flush()
		case !inFence && trimmed == slideClose:
			flush()
		default:
			current = append(current, line)
		}
	}
	flush()

	return blocks
}
