package emulator

import (
	"strings"

	"github.com/Cronan/zx81-chess/zx81"
)

// Display captures the character stream printed through RST $10 as
// lines of text.
type Display struct {
	lines   []string
	current []rune
}

// Print appends one display code. A Newline code completes the
// current line.
func (disp *Display) Print(code uint8) {
	ch := zx81.DecodeChar(code)
	if ch == '\n' {
		disp.lines = append(disp.lines, string(disp.current))
		disp.current = disp.current[:0]
		return
	}
	disp.current = append(disp.current, ch)
}

// Clear discards all captured output, as the ROM CLS routine would.
func (disp *Display) Clear() {
	disp.lines = nil
	disp.current = disp.current[:0]
}

// Lines returns the completed lines, excluding any partial line still
// being printed.
func (disp *Display) Lines() []string {
	return disp.lines
}

// String renders the whole display including the partial last line.
func (disp *Display) String() string {
	var sb strings.Builder
	for _, line := range disp.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(string(disp.current))
	return sb.String()
}
