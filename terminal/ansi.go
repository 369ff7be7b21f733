package terminal

// Pre-allocated control sequences used by the line editor
var (
	crlf = []byte("\r\n")

	// CSI sequences
	csiSGR0       = []byte("\x1b[0m")
	csiCursorShow = []byte("\x1b[?25h")
)

// Sequences shared with the editor; strings because editor output is built with a strings.Builder
const (
	// LineBreak ends a line in raw mode, where output post-processing is off
	LineBreak = "\r\n"

	// ClearLine returns to column 0 and erases to end of line (EL 0)
	ClearLine = "\r\x1b[0K"

	// EraseLeft removes the glyph left of the cursor
	EraseLeft = "\b \b"

	// Bell rings the terminal bell
	Bell = "\x07"
)
