package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// KeyName describes a raw input byte for operator messages, e.g. "0x1b (Esc)".
// Control bytes map onto tcell's key table, whose control keys share ASCII codes.
func KeyName(b byte) string {
	if name, ok := tcell.KeyNames[tcell.Key(b)]; ok && b < 0x80 {
		return fmt.Sprintf("0x%02x (%s)", b, name)
	}
	return fmt.Sprintf("0x%02x", b)
}
