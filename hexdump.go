package drivestats

import (
	"fmt"
	"io"
	"strings"
)

const hexDumpWidth = 16

// HexDump renders buf as hex and ASCII, 16 bytes per line, each line
// prefixed with indent.
func HexDump(buf []byte, indent string) string {
	var sb strings.Builder

	WriteHexDump(&sb, buf, indent)

	return sb.String()
}

// WriteHexDump writes the HexDump rendering of buf to w.
func WriteHexDump(w io.Writer, buf []byte, indent string) {
	const hexCols = hexDumpWidth*3 - 1

	for off := 0; off < len(buf); off += hexDumpWidth {
		end := off + hexDumpWidth
		if end > len(buf) {
			end = len(buf)
		}

		line := buf[off:end]
		hex := make([]string, len(line))
		ascii := make([]byte, len(line))

		for i, b := range line {
			hex[i] = fmt.Sprintf("%02x", b)

			if b >= 0x20 && b < 0x7f {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}

		fmt.Fprintf(w, "%s%-*s  %s\n", indent, hexCols, strings.Join(hex, " "), ascii)
	}
}
