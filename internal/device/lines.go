package device

import (
	"bytes"
	"strings"
)

// lineBuffer accumulates raw chunks from a driver and splits them into
// trimmed, non-empty lines.
type lineBuffer struct {
	buf []byte
}

func (l *lineBuffer) feed(p []byte) []string {
	l.buf = append(l.buf, p...)
	var out []string
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			return out
		}
		line := strings.TrimSpace(string(l.buf[:i]))
		l.buf = l.buf[i+1:]
		if line != "" {
			out = append(out, line)
		}
	}
}
