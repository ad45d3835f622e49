package device

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.bug.st/serial"
)

// serialSource reads the TAG,<hex-uid>[,<text>] line protocol from a serial
// NFC reader module. Reads are polled in short slices so that cancellation
// is observed between waits without closing the port; the same port is
// reused across the association and vote phases.
type serialSource struct {
	id      string
	port    serial.Port
	lb      lineBuffer
	pending []Tag
	readBuf []byte
}

const readSlice = 200 * time.Millisecond

func OpenSerial(path string, baud int) (Source, error) {
	if baud <= 0 {
		baud = 115200
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	if err := port.SetReadTimeout(readSlice); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial %s: set read timeout: %w", path, err)
	}
	return &serialSource{
		id:      "serial:" + path,
		port:    port,
		readBuf: make([]byte, 256),
	}, nil
}

func (s *serialSource) ID() string { return s.id }

func (s *serialSource) NextTag(ctx context.Context) (Tag, error) {
	for {
		if len(s.pending) > 0 {
			t := s.pending[0]
			s.pending = s.pending[1:]
			return t, nil
		}
		if err := ctx.Err(); err != nil {
			return Tag{}, err
		}
		n, err := s.port.Read(s.readBuf)
		if err != nil {
			return Tag{}, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			// read timeout slice expired, check ctx and go again
			continue
		}
		for _, line := range s.lb.feed(s.readBuf[:n]) {
			tag, ok := parseTagLine(line)
			if !ok {
				log.Printf("[device] %s: ignore line %q", s.id, line)
				continue
			}
			s.pending = append(s.pending, tag)
		}
	}
}

func (s *serialSource) Close() error { return s.port.Close() }
