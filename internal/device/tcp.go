package device

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

// tcpSource speaks the same line protocol as serialSource but over TCP,
// against the reader emulator. Useful on a dev machine without hardware.
type tcpSource struct {
	id      string
	conn    net.Conn
	lb      lineBuffer
	pending []Tag
	readBuf []byte
}

func DialTCP(addr string) (Source, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial reader %s: %w", addr, err)
	}
	return &tcpSource{
		id:      "tcp:" + addr,
		conn:    conn,
		readBuf: make([]byte, 256),
	}, nil
}

func (s *tcpSource) ID() string { return s.id }

func (s *tcpSource) NextTag(ctx context.Context) (Tag, error) {
	for {
		if len(s.pending) > 0 {
			t := s.pending[0]
			s.pending = s.pending[1:]
			return t, nil
		}
		if err := ctx.Err(); err != nil {
			return Tag{}, err
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(readSlice))
		n, err := s.conn.Read(s.readBuf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return Tag{}, fmt.Errorf("tcp read: %w", err)
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

func (s *tcpSource) Close() error { return s.conn.Close() }
