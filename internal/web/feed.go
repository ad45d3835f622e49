package web

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/tcalmant/nfc-voting/internal/events"
	"github.com/tcalmant/nfc-voting/internal/vote"
)

// Feed pushes each vote to every connected dashboard over a websocket.
// It plugs into the publisher hub like any other publisher; a slow or dead
// client costs a log line, never a vote.
type Feed struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewFeed() *Feed {
	return &Feed{conns: map[*websocket.Conn]struct{}{}}
}

func (f *Feed) Name() string { return "ws" }

func (f *Feed) NotifyVote(rec vote.Record) error {
	data, err := json.Marshal(events.Entry{
		Value: rec.Value,
		UID:   rec.UIDHex(),
		Time:  time.Unix(rec.Timestamp, 0),
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.conns {
		if _, err := c.Write(data); err != nil {
			log.Printf("[web] dropping ws client: %v", err)
			c.Close()
			delete(f.conns, c)
		}
	}
	return nil
}

// serve holds a client connection open until it goes away.
func (f *Feed) serve(ws *websocket.Conn) {
	f.mu.Lock()
	f.conns[ws] = struct{}{}
	n := len(f.conns)
	f.mu.Unlock()
	log.Printf("[web] ws client connected (%d total)", n)

	// clients only listen; block until they hang up
	_, _ = io.Copy(io.Discard, ws)

	f.mu.Lock()
	delete(f.conns, ws)
	f.mu.Unlock()
	ws.Close()
}
