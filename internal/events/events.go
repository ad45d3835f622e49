package events

import (
	"sync"
	"time"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

// Entry is one vote as seen by the dashboard history.
type Entry struct {
	Value string    `json:"value"`
	UID   string    `json:"uid"`
	Time  time.Time `json:"time"`
}

type Buffer interface {
	Push(e Entry)
	Pull(after time.Time, max int) []Entry
}

type ring struct {
	mu   sync.RWMutex
	data []Entry
	size int
}

func NewRing(size int) Buffer {
	return &ring{data: make([]Entry, 0, size), size: size}
}

func (r *ring) Push(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.data) == r.size {
		r.data = r.data[1:]
	}
	r.data = append(r.data, e)
}

func (r *ring) Pull(after time.Time, max int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, max)
	for i := len(r.data) - 1; i >= 0 && len(out) < max; i-- {
		if r.data[i].Time.After(after) {
			out = append(out, r.data[i])
		}
	}
	// return in ascending time order
	for l, rgt := 0, len(out)-1; l < rgt; l, rgt = l+1, rgt-1 {
		out[l], out[rgt] = out[rgt], out[l]
	}
	return out
}

// RingPublisher feeds the ring from the publisher hub.
type RingPublisher struct {
	Buf Buffer
}

func (RingPublisher) Name() string { return "ring" }

func (p RingPublisher) NotifyVote(rec vote.Record) error {
	p.Buf.Push(Entry{
		Value: rec.Value,
		UID:   rec.UIDHex(),
		Time:  time.Unix(rec.Timestamp, 0),
	})
	return nil
}
