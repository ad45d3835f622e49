package publish

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

// Publisher is the capability interface for anything that wants completed
// votes: the MQTT notifier, the tally store, the web feed, a plain logger.
type Publisher interface {
	Name() string
	NotifyVote(rec vote.Record) error
}

// Hub fans one vote out to every registered publisher. A failure (or panic)
// in one publisher is logged and does not stop the others.
type Hub struct {
	mu              sync.RWMutex
	publishers      []Publisher
	feedbackOnError bool
}

// NewHub builds a hub. With feedbackOnError set, Notify reports publisher
// failures to the caller so the vote engine can route them to the invalid
// LED; otherwise they are absorbed here and Notify always returns nil.
func NewHub(feedbackOnError bool) *Hub {
	return &Hub{feedbackOnError: feedbackOnError}
}

func (h *Hub) Register(p Publisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publishers = append(h.publishers, p)
	log.Printf("[publish] registered publisher %s", p.Name())
}

func (h *Hub) Notify(rec vote.Record) error {
	h.mu.RLock()
	ps := make([]Publisher, len(h.publishers))
	copy(ps, h.publishers)
	h.mu.RUnlock()

	var failed []string
	for _, p := range ps {
		if err := notifyOne(p, rec); err != nil {
			log.Printf("[publish] %s: %v", p.Name(), err)
			failed = append(failed, p.Name())
		}
	}
	if h.feedbackOnError && len(failed) > 0 {
		return fmt.Errorf("publish failed on %s", strings.Join(failed, ", "))
	}
	return nil
}

func notifyOne(p Publisher, rec vote.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.NotifyVote(rec)
}
