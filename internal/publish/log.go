package publish

import (
	"log"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

// LogPublisher writes each vote to the kiosk log. Always registered, so a
// kiosk without a broker still leaves a trace.
type LogPublisher struct{}

func (LogPublisher) Name() string { return "log" }

func (LogPublisher) NotifyVote(rec vote.Record) error {
	log.Printf("[vote] value=%s uid=%s ts=%d", rec.Value, rec.UIDHex(), rec.Timestamp)
	return nil
}
