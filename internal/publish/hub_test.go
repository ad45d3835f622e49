package publish

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

type stubPublisher struct {
	name  string
	err   error
	panic bool
	calls int
}

func (s *stubPublisher) Name() string { return s.name }

func (s *stubPublisher) NotifyVote(vote.Record) error {
	s.calls++
	if s.panic {
		panic("publisher exploded")
	}
	return s.err
}

func TestNotifyIsolatesFailures(t *testing.T) {
	a := &stubPublisher{name: "a", err: errors.New("broker down")}
	b := &stubPublisher{name: "b"}

	h := NewHub(false)
	h.Register(a)
	h.Register(b)

	require.NoError(t, h.Notify(vote.Record{Value: "0"}))
	require.Equal(t, 1, a.calls)
	require.Equal(t, 1, b.calls)
}

func TestNotifyRecoversPanics(t *testing.T) {
	a := &stubPublisher{name: "a", panic: true}
	b := &stubPublisher{name: "b"}

	h := NewHub(false)
	h.Register(a)
	h.Register(b)

	require.NoError(t, h.Notify(vote.Record{Value: "0"}))
	require.Equal(t, 1, b.calls)
}

func TestNotifyFeedbackOnError(t *testing.T) {
	a := &stubPublisher{name: "a", err: errors.New("broker down")}
	b := &stubPublisher{name: "b"}

	h := NewHub(true)
	h.Register(a)
	h.Register(b)

	err := h.Notify(vote.Record{Value: "0"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "a")
	// the failure still did not stop the other publisher
	require.Equal(t, 1, b.calls)

	// all-success path stays quiet even in feedback mode
	a.err = nil
	require.NoError(t, h.Notify(vote.Record{Value: "0"}))
}
