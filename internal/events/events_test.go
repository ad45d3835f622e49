package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

func TestRingPushPull(t *testing.T) {
	r := NewRing(3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		r.Push(Entry{Value: string(rune('a' + i)), Time: base.Add(time.Duration(i) * time.Second)})
	}

	// capacity 3: oldest two fell off, ascending order preserved
	got := r.Pull(time.Time{}, 10)
	require.Len(t, got, 3)
	require.Equal(t, "c", got[0].Value)
	require.Equal(t, "e", got[2].Value)

	// after-filter and max
	got = r.Pull(base.Add(2*time.Second), 10)
	require.Len(t, got, 2)
	require.Equal(t, "d", got[0].Value)

	got = r.Pull(time.Time{}, 1)
	require.Len(t, got, 1)
	require.Equal(t, "e", got[0].Value)
}

func TestRingPublisher(t *testing.T) {
	r := NewRing(8)
	p := RingPublisher{Buf: r}

	ts := time.Now().Unix()
	require.NoError(t, p.NotifyVote(vote.Record{
		Timestamp: ts,
		UID:       []byte{0xA1, 0xB2},
		Value:     "1",
	}))

	got := r.Pull(time.Time{}, 10)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].Value)
	require.Equal(t, "a1b2", got[0].UID)
	require.Equal(t, time.Unix(ts, 0), got[0].Time)
}
