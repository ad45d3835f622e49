package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

func TestLoadOrInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiosk", "state.json")

	s, err := LoadOrInit(path)
	require.NoError(t, err)
	session := s.Session()
	require.NotEmpty(t, session)

	require.NoError(t, s.NotifyVote(vote.Record{Value: "0"}))
	require.NoError(t, s.NotifyVote(vote.Record{Value: "0"}))
	require.NoError(t, s.NotifyVote(vote.Record{Value: "2"}))
	s.SetAssignment(map[string]string{"0": "serial:/dev/ttyACM0"})
	require.NoError(t, s.Save())

	// a restarted kiosk keeps the session and the counts
	s2, err := LoadOrInit(path)
	require.NoError(t, err)
	require.Equal(t, session, s2.Session())

	st := s2.Snapshot()
	require.Equal(t, 2, st.Tally["0"])
	require.Equal(t, 1, st.Tally["2"])
	require.Equal(t, "serial:/dev/ttyACM0", st.Assignment["0"])
}

func TestSaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := LoadOrInit(path)
	require.NoError(t, err)
	// nothing changed since init
	require.NoError(t, s.Save())

	require.NoError(t, s.NotifyVote(vote.Record{Value: "1"}))
	require.NoError(t, s.Save())

	s2, err := LoadOrInit(path)
	require.NoError(t, err)
	require.Equal(t, 1, s2.Snapshot().Tally["1"])
}

func TestSnapshotIsACopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := LoadOrInit(path)
	require.NoError(t, err)
	require.NoError(t, s.NotifyVote(vote.Record{Value: "0"}))

	st := s.Snapshot()
	st.Tally["0"] = 99
	require.Equal(t, 1, s.Snapshot().Tally["0"])
}
