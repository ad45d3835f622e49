package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/tcalmant/nfc-voting/internal/config"
	"github.com/tcalmant/nfc-voting/internal/events"
	"github.com/tcalmant/nfc-voting/internal/state"
	"github.com/tcalmant/nfc-voting/internal/vote"
)

func newTestServer(t *testing.T) (*httptest.Server, *state.Store, events.Buffer, *Feed) {
	t.Helper()
	st, err := state.LoadOrInit(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	buf := events.NewRing(8)
	feed := NewFeed()
	srv := New(config.WebConfig{Host: "127.0.0.1", Port: 0}, buf, st, feed, func() Status {
		return Status{
			Session:    st.Session(),
			Values:     []string{"0", "1"},
			Assignment: map[string]string{"0": "fake:0"},
			Readers:    map[string]string{"fake:0": "listening"},
		}
	})

	ts := httptest.NewServer(srv.http.Handler)
	t.Cleanup(ts.Close)
	return ts, st, buf, feed
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestStatusAndTally(t *testing.T) {
	ts, st, _, _ := newTestServer(t)
	require.NoError(t, st.NotifyVote(vote.Record{Value: "0"}))
	require.NoError(t, st.NotifyVote(vote.Record{Value: "0"}))

	var status struct {
		OK   bool   `json:"ok"`
		Data Status `json:"data"`
	}
	getJSON(t, ts.URL+"/api/v1/status", &status)
	require.True(t, status.OK)
	require.Equal(t, st.Session(), status.Data.Session)
	require.Equal(t, "fake:0", status.Data.Assignment["0"])

	var tally struct {
		OK    bool           `json:"ok"`
		Tally map[string]int `json:"tally"`
	}
	getJSON(t, ts.URL+"/api/v1/tally", &tally)
	require.True(t, tally.OK)
	require.Equal(t, 2, tally.Tally["0"])
}

func TestEventsEndpoint(t *testing.T) {
	ts, _, buf, _ := newTestServer(t)
	buf.Push(events.Entry{Value: "0", UID: "a1b2", Time: time.Now()})

	var resp struct {
		OK   bool           `json:"ok"`
		Data []events.Entry `json:"data"`
	}
	getJSON(t, ts.URL+"/api/v1/events", &resp)
	require.True(t, resp.OK)
	require.Len(t, resp.Data, 1)
	require.Equal(t, "a1b2", resp.Data[0].UID)

	r, err := http.Get(ts.URL + "/api/v1/events?after=not-a-time")
	require.NoError(t, err)
	r.Body.Close()
	require.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestFeedBroadcast(t *testing.T) {
	ts, _, _, feed := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, err := websocket.Dial(wsURL, "", ts.URL)
	require.NoError(t, err)
	defer ws.Close()

	require.Eventually(t, func() bool {
		feed.mu.Lock()
		defer feed.mu.Unlock()
		return len(feed.conns) == 1
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, feed.NotifyVote(vote.Record{
		Timestamp: time.Now().Unix(),
		UID:       []byte{0xA1},
		Value:     "1",
	}))

	var e events.Entry
	require.NoError(t, websocket.JSON.Receive(ws, &e))
	require.Equal(t, "1", e.Value)
	require.Equal(t, "a1", e.UID)
}
