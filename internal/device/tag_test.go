package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTagLine(t *testing.T) {
	tag, ok := parseTagLine("TAG,a1b2c3d4")
	require.True(t, ok)
	require.Equal(t, []byte{0xA1, 0xB2, 0xC3, 0xD4}, tag.UID)
	require.Empty(t, tag.Text)

	tag, ok = parseTagLine("TAG,0102,hello there")
	require.True(t, ok)
	require.Equal(t, []byte{0x01, 0x02}, tag.UID)
	require.Equal(t, "hello there", tag.Text)

	// garbled UID still counts as a detection, with no UID
	tag, ok = parseTagLine("TAG,zz")
	require.True(t, ok)
	require.Empty(t, tag.UID)

	_, ok = parseTagLine("EVT,1,0")
	require.False(t, ok)
	_, ok = parseTagLine("TAG")
	require.False(t, ok)
}

func TestLineBuffer(t *testing.T) {
	var lb lineBuffer

	require.Empty(t, lb.feed([]byte("TAG,a1")))
	require.Equal(t, []string{"TAG,a1b2"}, lb.feed([]byte("b2\n")))

	got := lb.feed([]byte("one\n\n  two  \nthree"))
	require.Equal(t, []string{"one", "two"}, got)
	require.Equal(t, []string{"three"}, lb.feed([]byte("\n")))
}
