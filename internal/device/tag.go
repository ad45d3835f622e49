package device

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNoUID marks a tag that was detected but whose UID could not be read.
// The vote engine turns this into the invalid-LED path.
var ErrNoUID = errors.New("tag has no readable UID")

// Tag is one tag presentation as reported by a reader.
type Tag struct {
	UID  []byte
	Text string
}

func (t Tag) UIDHex() string {
	return hex.EncodeToString(t.UID)
}

// parseTagLine decodes the reader line protocol: TAG,<hex-uid>[,<text>].
// A line that is not a tag report returns ok=false. A TAG line with a
// garbled UID still counts as a detection, just with an empty UID.
func parseTagLine(line string) (Tag, bool) {
	parts := strings.SplitN(line, ",", 3)
	if parts[0] != "TAG" || len(parts) < 2 {
		return Tag{}, false
	}
	var tag Tag
	if uid, err := hex.DecodeString(strings.TrimSpace(parts[1])); err == nil {
		tag.UID = uid
	}
	if len(parts) == 3 {
		tag.Text = strings.TrimSpace(parts[2])
	}
	return tag, true
}
