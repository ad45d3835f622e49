package vote

import "encoding/hex"

// Record describes one captured vote. It is built the instant a tag is
// detected on an assigned reader, handed to the publishers and discarded.
type Record struct {
	Timestamp int64  `json:"timestamp"` // unix seconds
	UID       []byte `json:"-"`         // raw tag UID
	Value     string `json:"value"`
	Session   string `json:"session"`
}

// UIDHex returns the tag UID as a lowercase hex string, the form used in
// published payloads and on the dashboard.
func (r Record) UIDHex() string {
	return hex.EncodeToString(r.UID)
}
