package registry

import (
	"fmt"
	"log"
	"time"

	"github.com/tcalmant/nfc-voting/internal/device"
)

// ReaderSpec describes one configured tag reader.
type ReaderSpec struct {
	Type   string `yaml:"type"`   // "serial" or "tcp"
	Device string `yaml:"device"` // serial: "/dev/ttyACM0", "COM5"
	Baud   int    `yaml:"baud"`
	Addr   string `yaml:"addr"` // tcp: "127.0.0.1:9000"
}

// Registry probes the configured readers and hands out the ones that are
// actually connected.
type Registry struct {
	specs       []ReaderSpec
	stopTimeout time.Duration
}

func New(specs []ReaderSpec, stopTimeout time.Duration) *Registry {
	return &Registry{specs: specs, stopTimeout: stopTimeout}
}

// Enumerate opens every configured reader and returns a snapshot of those
// that responded. A reader that fails to open is logged and skipped; it is
// the association engine's job to decide whether what is left is enough.
// Zero readers is not an error here.
func (r *Registry) Enumerate() []*device.Reader {
	out := make([]*device.Reader, 0, len(r.specs))
	for i, spec := range r.specs {
		src, err := open(spec)
		if err != nil {
			log.Printf("[registry] reader %d skipped: %v", i, err)
			continue
		}
		log.Printf("[registry] reader %s ready", src.ID())
		out = append(out, device.NewReader(src, r.stopTimeout))
	}
	return out
}

func open(spec ReaderSpec) (device.Source, error) {
	switch spec.Type {
	case "serial", "":
		return device.OpenSerial(spec.Device, spec.Baud)
	case "tcp":
		return device.DialTCP(spec.Addr)
	default:
		return nil, fmt.Errorf("unknown reader type %q", spec.Type)
	}
}
