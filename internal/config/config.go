package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tcalmant/nfc-voting/internal/leds"
	"github.com/tcalmant/nfc-voting/internal/publish"
	"github.com/tcalmant/nfc-voting/internal/registry"
)

const defaultConfigPath = "./configs/nfc-voting.yml"

type ReaderSpec = registry.ReaderSpec

// Duration accepts "300ms"-style strings or plain numbers of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!int", "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	default:
		var s string
		if err := value.Decode(&s); err != nil {
			return fmt.Errorf("bad duration at line %d", value.Line)
		}
		dd, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", s, err)
		}
		*d = Duration(dd)
		return nil
	}
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type VoteConfig struct {
	Values []string `yaml:"values"` // ordered, unique
}

type AssocConfig struct {
	Debounce    Duration `yaml:"debounce"`
	StopTimeout Duration `yaml:"stop_timeout"`
	Timeout     Duration `yaml:"timeout"` // 0 = operator-paced
	MinRacers   int      `yaml:"min_racers"`
}

type FeedbackConfig struct {
	Sink          string   `yaml:"sink"` // "console" or "gpio"
	BlinkDuration Duration `yaml:"blink_duration"`
	BlinkPeriod   Duration `yaml:"blink_period"`
}

type PublishConfig struct {
	// FeedbackOnError routes publisher failures into the invalid-LED path.
	// Off by default: a lost broker should not look like a lost vote.
	FeedbackOnError bool `yaml:"feedback_on_error"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type Config struct {
	Vote        VoteConfig           `yaml:"vote"`
	Leds        map[string]leds.Pins `yaml:"leds"`
	Feedback    FeedbackConfig       `yaml:"feedback"`
	Readers     []ReaderSpec         `yaml:"readers"`
	Association AssocConfig          `yaml:"association"`
	MQTT        publish.MQTTConfig   `yaml:"mqtt"`
	Publish     PublishConfig        `yaml:"publish"`
	Web         WebConfig            `yaml:"web"`
	StatePath   string               `yaml:"state_path"`
}

func Load() (*Config, error) {
	path := os.Getenv("NFCVOTE_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse yaml %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	log.Printf("[config] loaded %s: %d values, %d readers", path, len(cfg.Vote.Values), len(cfg.Readers))
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Vote.Values) == 0 {
		return fmt.Errorf("no vote values configured")
	}
	seen := map[string]bool{}
	for _, v := range c.Vote.Values {
		if v == "" {
			return fmt.Errorf("empty vote value")
		}
		if seen[v] {
			return fmt.Errorf("duplicate vote value %q", v)
		}
		seen[v] = true
	}
	for v := range c.Leds {
		if !seen[v] {
			log.Printf("[config] leds entry %q matches no vote value", v)
		}
	}
	switch c.Feedback.Sink {
	case "", "console", "gpio":
	default:
		return fmt.Errorf("unknown feedback sink %q", c.Feedback.Sink)
	}
	return nil
}

// AllPins flattens the LED wiring for sink setup.
func (c *Config) AllPins() []int {
	var out []int
	for _, p := range c.Leds {
		if p.Valid != nil {
			out = append(out, *p.Valid)
		}
		if p.Invalid != nil {
			out = append(out, *p.Invalid)
		}
	}
	return out
}
