package config

import (
	"time"

	"github.com/tcalmant/nfc-voting/internal/publish"
)

func Defaults() *Config {
	return &Config{
		Vote: VoteConfig{
			Values: []string{"0", "1", "2"},
		},

		Feedback: FeedbackConfig{
			Sink:          "console",
			BlinkDuration: Duration(3 * time.Second),
			BlinkPeriod:   Duration(100 * time.Millisecond),
		},

		Association: AssocConfig{
			Debounce:    Duration(300 * time.Millisecond),
			StopTimeout: Duration(5 * time.Second),
			Timeout:     0,
			MinRacers:   1,
		},

		MQTT: publish.MQTTConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    1883,
			Topic:   "vote",
			Payload: "{timestamp},{uid},{value}",
		},

		Web: WebConfig{
			Enabled:   true,
			Host:      "0.0.0.0",
			Port:      8080,
			StaticDir: "",
		},

		StatePath: "./state/state.json",
	}
}
