package publish

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

// MQTTConfig mirrors the [mqtt] section of the kiosk configuration.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Topic   string `yaml:"topic"`
	Payload string `yaml:"payload"` // template: {timestamp},{uid},{value},{session}
}

const publishTimeout = 5 * time.Second

// MQTTPublisher publishes each vote to the configured topic at QoS 2, so
// the dashboard counts every vote exactly once.
type MQTTPublisher struct {
	client  mqtt.Client
	topic   string
	payload string
}

func NewMQTT(cfg MQTTConfig) (*MQTTPublisher, error) {
	clientID := "nfcvote-" + uuid.NewString()[:8]
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("[mqtt] connected as %s", clientID)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("[mqtt] connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s:%d: %w", cfg.Host, cfg.Port, tok.Error())
	}
	return &MQTTPublisher{client: client, topic: cfg.Topic, payload: cfg.Payload}, nil
}

func (p *MQTTPublisher) Name() string { return "mqtt" }

func (p *MQTTPublisher) NotifyVote(rec vote.Record) error {
	payload := strings.NewReplacer(
		"{timestamp}", strconv.FormatInt(rec.Timestamp, 10),
		"{uid}", rec.UIDHex(),
		"{value}", rec.Value,
		"{session}", rec.Session,
	).Replace(p.payload)

	tok := p.client.Publish(p.topic, 2, false, payload)
	if !tok.WaitTimeout(publishTimeout) {
		return errors.New("publish timed out")
	}
	return tok.Error()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
