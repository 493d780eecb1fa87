// Package mqtt publishes fleet state and notifications to an MQTT broker so
// external consumers (dashboards, wall displays) can follow the fleet without
// polling the HTTP API.
package mqtt

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hospigo/fleetd/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled           bool   `json:"enabled"`
	Broker            string `json:"broker"`
	ClientID          string `json:"client_id"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	QoS               byte   `json:"qos"`
	StateTopic        string `json:"state_topic"`
	NotificationTopic string `json:"notification_topic"`
}

// SetDefaults applies the standard topics.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "hospigo-fleetd"
	}
	if c.StateTopic == "" {
		c.StateTopic = "hospigo/fleet/state"
	}
	if c.NotificationTopic == "" {
		c.NotificationTopic = "hospigo/notifications"
	}
}

// Validate checks mandatory fields for an enabled client.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	return nil
}

// Publisher sends JSON payloads to the broker.
type Publisher interface {
	Publish(topic string, retained bool, payload any) error
	Close()
}

// PahoClient implements Publisher using Eclipse Paho.
type PahoClient struct {
	cli paho.Client
	qos byte
	log logger.Logger
}

// NewPahoClient connects to the MQTT broker.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt_client")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := paho.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoClient{cli: c, qos: cfg.QoS, log: log}, nil
}

// Publish marshals the payload to JSON and sends it.
func (p *PahoClient) Publish(topic string, retained bool, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := p.cli.Publish(topic, p.qos, retained, raw)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *PahoClient) Close() {
	p.cli.Disconnect(250)
}
