// Package mqtt publishes update events to an MQTT broker.
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/daycare-api/pkg/config"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	// quiesce is the time in milliseconds granted to in-flight messages on Close.
	quiesce = 250
)

const qosAtLeastOnce byte = 1

// ErrNotConnected is returned by Publish while the connection is down.
var ErrNotConnected = errors.New("mqtt: not connected")

// Client publishes QoS 1 messages on a shared paho connection.
type Client struct {
	client paho.Client
	logger *zap.Logger
}

// Options builds the paho options for cfg. The client id gets a random suffix
// so replicas never steal each other's session.
func Options(cfg config.EventsConfig, logger *zap.Logger) *paho.ClientOptions {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "daycare-api"
	}
	clientID += "-" + uuid.NewString()[:8]

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			logger.Info("mqtt connected", zap.String("broker", cfg.Broker), zap.String("client_id", clientID))
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	return opts
}

// NewClient connects to the configured broker.
func NewClient(cfg config.EventsConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := paho.NewClient(Options(cfg, logger))
	if err := wait(client.Connect(), connectTimeout); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, err)
	}
	return &Client{client: client, logger: logger}, nil
}

// Publish sends payload to topic and waits for the broker ack.
func (c *Client) Publish(topic string, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	if err := wait(c.client.Publish(topic, qosAtLeastOnce, false, payload), publishTimeout); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(quiesce)
}

func wait(token paho.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timed out after %s", timeout)
	}
	return token.Error()
}
