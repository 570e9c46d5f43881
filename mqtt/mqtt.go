// mqtt.go - MQTT client used to publish cart events to the broker

package mqtt // Declares the package name

import ( // Import required packages
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang" // MQTT client library
)

// ErrNotConnected is returned by Publish before Connect succeeded.
var ErrNotConnected = errors.New("mqtt: not connected")

var ( // Package-level client, mirrors database.DB
	mu     sync.RWMutex
	client paho.Client
)

const publishTimeout = 5 * time.Second // Upper bound for a broker acknowledgement

// Connect dials the broker. An empty address leaves publishing disabled.
func Connect(broker string) error {
	if broker == "" {
		return nil
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("cafesantander-%d", time.Now().UnixNano())).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "err", err)
		})

	c := paho.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return fmt.Errorf("mqtt: connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect to %s: %w", broker, err)
	}

	mu.Lock()
	client = c
	mu.Unlock()
	slog.Info("mqtt connected", "broker", broker)
	return nil
}

// Disconnect closes the broker connection, if any.
func Disconnect() {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		client.Disconnect(250)
		client = nil
	}
}

// Publish sends payload to topic. Strings and byte slices go as-is, anything else as JSON.
func Publish(topic string, payload interface{}) error {
	mu.RLock()
	c := client
	mu.RUnlock()
	if c == nil || !c.IsConnected() {
		return ErrNotConnected
	}

	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	case []byte:
		body = p
	default:
		var err error
		if body, err = json.Marshal(p); err != nil {
			return fmt.Errorf("mqtt: encode payload: %w", err)
		}
	}

	token := c.Publish(topic, 1, false, body) // QoS 1, not retained
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt: publish to %s timed out", topic)
	}
	return token.Error()
}

// CartTopic is the topic carrying a user's cart.
func CartTopic(userID uint) string {
	return fmt.Sprintf("cafesantander/carts/%d", userID)
}
