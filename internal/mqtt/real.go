package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity is the number of messages kept while the broker is unreachable.
const bufferCapacity = 100

// DefaultClientID is the MQTT client id used when none is configured.
const DefaultClientID = "gesture-sensor"

// RealPublisher publishes to an actual MQTT broker.
// Clip and system messages published while disconnected are buffered and
// replayed in order on the next connection. Lockout commands are dropped.
type RealPublisher struct {
	client paho.Client

	// mu orders every hand-off to the client: a replay completes before
	// any newer message is sent.
	mu sync.Mutex
	// online is set once the buffer has been replayed for the current
	// connection.
	online bool
	buf    *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. The broker does
// not have to be reachable yet: the client keeps retrying in the background.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = DefaultClientID
	}
	p := &RealPublisher{buf: newRingBuffer(bufferCapacity)}

	will, err := FormatSystemPayload(SystemEvent{Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, buffering until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := p.buf.drainAll()
	log.Printf("mqtt: connected, replaying %d buffered messages", len(msgs))
	// Tokens are not awaited inside the handler.
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	p.online = true
}

func (p *RealPublisher) onConnectionLost(c paho.Client, err error) {
	log.Printf("mqtt: connection lost: %v", err)
	p.mu.Lock()
	// Handlers run on their own goroutines; a reconnect may already have
	// been replayed.
	if !c.IsConnected() {
		p.online = false
	}
	p.mu.Unlock()
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.online || !p.client.IsConnected() {
		if msg.topic == TopicLockout {
			p.mu.Unlock()
			log.Printf("mqtt: offline, dropping lockout command")
			return nil
		}
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	p.mu.Unlock()

	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// PublishClip sends a clip request to the recording backend.
func (p *RealPublisher) PublishClip(req ClipRequest) error {
	payload, err := FormatClipPayload(req)
	if err != nil {
		return fmt.Errorf("format clip payload: %w", err)
	}

	// QoS 1 (at-least-once): a lost request is a lost clip
	return p.publish(bufferedMsg{topic: TopicClip, payload: payload, qos: 1})
}

// PublishLockout sends a reserved-button lockout command.
func (p *RealPublisher) PublishLockout(cmd LockoutCommand) error {
	payload, err := FormatLockoutPayload(cmd)
	if err != nil {
		return fmt.Errorf("format lockout payload: %w", err)
	}

	// QoS 0 and never buffered: a lockout replayed after reconnect would
	// disable buttons long after the chord.
	return p.publish(bufferedMsg{topic: TopicLockout, payload: payload, qos: 0})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	return p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
