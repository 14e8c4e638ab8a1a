package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	bufferCapacity = 64
	// connectivity signals are rare; the loop drains them every iteration.
	connectivityDepth = 16
)

// Options configures a RealLink.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topics   Topics
}

// RealLink is a phone link over an actual MQTT broker.
type RealLink struct {
	client paho.Client
	topics Topics
	conn   chan bool

	mu      sync.Mutex
	pending *pendingBuffer
	handler func([]byte)
}

// NewRealLink connects to the broker. An unreachable broker is not an
// error: the client keeps retrying in the background and the link reports
// connected once it succeeds.
func NewRealLink(o Options) (*RealLink, error) {
	l := &RealLink{
		topics:  o.Topics,
		conn:    make(chan bool, connectivityDepth),
		pending: newPendingBuffer(bufferCapacity),
	}

	will, err := FormatSystemPayload(WillEvent(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	clientID := o.ClientID
	if clientID == "" {
		clientID = "watchface"
	}
	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(o.Topics.System, will, 1, true).
		SetOnConnectHandler(l.onConnect).
		SetConnectionLostHandler(l.onConnectionLost)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	l.client = paho.NewClient(opts)
	token := l.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("link: broker %s not reachable yet, retrying in background", o.Broker)
		return l, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return l, nil
}

func (l *RealLink) onConnect(c paho.Client) {
	log.Printf("link: connected")
	c.Subscribe(l.topics.WeatherResponse, 1, func(_ paho.Client, m paho.Message) {
		l.mu.Lock()
		h := l.handler
		l.mu.Unlock()
		if h != nil {
			h(m.Payload())
		}
	})

	l.mu.Lock()
	msgs := l.pending.drainAll()
	l.mu.Unlock()
	if len(msgs) > 0 {
		log.Printf("link: replaying %d buffered messages", len(msgs))
	}
	for _, msg := range msgs {
		c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}

	l.signal(true)
}

func (l *RealLink) onConnectionLost(_ paho.Client, err error) {
	log.Printf("link: connection lost: %v", err)
	l.signal(false)
}

// signal never blocks the paho callback goroutine.
func (l *RealLink) signal(connected bool) {
	select {
	case l.conn <- connected:
	default:
		log.Printf("link: connectivity channel full, dropping %v", connected)
	}
}

// Connectivity implements Link.
func (l *RealLink) Connectivity() <-chan bool {
	return l.conn
}

// IsConnected implements ConnectionStatus.
func (l *RealLink) IsConnected() bool {
	return l.client.IsConnectionOpen()
}

// OnWeatherResponse implements Link.
func (l *RealLink) OnWeatherResponse(handler func(payload []byte)) {
	l.mu.Lock()
	l.handler = handler
	l.mu.Unlock()
}

// PublishScreen sends the retained screen mirror.
func (l *RealLink) PublishScreen(payload []byte) error {
	return l.publish(bufferedMsg{topic: l.topics.Screen, payload: payload, qos: 0, retained: true})
}

// PublishSystem sends a system lifecycle event to the broker.
func (l *RealLink) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events
	return l.publish(bufferedMsg{topic: l.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

// RequestWeather publishes a weather request. It is not buffered: a stale
// request replayed later would be answered with stale intent.
func (l *RealLink) RequestWeather(payload []byte) error {
	if !l.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	token := l.client.Publish(l.topics.WeatherRequest, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish weather request: timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish weather request: %w", err)
	}
	return nil
}

func (l *RealLink) publish(msg bufferedMsg) error {
	if !l.client.IsConnectionOpen() {
		l.mu.Lock()
		l.pending.push(msg)
		l.mu.Unlock()
		return nil
	}

	token := l.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (l *RealLink) Close() error {
	l.client.Disconnect(1000) // 1 second timeout
	return nil
}
