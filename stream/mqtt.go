package stream

import (
	"context"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	errgo "gopkg.in/errgo.v1"
)

// MQTTDialer subscribes to an MQTT topic on which each
// message holds one reading.
type MQTTDialer struct {
	// Broker holds the broker URL, for example tcp://localhost:1883.
	Broker string
	// Topic holds the topic to subscribe to.
	Topic string
	// Username and Password hold optional credentials.
	Username string
	Password string
	// ClientID holds the client id to use. If it's empty,
	// a random one is generated for each connection.
	ClientID string
	// QoS holds the subscription quality of service.
	QoS byte
}

// mqttBufferSize holds the number of messages that can be
// queued before the subscription callback blocks.
const mqttBufferSize = 64

// Dial implements Dialer.Dial.
func (d *MQTTDialer) Dial(ctx context.Context) (Conn, error) {
	c := newMQTTConn()
	clientID := d.ClientID
	if clientID == "" {
		clientID = "ehz-" + uuid.NewString()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(d.Broker).
		SetClientID(clientID).
		SetUsername(d.Username).
		SetPassword(d.Password).
		SetAutoReconnect(false).
		SetOrderMatters(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.connectionLost(err)
		})
	c.client = mqtt.NewClient(opts)
	if err := wait(ctx, c.client.Connect()); err != nil {
		return nil, errgo.Notef(err, "cannot connect to MQTT broker %q", d.Broker)
	}
	tok := c.client.Subscribe(d.Topic, d.QoS, func(_ mqtt.Client, m mqtt.Message) {
		c.deliver(m.Payload())
	})
	if err := wait(ctx, tok); err != nil {
		c.client.Disconnect(0)
		return nil, errgo.Notef(err, "cannot subscribe to %q", d.Topic)
	}
	return c, nil
}

func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

type mqttConn struct {
	client mqtt.Client
	msgs   chan []byte
	lost   chan error
	done   chan struct{}
}

func newMQTTConn() *mqttConn {
	return &mqttConn{
		msgs: make(chan []byte, mqttBufferSize),
		lost: make(chan error, 1),
		done: make(chan struct{}),
	}
}

// deliver queues a message payload. It blocks while the queue
// is full, until the connection is closed.
func (c *mqttConn) deliver(data []byte) {
	select {
	case c.msgs <- data:
	case <-c.done:
	}
}

// connectionLost records that the connection has gone. Only
// the first loss is kept.
func (c *mqttConn) connectionLost(err error) {
	select {
	case c.lost <- err:
	default:
	}
}

// Next implements Conn.Next.
func (c *mqttConn) Next(ctx context.Context) ([]byte, error) {
	// Deliver queued messages before reporting a lost connection.
	select {
	case data := <-c.msgs:
		return data, nil
	default:
	}
	select {
	case data := <-c.msgs:
		return data, nil
	case err := <-c.lost:
		if err == nil {
			return nil, io.EOF
		}
		return nil, errgo.Notef(err, "MQTT connection lost")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements Conn.Close.
func (c *mqttConn) Close() error {
	close(c.done)
	// Allow 250ms for the disconnect to complete.
	c.client.Disconnect(250)
	return nil
}
