package stream

import (
	"context"
	"io"

	"github.com/segmentio/kafka-go"
	errgo "gopkg.in/errgo.v1"
)

// KafkaDialer reads readings from a Kafka topic, one
// reading per message value.
type KafkaDialer struct {
	// Brokers holds the addresses of the Kafka brokers.
	Brokers []string
	// Topic holds the topic to read.
	Topic string
	// GroupID holds the consumer group. If it's empty, the
	// first partition of the topic is read from its end.
	GroupID string
}

// Dial implements Dialer.Dial. The connection to the brokers
// is made lazily by the first call to Next.
func (d *KafkaDialer) Dial(ctx context.Context) (Conn, error) {
	if len(d.Brokers) == 0 {
		return nil, errgo.New("no Kafka brokers configured")
	}
	if d.Topic == "" {
		return nil, errgo.New("no Kafka topic configured")
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     d.Brokers,
		Topic:       d.Topic,
		GroupID:     d.GroupID,
		MinBytes:    1,
		MaxBytes:    1e6,
		StartOffset: kafka.LastOffset,
	})
	if d.GroupID == "" {
		if err := r.SetOffset(kafka.LastOffset); err != nil {
			r.Close()
			return nil, errgo.Notef(err, "cannot set Kafka offset")
		}
	}
	return &kafkaConn{
		r: r,
	}, nil
}

// kafkaReader is the part of *kafka.Reader used by kafkaConn.
type kafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type kafkaConn struct {
	r kafkaReader
}

// Next implements Conn.Next.
func (c *kafkaConn) Next(ctx context.Context) ([]byte, error) {
	m, err := c.r.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errgo.Notef(err, "cannot read from Kafka")
	}
	return m.Value, nil
}

// Close implements Conn.Close.
func (c *kafkaConn) Close() error {
	return c.r.Close()
}
