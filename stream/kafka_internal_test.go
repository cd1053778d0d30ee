package stream

import (
	"context"
	"io"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/segmentio/kafka-go"
	errgo "gopkg.in/errgo.v1"
)

type fakeKafkaReader struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (r *fakeKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, r.err
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeKafkaReader) Close() error {
	r.closed = true
	return nil
}

var kafkaNextTests = []struct {
	testName    string
	cancel      bool
	readErr     error
	expectErr   string
	expectCause error
}{{
	testName:    "eof",
	readErr:     io.EOF,
	expectErr:   `EOF`,
	expectCause: io.EOF,
}, {
	testName:  "read-error",
	readErr:   errgo.New("broker unavailable"),
	expectErr: `cannot read from Kafka: broker unavailable`,
}, {
	testName:    "cancelled",
	cancel:      true,
	readErr:     errgo.New("context done"),
	expectErr:   `context canceled`,
	expectCause: context.Canceled,
}}

func TestKafkaConnNext(t *testing.T) {
	c := qt.New(t)
	for _, test := range kafkaNextTests {
		c.Run(test.testName, func(c *qt.C) {
			r := &fakeKafkaReader{
				msgs: []kafka.Message{{Value: []byte("reading")}},
				err:  test.readErr,
			}
			conn := &kafkaConn{r: r}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			data, err := conn.Next(ctx)
			c.Assert(err, qt.IsNil)
			c.Assert(string(data), qt.Equals, "reading")
			if test.cancel {
				cancel()
			}
			_, err = conn.Next(ctx)
			c.Assert(err, qt.ErrorMatches, test.expectErr)
			if test.expectCause != nil {
				c.Assert(err, qt.Equals, test.expectCause)
			}
			c.Assert(conn.Close(), qt.IsNil)
			c.Assert(r.closed, qt.IsTrue)
		})
	}
}
