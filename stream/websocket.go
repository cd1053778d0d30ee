package stream

import (
	"context"
	"io"

	"github.com/gorilla/websocket"
	errgo "gopkg.in/errgo.v1"
)

// WebsocketDialer connects to a websocket that sends
// one reading per message.
type WebsocketDialer struct {
	// URL holds the ws:// or wss:// URL to connect to.
	URL string
	// Dialer is used to connect. If it's nil,
	// websocket.DefaultDialer is used.
	Dialer *websocket.Dialer
}

// Dial implements Dialer.Dial.
func (d *WebsocketDialer) Dial(ctx context.Context) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		if resp != nil {
			return nil, errgo.Notef(err, "cannot connect to websocket (status %q)", resp.Status)
		}
		return nil, errgo.Notef(err, "cannot connect to websocket")
	}
	return &websocketConn{
		conn: conn,
	}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

// Next implements Conn.Next.
func (c *websocketConn) Next(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		c.conn.Close()
	})
	defer stop()
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, errgo.Notef(err, "cannot read from websocket")
	}
	return data, nil
}

// Close implements Conn.Close.
func (c *websocketConn) Close() error {
	return c.conn.Close()
}
