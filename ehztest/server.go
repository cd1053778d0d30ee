// Package ehztest provides a fake reading producer for tests.
// It serves readings as server-sent events on /events and as
// websocket text messages on /ws.
package ehztest

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/juju/loggo"
	"github.com/julienschmidt/httprouter"
	errgo "gopkg.in/errgo.v1"
	"gopkg.in/httprequest.v1"

	"github.com/rogpeppe/ehz/reading"
)

var logger = loggo.GetLogger("ehz.ehztest")

// Server is a fake producer of readings.
type Server struct {
	// Addr holds the address the server is listening on.
	Addr string
	lis  net.Listener

	mu     sync.Mutex
	subs   map[*subscriber]bool
	change chan struct{}
}

type subscriber struct {
	msgs chan []byte
	done chan struct{}
}

var reqServer = &httprequest.Server{}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewServer starts a new server listening on the given address.
// Use "localhost:0" to choose an unused port.
func NewServer(addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	srv := &Server{
		Addr:   lis.Addr().String(),
		lis:    lis,
		subs:   make(map[*subscriber]bool),
		change: make(chan struct{}),
	}
	router := httprouter.New()
	router.GET("/events", srv.serveEvents)
	router.GET("/ws", srv.serveWebsocket)
	for _, h := range reqServer.Handlers(srv.handler) {
		router.Handle(h.Method, h.Path, h.Handle)
	}
	go http.Serve(lis, router)
	return srv, nil
}

// URL returns the URL of the given path on the server.
func (srv *Server) URL(path string) string {
	return "http://" + srv.Addr + path
}

// WebsocketURL returns the URL of the websocket stream.
func (srv *Server) WebsocketURL() string {
	return "ws://" + srv.Addr + "/ws"
}

// Close stops the server listening. Existing streams are
// disconnected.
func (srv *Server) Close() {
	srv.lis.Close()
	srv.DisconnectAll()
}

// Send sends the given message, which need not be a valid
// reading, to all current subscribers.
func (srv *Server) Send(data []byte) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for sub := range srv.subs {
		select {
		case sub.msgs <- data:
		default:
			logger.Warningf("subscriber too slow; dropping message")
		}
	}
}

// SendReading sends r to all current subscribers.
func (srv *Server) SendReading(r *reading.Reading) {
	data, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	srv.Send(data)
}

// DisconnectAll ends all current streams as if the
// producer had restarted.
func (srv *Server) DisconnectAll() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	for sub := range srv.subs {
		close(sub.done)
		delete(srv.subs, sub)
	}
	srv.changed()
}

// Subscribers returns the number of connected subscribers.
func (srv *Server) Subscribers() int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return len(srv.subs)
}

// WaitSubscribers waits until there are exactly n subscribers.
func (srv *Server) WaitSubscribers(n int, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		srv.mu.Lock()
		got, change := len(srv.subs), srv.change
		srv.mu.Unlock()
		if got == n {
			return nil
		}
		select {
		case <-change:
		case <-deadline:
			return errgo.Newf("timed out waiting for %d subscribers (got %d)", n, got)
		}
	}
}

// changed must be called with srv.mu held.
func (srv *Server) changed() {
	close(srv.change)
	srv.change = make(chan struct{})
}

func (srv *Server) subscribe() *subscriber {
	sub := &subscriber{
		msgs: make(chan []byte, 100),
		done: make(chan struct{}),
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.subs[sub] = true
	srv.changed()
	return sub
}

func (srv *Server) unsubscribe(sub *subscriber) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.subs[sub] {
		delete(srv.subs, sub)
		srv.changed()
	}
}

func (srv *Server) serveEvents(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	// A comment line to get the headers to the client.
	fmt.Fprint(w, ": ok\n\n")
	flusher.Flush()
	sub := srv.subscribe()
	defer srv.unsubscribe(sub)
	ctx := req.Context()
	for {
		select {
		case data := <-sub.msgs:
			if err := writeEvent(w, data); err != nil {
				return
			}
			flusher.Flush()
		case <-sub.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, data []byte) error {
	var buf strings.Builder
	fmt.Fprintf(&buf, "id: %s\n", uuid.New())
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteString("\n")
	_, err := w.Write([]byte(buf.String()))
	return err
}

func (srv *Server) serveWebsocket(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Errorf("cannot upgrade websocket: %v", err)
		return
	}
	defer conn.Close()
	sub := srv.subscribe()
	defer srv.unsubscribe(sub)
	// Read messages so that we notice when the client goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case data := <-sub.msgs:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-sub.done:
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			return
		case <-closed:
			return
		}
	}
}

func (srv *Server) handler(p httprequest.Params) (handler, context.Context, error) {
	return handler{srv}, p.Context, nil
}

type handler struct {
	srv *Server
}

type pushReq struct {
	httprequest.Route `httprequest:"POST /push"`
	Reading           *reading.Reading `httprequest:",body"`
}

// Push sends a reading to all subscribers.
func (h handler) Push(req *pushReq) error {
	if req.Reading == nil {
		return errgo.New("no reading in request")
	}
	h.srv.SendReading(req.Reading)
	return nil
}

type subscribersReq struct {
	httprequest.Route `httprequest:"GET /subscribers"`
}

type subscribersResp struct {
	Count int `json:"count"`
}

// Subscribers returns the number of connected subscribers.
func (h handler) Subscribers(req *subscribersReq) (*subscribersResp, error) {
	return &subscribersResp{
		Count: h.srv.Subscribers(),
	}, nil
}
