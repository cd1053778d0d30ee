package ehztest_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gorilla/websocket"

	"github.com/rogpeppe/ehz/ehztest"
	"github.com/rogpeppe/ehz/reading"
)

func newServer(c *qt.C) *ehztest.Server {
	srv, err := ehztest.NewServer("localhost:0")
	c.Assert(err, qt.IsNil)
	c.Cleanup(srv.Close)
	return srv
}

func TestEvents(t *testing.T) {
	c := qt.New(t)
	srv := newServer(c)
	resp, err := http.Get(srv.URL("/events"))
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.Header.Get("Content-Type"), qt.Equals, "text/event-stream")
	err = srv.WaitSubscribers(1, 5*time.Second)
	c.Assert(err, qt.IsNil)

	srv.Send([]byte("line1\nline2"))
	r := bufio.NewReader(resp.Body)
	var lines []string
	for {
		line, err := r.ReadString('\n')
		c.Assert(err, qt.IsNil)
		line = strings.TrimSuffix(line, "\n")
		if line == "" && len(lines) > 1 {
			break
		}
		if strings.HasPrefix(line, "id: ") || line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		lines = append(lines, line)
	}
	c.Assert(lines, qt.DeepEquals, []string{"data: line1", "data: line2"})

	srv.DisconnectAll()
	c.Assert(srv.Subscribers(), qt.Equals, 0)
}

func TestPush(t *testing.T) {
	c := qt.New(t)
	srv := newServer(c)
	conn, _, err := websocket.DefaultDialer.Dial(srv.WebsocketURL(), nil)
	c.Assert(err, qt.IsNil)
	defer conn.Close()
	err = srv.WaitSubscribers(1, 5*time.Second)
	c.Assert(err, qt.IsNil)

	resp, err := http.Post(srv.URL("/push"), "application/json", bytes.NewReader([]byte(`{"time":"10:00:00","value":-5}`)))
	c.Assert(err, qt.IsNil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)

	_, data, err := conn.ReadMessage()
	c.Assert(err, qt.IsNil)
	r, err := reading.Parse(data)
	c.Assert(err, qt.IsNil)
	c.Assert(r, qt.DeepEquals, &reading.Reading{
		Time:  "10:00:00",
		Power: -5,
	})

	resp, err = http.Get(srv.URL("/subscribers"))
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	var count struct {
		Count int `json:"count"`
	}
	err = json.NewDecoder(resp.Body).Decode(&count)
	c.Assert(err, qt.IsNil)
	c.Assert(count.Count, qt.Equals, 1)
}

func TestGenerator(t *testing.T) {
	c := qt.New(t)
	g := &ehztest.Generator{
		Interval:    30 * time.Second,
		TotalEnergy: 100,
		MeterEvery:  2,
	}
	noon := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	night := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	r := g.Next(noon)
	c.Assert(r.Time, qt.Equals, "13:00:00")
	c.Assert(r.Power < 0, qt.IsTrue)
	c.Assert(*r.IsFeedIn, qt.IsTrue)
	c.Assert(*r.Consumption, qt.Equals, 0.0)
	c.Assert(r.TotalEnergy, qt.Not(qt.IsNil))

	r = g.Next(night)
	c.Assert(r.Power > 0, qt.IsTrue)
	c.Assert(r.FeedIn(), qt.IsFalse)
	c.Assert(r.TotalEnergy, qt.IsNil)

	r = g.Next(night.Add(30 * time.Second))
	c.Assert(r.TotalEnergy, qt.Not(qt.IsNil))
	c.Assert(g.TotalEnergy > 100, qt.IsTrue)
}
