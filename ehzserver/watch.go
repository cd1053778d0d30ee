package ehzserver

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{}

// serveWatch sends the page as JSON over a websocket,
// first as it is now and then after every change.
func (h *Handler) serveWatch(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Infof("cannot upgrade watch request: %v", err)
		return
	}
	defer conn.Close()
	watcher := h.p.Monitor.Watch()
	defer watcher.Close()
	// Read from the connection so that close messages are
	// handled and we notice when the client goes away.
	go func() {
		defer watcher.Close()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	for watcher.Next() {
		if err := conn.WriteJSON(watcher.Value()); err != nil {
			logger.Debugf("watch connection closed: %v", err)
			return
		}
	}
}
