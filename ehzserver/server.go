// Package ehzserver serves the live view over HTTP: the status page,
// a JSON API, a websocket stream of page updates, static assets,
// the locale images and metrics.
package ehzserver

import (
	"bytes"
	"context"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/juju/loggo"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/asset"
	"github.com/rogpeppe/ehz/internal/notifier"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/view"
)

var logger = loggo.GetLogger("ehz.ehzserver")

// Monitor is the source of the page contents.
// It's implemented by *monitor.Monitor.
type Monitor interface {
	Snapshot(ctx context.Context) (*view.Page, error)
	SwitchLocale(ctx context.Context, tag locale.Tag) error
	Watch() *notifier.Watcher
	Locales() []locale.Tag
}

type Params struct {
	// Monitor provides the page contents.
	Monitor Monitor
	// ImageDir holds the directory served under /images/.
	// If it's empty, no images are served.
	ImageDir string
	// Gatherer is used to serve /metrics. If it's nil,
	// prometheus.DefaultGatherer is used.
	Gatherer prometheus.Gatherer
}

// Handler serves the HTTP interface.
type Handler struct {
	p      Params
	router *httprouter.Router
}

// New returns a new Handler.
func New(p Params) (*Handler, error) {
	if p.Monitor == nil {
		return nil, errgo.New("no monitor provided")
	}
	if p.Gatherer == nil {
		p.Gatherer = prometheus.DefaultGatherer
	}
	h := &Handler{
		p:      p,
		router: httprouter.New(),
	}
	gz := gziphandler.GzipHandler
	h.router.Handler("GET", "/", gz(http.HandlerFunc(h.serveHome)))
	h.router.Handler("GET", "/static/*path", gz(http.StripPrefix("/static/", http.FileServer(http.FS(asset.Data())))))
	if p.ImageDir != "" {
		h.router.Handler("GET", "/images/*path", http.StripPrefix("/images/", http.FileServer(http.Dir(p.ImageDir))))
	}
	h.router.Handler("GET", "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	// The websocket can't go through the gzip handler
	// because that doesn't support hijacking.
	h.router.GET("/api/watch", h.serveWatch)
	apiHandler := gz(newAPIHandler(h))
	for _, route := range apiRoutes {
		h.router.Handler(route.method, route.path, apiHandler)
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.router.ServeHTTP(w, req)
}

type homeParams struct {
	Page    *view.Page
	Locales []locale.Tag
}

func (h *Handler) serveHome(w http.ResponseWriter, req *http.Request) {
	page, err := h.p.Monitor.Snapshot(req.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	var b bytes.Buffer
	if err := homeTempl.Execute(&b, homeParams{
		Page:    page,
		Locales: h.p.Monitor.Locales(),
	}); err != nil {
		logger.Errorf("home template execution failed: %v", err)
		http.Error(w, "template execution failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(b.Bytes())
}
