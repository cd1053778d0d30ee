package ehzserver

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	errgo "gopkg.in/errgo.v1"
	"gopkg.in/httprequest.v1"

	"github.com/rogpeppe/ehz/googlecharts"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/view"
)

var reqServer httprequest.Server

// apiRoutes holds the routes served by the API handler.
var apiRoutes = []struct {
	method string
	path   string
}{
	{"GET", "/api/status"},
	{"GET", "/api/chart"},
	{"GET", "/api/page"},
	{"GET", "/api/locale"},
	{"PUT", "/api/locale/:tag"},
}

func newAPIHandler(h *Handler) http.Handler {
	r := httprouter.New()
	for _, rh := range reqServer.Handlers(func(p httprequest.Params) (*apiHandler, context.Context, error) {
		return &apiHandler{h}, p.Context, nil
	}) {
		r.Handle(rh.Method, rh.Path, rh.Handle)
	}
	return r
}

type apiHandler struct {
	h *Handler
}

type statusRequest struct {
	httprequest.Route `httprequest:"GET /api/status"`
}

type statusResponse struct {
	Locale locale.Tag  `json:"locale"`
	Status view.Status `json:"status"`
}

// GetStatus returns the current status indicators.
func (h *apiHandler) GetStatus(p httprequest.Params, _ *statusRequest) (*statusResponse, error) {
	page, err := h.h.p.Monitor.Snapshot(p.Context)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	return &statusResponse{
		Locale: page.Locale,
		Status: page.Status,
	}, nil
}

type chartRequest struct {
	httprequest.Route `httprequest:"GET /api/chart"`
}

// GetChart returns the live chart data and options.
func (h *apiHandler) GetChart(p httprequest.Params, _ *chartRequest) (*googlecharts.Chart, error) {
	page, err := h.h.p.Monitor.Snapshot(p.Context)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	return page.Chart, nil
}

type pageRequest struct {
	httprequest.Route `httprequest:"GET /api/page"`
}

// GetPage returns the whole page, as sent on /api/watch.
func (h *apiHandler) GetPage(p httprequest.Params, _ *pageRequest) (*view.Page, error) {
	page, err := h.h.p.Monitor.Snapshot(p.Context)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	return page, nil
}

type localeRequest struct {
	httprequest.Route `httprequest:"GET /api/locale"`
}

type localeResponse struct {
	Locale    locale.Tag   `json:"locale"`
	Available []locale.Tag `json:"available"`
}

// GetLocale returns the active locale and the available ones.
func (h *apiHandler) GetLocale(p httprequest.Params, _ *localeRequest) (*localeResponse, error) {
	page, err := h.h.p.Monitor.Snapshot(p.Context)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	return &localeResponse{
		Locale:    page.Locale,
		Available: h.h.p.Monitor.Locales(),
	}, nil
}

type setLocaleRequest struct {
	httprequest.Route `httprequest:"PUT /api/locale/:tag"`
	Tag               locale.Tag `httprequest:"tag,path"`
}

// SetLocale switches the active locale.
func (h *apiHandler) SetLocale(p httprequest.Params, req *setLocaleRequest) error {
	err := h.h.p.Monitor.SwitchLocale(p.Context, req.Tag)
	if errgo.Cause(err) == locale.ErrUnknownLocale {
		return httprequest.Errorf(httprequest.CodeNotFound, "unknown locale %q", req.Tag)
	}
	if err != nil {
		return errgo.Mask(err)
	}
	return nil
}
