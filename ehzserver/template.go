package ehzserver

import (
	"html/template"
	"strings"

	"github.com/rogpeppe/ehz/locale"
)

var tmplFuncs = template.FuncMap{
	"upper": func(t locale.Tag) string {
		return strings.ToUpper(string(t))
	},
}

func newTemplate(s string) *template.Template {
	return template.Must(template.New("").Funcs(tmplFuncs).Parse(s))
}

var homeTempl = newTemplate(`<!DOCTYPE html>
<html lang="{{.Page.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title data-key="app_title">{{.Page.Text "app_title"}}</title>
<link rel="stylesheet" href="/static/style.css">
<script src="https://www.gstatic.com/charts/loader.js"></script>
</head>
<body>
<header>
	<h1 data-key="app_title">{{.Page.Text "app_title"}}</h1>
	<div>{{range .Locales}}
		<button class="lang-btn{{if eq . $.Page.Locale}} active{{end}}" data-lang="{{.}}">{{upper .}}</button>{{end}}
	</div>
</header>
<section class="card">
	<h2 data-key="card_live_title">{{.Page.Text "card_live_title"}}</h2>
	<div id="live-chart"></div>
</section>
<section class="card">
	<h2 data-key="card_status_title">{{.Page.Text "card_status_title"}}</h2>
	<p><span data-key="last_update">{{.Page.Text "last_update"}}</span> <span id="last-update">{{.Page.Status.LastUpdate}}</span></p>
	<h3 data-key="section_current_values">{{.Page.Text "section_current_values"}}</h3>
	<div class="stats">
		<div class="stat"><div data-key="stat_power">{{.Page.Text "stat_power"}}</div><div class="value"><span id="power">{{.Page.Status.Power}}</span> <span data-key="unit_power">{{.Page.Text "unit_power"}}</span></div></div>
		<div class="stat"><div data-key="stat_meter">{{.Page.Text "stat_meter"}}</div><div class="value"><span id="meter">{{.Page.Status.Meter}}</span> <span data-key="unit_meter">{{.Page.Text "unit_meter"}}</span></div></div>
		<div class="stat {{.Page.Status.Severity.Class}}" id="direction-status"><div data-key="stat_direction">{{.Page.Text "stat_direction"}}</div><div class="value" id="direction">{{.Page.Status.Direction}}</div></div>
	</div>
</section>
{{range $i, $src := .Page.Images}}
<section class="card"><img data-index="{{$i}}" src="{{$src}}" alt=""></section>
{{end}}
<footer data-key="footer_note">{{.Page.Text "footer_note"}}</footer>
<script src="/static/app.js"></script>
</body>
</html>
`)
