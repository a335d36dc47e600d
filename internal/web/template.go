package web

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"temp": func(v float64, stale bool) string {
		if stale {
			return "--.- °C"
		}
		return fmt.Sprintf("%.1f °C", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>PoolMon</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.stale { color: orange; }
</style>
</head>
<body>
<h1>PoolMon{{if .Version}} v{{.Version}}{{end}}</h1>

<h2>Pumps</h2>
<table>
<tr><th>Circulation control</th><td class="{{if eq .ControlCP "ON"}}on{{else}}off{{end}}">{{.ControlCP}}</td></tr>
<tr><th>Pool control</th><td class="{{if eq .ControlPP "ON"}}on{{else}}off{{end}}">{{.ControlPP}}</td></tr>
<tr><th>Circulation reported</th><td class="{{if eq .PumpCP "ON"}}on{{else if eq .PumpCP "OFF"}}off{{else}}unknown{{end}}">{{.PumpCP}}</td></tr>
<tr><th>Pool reported</th><td class="{{if eq .PumpPP "ON"}}on{{else if eq .PumpPP "OFF"}}off{{else}}unknown{{end}}">{{.PumpPP}}</td></tr>
</table>

<h2>Sensors</h2>
<table>
{{range .Temps}}<tr><th>T{{.Index}} {{.Label}}</th><td{{if .Stale}} class="stale"{{end}}>{{temp .Value .Stale}}</td></tr>
{{end}}<tr><th>Flow</th><td{{if .FlowStale}} class="stale"{{end}}>{{if .FlowStale}}---.- LPM{{else}}{{printf "%.1f" .FlowRate}} LPM{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Broker}}</td></tr>
<tr><th>RX / TX</th><td>{{.RxCount}} / {{.TxCount}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Display page</th><td>{{if .Page}}{{.Page}}{{else}}unknown{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap Snapshot) {
	_ = indexTmpl.Execute(w, snap)
}
