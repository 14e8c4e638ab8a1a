package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/watchface/internal/display"
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
	"orNone": func(s string) string {
		if s == "" {
			return "none"
		}
		return s
	},
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Watchface</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.watch { background: #000; color: #fff; width: 144px; height: 168px; padding: 8px; border-radius: 12px; text-align: center; }
.watch .time { font-size: 2.2em; margin-top: 0.4em; }
.watch .date { font-size: 1.1em; }
.watch .icon { margin-top: 1em; color: #ccc; }
.watch .temp { font-size: 1.6em; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Watchface{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<div class="watch">
<div id="w-time" class="time">{{.Time}}</div>
<div id="w-date" class="date">{{.Date}}</div>
<div id="w-icon" class="icon">{{orNone (printf "%s" .Icon)}}</div>
<div id="w-temp" class="temp">{{.TemperatureText}}</div>
</div>

<h2>Controller</h2>
<table>
<tr><th>Cadence</th><td id="cadence">{{.Cadence}}</td></tr>
<tr><th>Animation step</th><td id="anim">{{.AnimationStep}}</td></tr>
</table>

<h2>Phone link</h2>
<table>
<tr><th>Link</th><td id="link" class="{{if .LinkConnected}}connected{{else}}disconnected{{end}}">{{if .LinkConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Weather</h2>
<table>
<tr><th>Updated</th><td>{{if .Weather.Updated}}yes{{else}}no{{end}}</td></tr>
<tr><th>Error</th><td>{{.Weather.Error}}</td></tr>
<tr><th>Temperature</th><td>{{.Weather.Temperature}}</td></tr>
<tr><th>Condition</th><td>{{.Weather.Condition}}</td></tr>
<tr><th>Observed</th><td>{{stamp .Weather.CurrentTime}}</td></tr>
<tr><th>Sunrise</th><td>{{stamp .Weather.Sunrise}}</td></tr>
<tr><th>Sunset</th><td>{{stamp .Weather.Sunset}}</td></tr>
<tr><th>Source</th><td>{{.Config.WeatherSource}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Locale</th><td>{{.Config.Locale}}</td></tr>
<tr><th>Timezone</th><td>{{if .Config.Timezone}}{{.Config.Timezone}}{{else}}local{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Config.ScreenTopic}}";
  var dot = document.getElementById("live-dot");

  function setText(id, text) {
    var el = document.getElementById(id);
    if (el) { el.textContent = text; }
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.screen) {
        setText("w-time", msg.screen.time);
        setText("w-date", msg.screen.date);
        setText("w-icon", msg.screen.icon);
        setText("w-temp", msg.screen.temperature_text);
        setText("cadence", msg.screen.cadence);
        setText("anim", msg.screen.animation_step);
        var link = document.getElementById("link");
        if (link) {
          link.textContent = msg.screen.link.connected ? "connected" : "disconnected";
          link.className = msg.screen.link.connected ? "connected" : "disconnected";
        }
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, st display.State) {
	// State has Uptime() method but template needs a Duration field.
	data := struct {
		display.State
		Uptime time.Duration
	}{
		State:  st,
		Uptime: st.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
