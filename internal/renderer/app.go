package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	json "github.com/goccy/go-json"

	"github.com/conneroisu/pageforge/internal/assets"
)

// MountID is the id of the element the client application mounts on.
const MountID = "__pageforge"

// MountPlaceholder replaces the body of pages that were not rendered on the
// server.
const MountPlaceholder = `<div id="` + MountID + `"></div>`

// StateGlobal is the window property carrying the serialized client state.
const StateGlobal = "__PAGEFORGE__"

// AppData is everything the outer page template needs.
type AppData struct {
	Dev     bool
	BaseURL string
	App     string
	Context *Context
	Files   assets.Files
}

type clientState struct {
	ServerRendered bool              `json:"serverRendered"`
	Error          *PageError        `json:"error"`
	URL            string            `json:"url"`
	Params         map[string]string `json:"params,omitempty"`
	Data           map[string]any    `json:"data,omitempty"`
}

func (d AppData) state() clientState {
	s := clientState{}
	if d.Context != nil {
		s.URL = d.Context.URL
		s.Params = d.Context.Params
		if len(d.Context.Data) > 0 {
			s.Data = d.Context.Data
		}
		if d.Context.Result != nil {
			s.ServerRendered = d.Context.Result.ServerRendered
			s.Error = d.Context.Result.Error
		}
	}
	return s
}

// AppTemplate is the outer HTML document. App is inserted verbatim; every
// other value is escaped. In development a hot-reload client is appended.
func AppTemplate(data AppData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		// go-json escapes <, > and & so the state cannot close the script.
		state, err := json.Marshal(data.state())
		if err != nil {
			return fmt.Errorf("encoding client state: %w", err)
		}

		var b bytes.Buffer
		b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
		b.WriteString(`<meta charset="utf-8">` + "\n")
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
		if data.BaseURL != "" {
			fmt.Fprintf(&b, "<base href=\"%s\">\n", templ.EscapeString(data.BaseURL))
		}
		if data.Files.CSS != "" {
			fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\">\n", templ.EscapeString(data.Files.CSS))
		}
		b.WriteString("</head>\n<body>\n")
		b.WriteString(data.App)
		fmt.Fprintf(&b, "\n<script>window.%s=%s</script>\n", StateGlobal, state)
		for _, src := range []string{data.Files.Vendor, data.Files.App} {
			if src != "" {
				fmt.Fprintf(&b, "<script src=\"%s\" defer></script>\n", templ.EscapeString(src))
			}
		}
		if data.Dev {
			fmt.Fprintf(&b, "<script>%s</script>\n", hotReloadClient(HotReloadPath(data.BaseURL)))
		}
		b.WriteString("</body>\n</html>\n")

		_, err = w.Write(b.Bytes())
		return err
	})
}

// HotReloadPath is the WebSocket endpoint the development client connects to.
func HotReloadPath(base string) string {
	if base == "" {
		base = "/"
	}
	return assets.URLJoin(base, assets.BuiltPrefix, "__hmr")
}

func hotReloadClient(path string) string {
	return `(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
		`var ws=new WebSocket(p+location.host+` + strconv.Quote(path) + `);` +
		`ws.onmessage=function(e){if(e.data===` + strconv.Quote(HotReloadMessage) + `){location.reload();return}` +
		`if(e.data.indexOf(` + strconv.Quote(HotErrorPrefix) + `)===0){var o=document.getElementById("pageforge-error-overlay");if(o){o.remove()}` +
		`var d=document.createElement("div");d.innerHTML=e.data.slice(` + strconv.Itoa(len(HotErrorPrefix)) + `);if(d.firstChild){document.body.appendChild(d.firstChild)}}};})();`
}

// Hot reload protocol messages. An error message carries overlay markup
// after the prefix.
const (
	HotReloadMessage = "reload"
	HotErrorPrefix   = "error:"
)

// ErrorView is the built-in error page body.
func ErrorView(pe *PageError) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status, message := statusAndMessage(pe)
		_, err := fmt.Fprintf(w,
			`<div id="%s" class="pageforge-error"><h1>%d</h1><p>%s</p></div>`,
			MountID, status, templ.EscapeString(message))
		return err
	})
}

func statusAndMessage(pe *PageError) (int, string) {
	if pe == nil {
		return 500, "An error occurred"
	}
	return pe.Status(), pe.Message
}

// ErrorPage is the minimal document sent when the pipeline itself fails.
func ErrorPage(err error) string {
	message := "An error occurred"
	if err != nil {
		message = err.Error()
	}
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Server error</title>\n</head>\n<body>\n" +
		"<h1>Server error</h1>\n<pre>" + templ.EscapeString(message) + "</pre>\n</body>\n</html>\n"
}
