package preview

import (
	"bytes"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ScriptPath is where the live-reload client is served.
const ScriptPath = "/livereload.js"

const maxInjectSize = 512 * 1024

// InjectScript adds the live-reload client to HTML pages served by next.
func InjectScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		iw := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(iw, r)
		iw.finalize()
	})
}

// injector buffers an HTML response so the client script can be added
// before it is sent. Non-HTML or oversized responses pass through.
type injector struct {
	http.ResponseWriter
	status      int
	buf         bytes.Buffer
	buffering   bool
	passthrough bool
	wroteHeader bool
}

func (i *injector) WriteHeader(code int) {
	i.status = code
	if i.passthrough {
		i.flushHeader()
	}
}

func (i *injector) flushHeader() {
	if !i.wroteHeader {
		i.ResponseWriter.WriteHeader(i.status)
		i.wroteHeader = true
	}
}

func (i *injector) Write(data []byte) (int, error) {
	if !i.passthrough && !i.buffering {
		ct := i.Header().Get("Content-Type")
		if ct != "" && !strings.Contains(ct, "text/html") {
			i.passthrough = true
		} else {
			i.buffering = true
		}
	}
	if i.passthrough {
		i.flushHeader()
		return i.ResponseWriter.Write(data)
	}
	if i.buf.Len()+len(data) > maxInjectSize {
		i.passthrough = true
		i.buffering = false
		i.Header().Del("Content-Length")
		i.flushHeader()
		if _, err := i.ResponseWriter.Write(i.buf.Bytes()); err != nil {
			return 0, err
		}
		i.buf.Reset()
		return i.ResponseWriter.Write(data)
	}
	return i.buf.Write(data)
}

func (i *injector) finalize() {
	if i.passthrough || i.buf.Len() == 0 {
		i.flushHeader()
		return
	}
	out, err := injectClient(i.buf.Bytes())
	if err != nil {
		out = i.buf.Bytes()
	}
	i.Header().Del("Content-Length")
	i.flushHeader()
	_, _ = i.ResponseWriter.Write(out)
}

// injectClient appends a script element loading the live-reload client to
// the document body. Documents that already load it are returned unchanged.
func injectClient(page []byte) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	var body *html.Node
	present := false
	for n := range doc.Descendants() {
		switch n.DataAtom {
		case atom.Body:
			if body == nil {
				body = n
			}
		case atom.Script:
			for _, a := range n.Attr {
				if a.Key == "src" && a.Val == ScriptPath {
					present = true
				}
			}
		}
	}
	if body == nil || present {
		return page, nil
	}

	script := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: "src", Val: ScriptPath}, {Key: "async"}},
	}
	body.AppendChild(script)

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
