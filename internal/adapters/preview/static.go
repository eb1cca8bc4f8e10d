package preview

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// staticHandler serves the output root. HTML documents get the reload client
// injected before </body>.
type staticHandler struct {
	fsys   http.FileSystem
	files  http.Handler
	script []byte
}

func newStaticHandler(dir, scriptPath string) *staticHandler {
	fsys := http.Dir(dir)
	return &staticHandler{
		fsys:   fsys,
		files:  http.FileServer(fsys),
		script: []byte(`<script src="` + scriptPath + `"></script>`),
	}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	name, ok := h.resolveHTML(path.Clean("/" + r.URL.Path))
	if !ok {
		h.files.ServeHTTP(w, r)
		return
	}

	f, err := h.fsys.Open(name)
	if err != nil {
		h.files.ServeHTTP(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, name, info.ModTime(), bytes.NewReader(h.inject(data)))
}

// resolveHTML maps a request path to the HTML document it denotes:
// directories serve index.html and extensionless paths fall back to <path>.html.
func (h *staticHandler) resolveHTML(p string) (string, bool) {
	if strings.HasSuffix(p, ".html") {
		return p, h.isFile(p)
	}
	if h.isDir(p) {
		index := path.Join(p, "index.html")
		return index, h.isFile(index)
	}
	if path.Ext(p) == "" && h.isFile(p+".html") {
		return p + ".html", true
	}
	return "", false
}

func (h *staticHandler) inject(doc []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(doc), []byte("</body>"))
	if idx < 0 {
		return append(doc, h.script...)
	}
	out := make([]byte, 0, len(doc)+len(h.script))
	out = append(out, doc[:idx]...)
	out = append(out, h.script...)
	return append(out, doc[idx:]...)
}

func (h *staticHandler) isFile(p string) bool {
	info, err := h.stat(p)
	return err == nil && !info.IsDir()
}

func (h *staticHandler) isDir(p string) bool {
	info, err := h.stat(p)
	return err == nil && info.IsDir()
}

func (h *staticHandler) stat(p string) (fs.FileInfo, error) {
	f, err := h.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.Stat()
}
