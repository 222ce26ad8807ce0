package main

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
)

const pageTemplates = `
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Unsplash Photo Gallery</title>
<style>
body { font-family: sans-serif; margin: 0; }
.container { max-width: 1100px; margin: 2rem auto 0; background-color: #f4f1de; padding: 1rem; }
#search { width: 100%; box-sizing: border-box; padding: .75rem; margin: 1rem 0; font-size: 1rem; }
.error { color: #b00020; }
.spinner { width: 40px; height: 40px; border: 4px solid #ccc; border-top-color: #083d77; border-radius: 50%; animation: spin 1s linear infinite; }
@keyframes spin { to { transform: rotate(360deg); } }
table { width: 100%; margin-top: 1rem; background-color: #083d77; border-radius: 1%; border-collapse: collapse; }
th { font-weight: bold; font-size: 1.2rem; color: white; text-align: left; padding: 1rem; }
td { min-width: 150px; max-width: 300px; word-break: break-all; color: white; padding: 1rem; }
td img { width: 200px; height: 200px; border-radius: 10%; }
.view { display: inline-block; padding: .8rem 1.2rem; background-color: #f4f1de; border-radius: 45%; text-decoration: none; color: #0c4006; font-size: 20px; }
.view:hover { background-color: gray; }
</style>
</head>
<body>
<main class="container">
<h1>Unsplash Photo Gallery</h1>
<label for="search">Search by Description</label>
<input id="search" type="search" name="q" value="{{.SearchTerm}}" autocomplete="off">
<button id="refresh" type="button">Refresh</button>
<div id="gallery">{{template "gallery" .}}</div>
</main>
<script>
(function () {
  var input = document.getElementById('search');
  var target = document.getElementById('gallery');
  function swap(url, opts) {
    return fetch(url, opts).then(function (r) { return r.text(); }).then(function (html) {
      target.innerHTML = html;
      poll();
    });
  }
  function rows() { return swap('/rows?q=' + encodeURIComponent(input.value)); }
  function poll() {
    var s = target.querySelector('[data-status]');
    if (s && s.dataset.status === 'loading') { setTimeout(rows, 1000); }
  }
  input.addEventListener('input', rows);
  document.getElementById('refresh').addEventListener('click', function () {
    swap('/refresh?q=' + encodeURIComponent(input.value), { method: 'POST' });
  });
  poll();
})();
</script>
</body>
</html>{{end}}

{{define "gallery"}}<div data-status="{{.Status}}">
{{- if .Loading}}
<div class="spinner" role="progressbar" aria-label="Loading"></div>
{{- else if .Failed}}
<p class="error">{{.Message}}</p>
{{- else}}
<table>
<thead><tr><th>Description</th><th>Thumbnail</th><th>URL</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr>
<td>{{.Description}}</td>
<td><img src="{{.ThumbnailUrl}}" alt="{{.AltText}}"></td>
<td><a class="view" href="{{.PageUrl}}" target="_blank" rel="noopener noreferrer">{{.LinkLabel}}</a></td>
</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</div>{{end}}
`

var pages = template.Must(template.New("pages").Parse(pageTemplates))

// PageHandler serves the gallery as a single HTML page plus the fragment
// and debug endpoints its script uses. The search term is taken per request
// so concurrent browsers do not overwrite each other.
type PageHandler struct {
	gallery *Gallery
	cfg     *Config
	log     *zap.Logger
	mux     *http.ServeMux
}

func NewPageHandler(gallery *Gallery, cfg *Config, logger *zap.Logger) *PageHandler {
	h := &PageHandler{
		gallery: gallery,
		cfg:     cfg,
		log:     logger.Named("http"),
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("/", h.servePage)
	h.mux.HandleFunc("/rows", h.serveRows)
	h.mux.HandleFunc("/refresh", h.serveRefresh)
	h.mux.HandleFunc("/photos.json", h.servePhotos)
	return h
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *PageHandler) currentView(r *http.Request) View {
	snap := h.gallery.State().Snapshot()
	snap.SearchTerm = r.URL.Query().Get("q")
	return Project(snap)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string, view View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()
	if err := pages.ExecuteTemplate(body, name, view); err != nil {
		h.log.Error("Failed to render template", zap.String("template", name), zap.Error(err))
	}
}

func (h *PageHandler) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}
	h.render(w, r, "page", h.currentView(r))
}

func (h *PageHandler) serveRows(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "gallery", h.currentView(r))
}

func (h *PageHandler) serveRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	// The fetch may be shared with other callers and must outlive this request.
	if err := h.gallery.Refresh(context.WithoutCancel(r.Context())); err != nil {
		h.log.Warn("Refresh failed", zap.Error(err))
	}
	h.render(w, r, "gallery", h.currentView(r))
}

func (h *PageHandler) servePhotos(w http.ResponseWriter, r *http.Request) {
	view := h.currentView(r)
	w.Header().Set("Content-Type", "application/json")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()
	if !view.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	enc := json.NewEncoder(body)
	indent := ""
	if h.cfg.Debug.PrettyJson {
		indent = "  "
	}
	enc.SetIndent("", indent)
	if err := enc.Encode(struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
		Rows    []Row  `json:"rows"`
	}{view.Status.String(), view.Message, view.Rows}); err != nil {
		h.log.Error("Failed to encode photos", zap.Error(err))
	}
}
