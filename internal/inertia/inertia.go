// Package inertia answers page requests with a component name and its props,
// either as JSON for client-side navigation or embedded in an HTML shell
// for full page loads.
package inertia

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

// Headers of the protocol.
const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderLocation         = "X-Inertia-Location"
	HeaderPartialData      = "X-Inertia-Partial-Data"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
)

// Props are the properties passed to a page component.
type Props map[string]interface{}

// Page is the page object sent to the client.
type Page struct {
	Component string `json:"component"`
	Props     Props  `json:"props"`
	URL       string `json:"url"`
	Version   string `json:"version"`
}

// SharedFunc returns props added to every page of a request.
type SharedFunc func(r *http.Request) Props

const shell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Title }}</title>
<link href="/css/app.css" rel="stylesheet">
<script src="/js/app.js" defer></script>
</head>
<body>
<div id="app" data-page="{{ .Page }}"></div>
</body>
</html>
`

// Inertia renders pages and manages the flash session.
type Inertia struct {
	version string
	title   string
	secure  bool
	tmpl    *template.Template
	shared  []SharedFunc
	logger  *log.Logger
}

// Option configures an Inertia.
type Option func(*Inertia)

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(i *Inertia) { i.secure = secure }
}

// WithTitle sets the document title of the HTML shell.
func WithTitle(title string) Option {
	return func(i *Inertia) { i.title = title }
}

// New returns an Inertia for the given asset version.
func New(ctx context.Context, version string, opts ...Option) *Inertia {
	i := &Inertia{
		version: version,
		title:   "Ping CRM",
		tmpl:    template.Must(template.New("app").Parse(shell)),
		logger:  log.FromContext(ctx).WithPrefix("inertia"),
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Version returns the asset version.
func (i *Inertia) Version() string {
	return i.version
}

// Share registers props added to every rendered page.
func (i *Inertia) Share(fn SharedFunc) {
	i.shared = append(i.shared, fn)
}

// IsInertia reports whether r was sent by the client-side router.
func IsInertia(r *http.Request) bool {
	return r.Header.Get(HeaderInertia) == "true"
}

// Render writes the page for component.
func (i *Inertia) Render(w http.ResponseWriter, r *http.Request, component string, props Props) error {
	page := Page{
		Component: component,
		Props:     i.props(r, component, props),
		URL:       r.URL.RequestURI(),
		Version:   i.version,
	}

	w.Header().Add("Vary", HeaderInertia)
	if IsInertia(r) {
		w.Header().Set(HeaderInertia, "true")
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(page)
	}

	data, err := json.Marshal(page)
	if err != nil {
		i.logger.Error("encode page", "component", component, "err", err)
		return err
	}
	var buf bytes.Buffer
	if err := i.tmpl.Execute(&buf, struct {
		Title string
		Page  string
	}{i.title, string(data)}); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

func (i *Inertia) props(r *http.Request, component string, props Props) Props {
	all := Props{
		"errors": CurrentErrors(r),
		"flash":  CurrentFlash(r),
	}
	for _, fn := range i.shared {
		for k, v := range fn(r) {
			all[k] = v
		}
	}
	for k, v := range props {
		all[k] = v
	}

	// partial reloads only send the requested props
	only := r.Header.Get(HeaderPartialData)
	if only == "" || r.Header.Get(HeaderPartialComponent) != component {
		return all
	}
	partial := Props{"errors": all["errors"]}
	for _, k := range strings.Split(only, ",") {
		k = strings.TrimSpace(k)
		if v, ok := all[k]; ok {
			partial[k] = v
		}
	}
	return partial
}

// Redirect sends the client to url. PUT, PATCH and DELETE requests get a
// 303 so the follow-up request is a GET.
func (i *Inertia) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	code := http.StatusFound
	switch r.Method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		code = http.StatusSeeOther
	}
	http.Redirect(w, r, url, code)
}

// Back redirects to the referring page, or fallback without one.
func (i *Inertia) Back(w http.ResponseWriter, r *http.Request, fallback string) {
	url := r.Header.Get("Referer")
	if url == "" {
		url = fallback
	}
	i.Redirect(w, r, url)
}

// Location makes the client do a full page visit to url.
func (i *Inertia) Location(w http.ResponseWriter, r *http.Request, url string) {
	if IsInertia(r) {
		w.Header().Set(HeaderLocation, url)
		w.WriteHeader(http.StatusConflict)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
