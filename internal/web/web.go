package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html static/*
var assets embed.FS

const (
	ThemeCookie = "theme"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// IndexData feeds templates/index.html.
type IndexData struct {
	Title         string
	Theme         string
	Email         string
	AvatarURL     string
	SignedIn      bool
	SignInEnabled bool
}

type popupData struct {
	Title   string
	Theme   string
	OK      bool
	Message string
}

// Renderer executes the embedded page templates. Output is buffered so a
// template error never leaves a half-written page.
type Renderer struct {
	tmpl *template.Template
	log  logrus.FieldLogger
}

func NewRenderer(log logrus.FieldLogger) (*Renderer, error) {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, log: log.WithField("component", "web")}, nil
}

func (r *Renderer) RenderIndex(w http.ResponseWriter, data IndexData) {
	r.render(w, http.StatusOK, "index.html", data)
}

// RenderPopup draws the sign-in popup landing page.
func (r *Renderer) RenderPopup(w http.ResponseWriter, status int, ok bool, message string) {
	r.render(w, status, "popup.html", popupData{Title: pageTitle, Theme: ThemeLight, OK: ok, Message: message})
}

func (r *Renderer) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.log.WithError(err).WithField("template", name).Error("template render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Static serves the embedded scripts and styles under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
