package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/templates"
)

var pageFiles = []string{
	"home.html",
	"campaign.html",
	"thanks.html",
	"login.html",
	"dashboard.html",
	"campaign_detail.html",
	"create_campaign.html",
	"error.html",
}

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"timestamp": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

// Renderer holds one template set per page, each wrapped in the shared layout.
type Renderer struct {
	pages map[string]*template.Template
	log   logrus.FieldLogger
}

func NewRenderer(log logrus.FieldLogger) (*Renderer, error) {
	return newRenderer(templates.FS, log)
}

func newRenderer(fsys fs.FS, log logrus.FieldLogger) (*Renderer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pageFiles)), log: log}
	for _, page := range pageFiles {
		t, err := template.New(page).Funcs(funcs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes into a buffer so a template failure still yields a clean 500.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := rd.pages[page]
	if !ok {
		rd.log.WithField("page", page).Error("unknown page template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.log.WithError(err).WithField("page", page).Error("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

type errorPage struct {
	Title   string
	Message string
}

func (rd *Renderer) NotFound(w http.ResponseWriter) {
	rd.Render(w, http.StatusNotFound, "error.html", errorPage{
		Title:   "Not Found",
		Message: "The page you are looking for does not exist.",
	})
}

// ServerError logs err and shows a generic page.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rd.log.WithError(err).WithField("path", r.URL.Path).Error("page failed")
	rd.Render(w, http.StatusInternalServerError, "error.html", errorPage{
		Title:   "Something went wrong",
		Message: "Please try again in a moment.",
	})
}
