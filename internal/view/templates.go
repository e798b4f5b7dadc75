package view

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	IsAdmin     bool
	Data        any
}

var moneyPrinter = message.NewPrinter(language.English)

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatDay": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("02 Jan 2006")
		},
		"money": func(d decimal.Decimal) string {
			f, _ := d.Float64()
			return moneyPrinter.Sprintf("%.2f", f)
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html",
		"templates/partials/*.html",
		"templates/pages/*.html",
		"templates/pages/*/*.html",
	)
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Execute writes a named template to an arbitrary writer. Document renderers
// use this to produce HTML outside an HTTP response.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}
