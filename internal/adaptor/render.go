package adaptor

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"user-admin/internal/data/entity"
	"user-admin/pkg/utils"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageNames = []string{
	"home",
	"login",
	"error",
	"dashboard",
	"user_index",
	"user_form",
	"group_index",
	"group_form",
}

// Views renders the server-side pages. Each page is parsed together with
// the shared layout.
type Views struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// page is the value every template executes against.
type page struct {
	Title     string
	Principal *utils.Principal
	CSRFField template.HTML
	Data      any
}

var templateFuncs = template.FuncMap{
	"roleLabel": func(role string) string { return entity.Role(role).Label() },
	"add":       func(a, b int) int { return a + b },
	"sub":       func(a, b int) int { return a - b },
}

func NewViews(log *zap.Logger) (*Views, error) {
	layout, err := template.New("layout.gohtml").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".gohtml"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Views{
		pages: pages,
		log:   log.With(zap.String("component", "views")),
	}, nil
}

// Render executes the page into a buffer first so a template failure still
// yields a clean 500.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := v.pages[name]
	if !ok {
		v.log.Error("Unknown page", zap.String("page", name))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	principal, _ := utils.PrincipalFromContext(r.Context())
	p := page{
		Title:     title,
		Principal: principal,
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		v.log.Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

type errorPage struct {
	Status     int
	StatusText string
	Message    string
}

func (v *Views) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	v.Render(w, r, status, "error", http.StatusText(status), errorPage{
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
	})
}
