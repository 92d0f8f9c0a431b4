package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/and161185/policydesk/internal/model"
	"github.com/and161185/policydesk/internal/pages"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home", "login", "register", "dashboard", "products", "policies", "claims", "admin", "error",
}

var funcs = template.FuncMap{
	"status":            func(v any) string { return pages.StatusLabel(fmt.Sprint(v)) },
	"money":             pages.Money,
	"date":              pages.FormatDate,
	"dateText":          pages.FormatDateText,
	"policyTitle":       pages.PolicyTitle,
	"policyDescription": pages.PolicyDescription,
	"policyAction":      pages.PolicyAction,
}

// views maps a page name to its template set (layout plus the page's content block).
type views map[string]*template.Template

func loadViews() (views, error) {
	v := make(views, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v[name] = t
	}
	return v, nil
}

// view is what every template receives.
type view struct {
	Title       string
	Authed      bool
	Admin       bool
	User        *model.User
	Notices     []pages.Notice
	ClaimAmount float64
	Data        any
}

func (v views) render(w http.ResponseWriter, status int, name string, data view) error {
	t, ok := v[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
