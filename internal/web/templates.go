package web

import (
	"embed"
	"html/template"
)

//go:embed templates
var templateFiles embed.FS

// ParseTemplates builds one isolated template set per view, each
// pairing the shared layout with a single page template.
func ParseTemplates() map[string]*template.Template {
	pages := []string{
		"home.html",
		"feed.html",
		"view.html",
		"new.html",
		"edit.html",
		"history.html",
		"diff.html",
		"restore.html",
		"delete.html",
		"profile.html",
		"activity.html",
		"login.html",
		"register.html",
	}

	funcs := template.FuncMap{
		"prev": func(n int) int { return n - 1 },
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		templates[page] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFiles,
			"templates/layout.html", "templates/"+page))
	}
	return templates
}
