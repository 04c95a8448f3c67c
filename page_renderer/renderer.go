// Package page_renderer turns a catalog into the static HTML pages of the
// problem list.
package page_renderer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/compprog-lecture-tools/problem-list/page_renderer/contracts"
	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/compprog-lecture-tools/problem-list/vocabulary"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutTemplate   = "templates/layout.html"
	partialsTemplate = "templates/partials.html"
)

var templateFuncs = template.FuncMap{
	"slug": vocabulary.Slug,
	"join": strings.Join,
	"codeforcesURL": func(p models.CodeforcesProvenance) string {
		return "https://codeforces.com/contest/" + p.Contest + "/problem/" + p.ProblemID
	},
	"derivedPath": func(p models.DerivedProvenance) models.Path {
		return models.Path{Course: p.Course, Contest: p.Unit, Name: p.Problem}
	},
	"problemEntry": func(page Page, problem *models.Problem) problemEntry {
		return problemEntry{Page: page, Problem: problem}
	},
}

type problemEntry struct {
	Page    Page
	Problem *models.Problem
}

type templateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses the embedded page templates. Every page is
// executed together with the shared layout and partials.
func NewTemplateRenderer() (contracts.IRenderer, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, partialsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout templates: %w", err)
	}

	renderer := &templateRenderer{pages: make(map[string]*template.Template)}
	err = fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == layoutTemplate || path == partialsTemplate {
			return nil
		}

		page, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := page.ParseFS(templateFS, path); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", path, err)
		}
		renderer.pages[strings.TrimPrefix(path, "templates/")] = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renderer, nil
}

func (r *templateRenderer) Render(name string, data any) ([]byte, error) {
	page, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
