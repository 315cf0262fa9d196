package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/logger"
	"github.com/hpungsan/tutorhub/internal/ops"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "home", "tutorials", "categories", "history"
}

// HomePageData is the template data for the landing page.
type HomePageData struct {
	PageData
	Featured   []tutorial.Tutorial
	Categories []tutorial.Category
	Recent     []tutorial.ReadingHistoryItem
}

// ListPageData is the template data for the filterable tutorial list.
type ListPageData struct {
	PageData
	Items        []tutorial.Tutorial
	Pagination   ops.Pagination
	Categories   []tutorial.Category
	Difficulties []tutorial.Difficulty
	Category     string
	Difficulty   string
	Query        string
	BasePath     string
}

// PageURL returns the link to page n keeping the current filters.
func (d ListPageData) PageURL(n int) string {
	q := url.Values{}
	if d.Category != "" {
		q.Set("category", d.Category)
	}
	if d.Difficulty != "" {
		q.Set("difficulty", d.Difficulty)
	}
	if d.Query != "" {
		q.Set("q", d.Query)
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if len(q) == 0 {
		return d.BasePath
	}
	return d.BasePath + "?" + q.Encode()
}

// CategoryPageData is the template data for a single category page.
type CategoryPageData struct {
	ListPageData
	Current tutorial.Category
}

// CategoriesPageData is the template data for the category index.
type CategoriesPageData struct {
	PageData
	Items []tutorial.Category
}

// DetailPageData is the template data for the tutorial detail page.
type DetailPageData struct {
	PageData
	Tutorial     *ops.FetchOutput
	RenderedHTML template.HTML
	Progress     int
	HasProgress  bool
}

// HistoryPageData is the template data for the reading history page.
type HistoryPageData struct {
	PageData
	Items []tutorial.ReadingHistoryItem
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
// Card descriptions are cut to excerptChars.
func NewRenderer(templateFS fs.FS, version string, excerptChars int) *Renderer {
	if excerptChars <= 0 {
		excerptChars = 150
	}

	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatDate": tutorial.FormatDate,
		"formatTime": formatTime,
		"excerpt": func(s string) string {
			return tutorial.Excerpt(s, excerptChars)
		},
		"difficultyClass": difficultyClass,
		"safeHTML":        func(s string) template.HTML { return template.HTML(s) },
	}

	// Parse layout as the base template; it also holds the shared partials
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"home":       "home.html",
		"list":       "list.html",
		"category":   "category.html",
		"categories": "categories.html",
		"detail":     "detail.html",
		"history":    "history.html",
		"error":      "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// page builds the common page fields.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for htmx partial swaps that target a sub-section of the page.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		logger.L().Error().Str("template", page).Msg("template not found")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		logger.L().Error().Err(err).Str("template", page).Str("block", block).Msg("template execution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var hErr *errors.HubError
	if !stderrors.As(err, &hErr) {
		hErr = errors.NewInternal(err)
	}

	status := hErr.Status
	message := hErr.Message
	if status >= http.StatusInternalServerError {
		logger.L().Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
	}

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(hErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts a tutorial body to HTML. On failure the escaped
// source is shown instead.
func renderMarkdown(md string) template.HTML {
	html, err := tutorial.RenderMarkdown(md)
	if err != nil {
		logger.L().Warn().Err(err).Msg("markdown render failed")
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(html)
}

// difficultyClass returns the CSS modifier for a difficulty badge.
func difficultyClass(d tutorial.Difficulty) string {
	return "difficulty-" + strings.ToLower(string(d))
}

// formatTime formats a read timestamp as "2006-01-02 15:04" UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
