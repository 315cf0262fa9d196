package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/tutorhub/internal/config"
	"github.com/hpungsan/tutorhub/internal/errors"
	"github.com/hpungsan/tutorhub/internal/history"
	"github.com/hpungsan/tutorhub/internal/ops"
	"github.com/hpungsan/tutorhub/internal/tutorial"
)

// recentOnHome is the number of history entries shown on the landing page.
const recentOnHome = 5

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	store    history.ProgressStore
	renderer *Renderer
}

// visitorStore scopes the progress store to the requesting visitor.
func (h *Handlers) visitorStore(r *http.Request) history.ProgressStore {
	return history.Scoped(h.store, "visitor:"+visitorID(r))
}

// HandleHome handles GET /: featured tutorials, categories and recent reads.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	featured, err := ops.Featured(r.Context(), h.db, ops.DefaultFeaturedLimit)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	categories, err := ops.Categories(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	recent := ops.History(h.visitorStore(r)).Items
	if len(recent) > recentOnHome {
		recent = recent[:recentOnHome]
	}

	h.renderer.renderPage(w, r, "home", HomePageData{
		PageData:   h.renderer.page("Learn to build", "home"),
		Featured:   featured,
		Categories: categories.Items,
		Recent:     recent,
	})
}

// HandleList handles GET /tutorials: filter, search and paginate the directory.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := h.listData(r, q.Get("category"), "/tutorials")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	data.PageData = h.renderer.page("Tutorials", "tutorials")
	if data.Query != "" {
		data.Title = "Results for “" + data.Query + "”"
	}

	// htmx filter form targets #results
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "list", "tutorial-results", data)
		return
	}
	h.renderer.renderPage(w, r, "list", data)
}

// HandleCategories handles GET /categories: every category with its count.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Categories(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "categories", CategoriesPageData{
		PageData: h.renderer.page("Categories", "categories"),
		Items:    out.Items,
	})
}

// HandleCategory handles GET /categories/{slug}: one category's tutorials.
func (h *Handlers) HandleCategory(w http.ResponseWriter, r *http.Request) {
	category, err := ops.CategoryBySlug(r.Context(), h.db, r.PathValue("slug"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data, err := h.listData(r, category.Slug, "/categories/"+category.Slug)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	// The category is part of the path, not the query string
	data.Category = ""
	data.PageData = h.renderer.page(category.Name, "categories")

	h.renderer.renderPage(w, r, "category", CategoryPageData{
		ListPageData: *data,
		Current:      *category,
	})
}

// listData runs the listing query shared by /tutorials and /categories/{slug}.
func (h *Handlers) listData(r *http.Request, category, basePath string) (*ListPageData, error) {
	q := r.URL.Query()
	input := ops.ListInput{
		Category:   category,
		Difficulty: q.Get("difficulty"),
		Query:      strings.TrimSpace(q.Get("q")),
		Page:       parseIntParam(r, "page", 1),
		PageSize:   h.cfg.PageSize,
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		return nil, err
	}
	categories, err := ops.Categories(r.Context(), h.db)
	if err != nil {
		return nil, err
	}

	// Echo the canonical spelling so the filter form keeps its selection
	difficulty, _ := tutorial.ParseDifficulty(input.Difficulty)

	return &ListPageData{
		Items:        result.Items,
		Pagination:   result.Pagination,
		Categories:   categories.Items,
		Difficulties: tutorial.Difficulties,
		Category:     input.Category,
		Difficulty:   string(difficulty),
		Query:        input.Query,
		BasePath:     basePath,
	}, nil
}

// HandleDetail handles GET /tutorials/{category}/{slug}: view a tutorial and
// record it in the visitor's reading history.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		Category:     r.PathValue("category"),
		Slug:         r.PathValue("slug"),
		RelatedLimit: h.cfg.RelatedLimit,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	store := h.visitorStore(r)
	ops.RecordRead(store, out.Tutorial, time.Now())
	progress, err := ops.GetProgress(store, out.ID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:     h.renderer.page(out.Title, "tutorials"),
		Tutorial:     out,
		RenderedHTML: renderMarkdown(out.Body),
		Progress:     progress.Percent,
		HasProgress:  progress.Found,
	})
}

// HandleHistory handles GET /history: the visitor's recently read tutorials.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	out := ops.History(h.visitorStore(r))

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData: h.renderer.page("Reading history", "history"),
		Items:    out.Items,
	})
}

// HandleClearHistory handles POST /history/clear.
func (h *Handlers) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	out := ops.ClearHistory(h.visitorStore(r))

	// HTMX request: swap in the empty history block
	if r.Header.Get("HX-Request") == "true" {
		h.renderer.renderBlock(w, http.StatusOK, "history", "history-items", HistoryPageData{Items: out.Items})
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	http.Redirect(w, r, "/history", http.StatusSeeOther)
}

// HandleProgress handles POST /progress/{id}: bookmark how far the visitor
// got through a tutorial. The form field "percent" is clamped to 0..100.
func (h *Handlers) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	percent, err := strconv.Atoi(strings.TrimSpace(r.FormValue("percent")))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("percent must be an integer"))
		return
	}

	includeBody := false
	t, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id"), IncludeBody: &includeBody})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := ops.SetProgress(h.visitorStore(r), t.ID, percent)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<span class="progress-value">` + strconv.Itoa(out.Percent) + `%</span>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	http.Redirect(w, r, t.Path, http.StatusSeeOther)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
