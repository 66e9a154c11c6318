package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/fredcamaral/vidwatch/internal/domain/entities"
	"github.com/fredcamaral/vidwatch/internal/domain/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is everything the shell template can show. Each page fills
// the fields it uses.
type pageData struct {
	Title          string
	Page           string
	Query          string
	Categories     []entities.Category
	ActiveCategory string
	Videos         []VideoResponse
	NextPageToken  string
	Video          *VideoResponse
	VideoID        string
	EmbedURL       string
	EmbedOrigin    string
	Summary        string
	Description    template.HTML
	Related        []VideoResponse
	Tabs           []entities.TrendingTab
	ActiveTab      string
	Tiles          []entities.ExploreTile
}

type pageRenderer struct {
	tmpl *template.Template
}

func newPageRenderer() *pageRenderer {
	funcs := template.FuncMap{
		"clock": func(seconds int) string { return entities.FormatClock(float64(seconds)) },
		"year":  func() int { return time.Now().Year() },
	}
	tmpl := template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &pageRenderer{tmpl: tmpl}
}

// render executes the shell into a buffer so a template error never leaves
// a half-written page
func (p *pageRenderer) render(w http.ResponseWriter, status int, data pageData) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.EmbedOrigin = s.config.Player.GetEmbedOrigin()
	if err := s.pages.render(w, status, data); err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.URL.Query().Get("category")
	if category == "" {
		category = entities.AllCategoryID
	}

	feed := s.catalog.HomeFeed(ctx, category, r.URL.Query().Get("pageToken"))
	list := s.toListResponse(feed)

	s.renderPage(w, http.StatusOK, pageData{
		Title:          "Home",
		Page:           "home",
		Categories:     s.catalog.HomeCategories(ctx, ""),
		ActiveCategory: category,
		Videos:         list.Items,
		NextPageToken:  list.NextPageToken,
	})
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("v"))
	if id == "" {
		s.handleNotFound(w, r)
		return
	}

	ctx := r.Context()
	data := pageData{
		Title:    "Watch",
		Page:     "watch",
		VideoID:  id,
		EmbedURL: s.embedURL(id),
		Related:  s.toListResponse(entities.VideoList{Items: s.catalog.Related(ctx, id, 0)}).Items,
	}

	if video := s.catalog.Video(ctx, id); video != nil {
		resp := s.toVideoResponse(*video, true)
		data.Video = &resp
		data.Title = video.Title
		if s.renderer != nil {
			data.Summary = s.renderer.Summary(video.Description, 0)
		}
		data.Description = template.HTML(resp.DescriptionHTML) // #nosec G203 - sanitized by the description renderer
	}

	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := pageData{
		Title: "Search",
		Page:  "search",
		Query: query,
	}

	if query != "" {
		data.Title = query + " - Search"
		list := s.toListResponse(s.catalog.Search(r.Context(), entities.SearchQuery{
			Query:     query,
			PageToken: r.URL.Query().Get("pageToken"),
		}))
		data.Videos = list.Items
		data.NextPageToken = list.NextPageToken
	}

	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) handleTrendingPage(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = entities.TrendingTabs[0].Key
	}

	videos, err := s.catalog.Trending(r.Context(), tab)
	if errors.Is(err, services.ErrUnknownTab) {
		s.handleNotFound(w, r)
		return
	}

	s.renderPage(w, http.StatusOK, pageData{
		Title:     "Trending",
		Page:      "trending",
		Tabs:      entities.TrendingTabs,
		ActiveTab: tab,
		Videos:    s.toListResponse(entities.VideoList{Items: videos}).Items,
	})
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{
		Title: "Explore",
		Page:  "explore",
		Tiles: entities.ExploreTiles,
	})
}

func (s *Server) handleMusicPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{
		Title:  "Music",
		Page:   "music",
		Videos: s.toListResponse(entities.VideoList{Items: s.catalog.Music(r.Context())}).Items,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("No page for %s", r.URL.Path)
	s.renderPage(w, http.StatusNotFound, pageData{
		Title: "Page not found",
		Page:  "notfound",
	})
}
