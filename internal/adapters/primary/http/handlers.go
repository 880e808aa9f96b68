package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlidesResponse represents the slides API response
type SlidesResponse struct {
	Title      string          `json:"title"`
	Layout     string          `json:"layout"`
	SlideCount int             `json:"slide_count"`
	Slides     []SlideResponse `json:"slides"`
}

// SlideResponse represents a single slide in the API response
type SlideResponse struct {
	Index      int    `json:"index"`
	Title      string `json:"title"`
	Background string `json:"background,omitempty"`
	HTML       string `json:"html"`
}

// ConfigResponse represents the configuration API response
type ConfigResponse struct {
	Version         string                 `json:"version"`
	Theme           string                 `json:"theme"`
	RevealURL       string                 `json:"reveal_url"`
	WebSocketURL    string                 `json:"websocket_url"`
	AllowUnsafeHTML bool                   `json:"allow_unsafe_html"`
	Page            entities.PageConfig    `json:"page"`
	Display         entities.DisplayConfig `json:"display"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Clients int    `json:"clients"`
}

var errNoSlides = errors.New("entrypoint produced no slides")

// deckRecorder is a ports.Page that keeps what the entrypoint hands over,
// for the JSON endpoints that need the deck rather than a document.
type deckRecorder struct {
	page            entities.PageConfig
	content         string
	display         entities.DisplayConfig
	allowUnsafeHTML bool
	hasSlides       bool
}

func (d *deckRecorder) SetPageConfig(cfg entities.PageConfig) error {
	d.page = cfg
	return nil
}

func (d *deckRecorder) Slides(content string, cfg entities.DisplayConfig, allowUnsafeHTML bool) error {
	d.content = content
	d.display = cfg
	d.allowUnsafeHTML = allowUnsafeHTML
	d.hasSlides = true
	return nil
}

// recordDeck runs the entrypoint against a recorder
func (s *Server) recordDeck(ctx context.Context) (*deckRecorder, error) {
	rec := &deckRecorder{}
	if err := s.presenter.Run(ctx, rec); err != nil {
		return nil, err
	}
	if !rec.hasSlides {
		return nil, errNoSlides
	}
	return rec, nil
}

// handlePresentation runs the entrypoint for this page load and serves the document
func (s *Server) handlePresentation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := s.renderer.NewPage()
	html, err := s.renderPage(ctx, page)
	if s.metrics != nil {
		s.metrics.ObserveDeckRender(err)
	}
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(html); err != nil {
		s.logger.Error("Failed to write presentation response: %v", err)
	}
}

func (s *Server) renderPage(ctx context.Context, page ports.RenderablePage) ([]byte, error) {
	if err := s.presenter.Run(ctx, page); err != nil {
		return nil, err
	}
	return page.Render(ctx)
}

// handleSlides returns the slide outline as JSON
func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recordDeck(r.Context())
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	sections, err := s.parser.Parse(rec.content)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, s.slidesToResponse(rec, sections))
}

// handleConfig returns the widget and host configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recordDeck(r.Context())
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, ConfigResponse{
		Version:         s.version,
		Theme:           s.config.Presentation.GetTheme(),
		RevealURL:       s.config.Presentation.GetRevealURL(),
		WebSocketURL:    "/ws",
		AllowUnsafeHTML: rec.allowUnsafeHTML && s.config.Presentation.UnsafeHTMLAllowed(),
		Page:            rec.page,
		Display:         rec.display,
	})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, HealthResponse{
		Status:  "ok",
		Version: s.version,
		Clients: s.connMgr.Count(),
	})
}

// handleError handles error responses with sanitized messages
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	// Sanitize error message to prevent information disclosure
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Resource not found"
	case http.StatusMethodNotAllowed:
		message = "Method not allowed"
	case http.StatusTooManyRequests:
		message = "Too many requests"
	case http.StatusInternalServerError:
		message = "Internal server error"
	default:
		message = "An error occurred"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("HTTP error (status %d): %v", status, err)
	} else {
		s.logger.Debug("HTTP error (status %d): %v", status, err)
	}

	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		s.logger.Error("Failed to encode error response: %v", encodeErr)
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Error("Failed to write JSON response: %v", err)
	}
}

// createHTMLSanitizer creates a restrictive HTML sanitizer for slide content served as JSON
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("a").AllowAttrs("href").OnElements("a")
	p.AllowElements("img").AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowElements("div", "span").AllowAttrs("class").OnElements("div", "span", "code", "pre")

	return p
}

var htmlSanitizer = createHTMLSanitizer()

// titleSanitizer strips all markup, titles are plain text
var titleSanitizer = bluemonday.StrictPolicy()

// slidesToResponse converts parsed sections to the API response with sanitized HTML
func (s *Server) slidesToResponse(rec *deckRecorder, sections []entities.Section) SlidesResponse {
	slides := make([]SlideResponse, len(sections))
	for i, section := range sections {
		slides[i] = SlideResponse{
			Index:      section.Index,
			Title:      titleSanitizer.Sanitize(section.Title()),
			Background: titleSanitizer.Sanitize(section.Background),
			HTML:       htmlSanitizer.Sanitize(section.HTML),
		}
	}

	layout := rec.page.Layout
	if layout == "" {
		layout = entities.LayoutCentered
	}

	return SlidesResponse{
		Title:      titleSanitizer.Sanitize(rec.page.Title),
		Layout:     string(layout),
		SlideCount: len(slides),
		Slides:     slides,
	}
}
