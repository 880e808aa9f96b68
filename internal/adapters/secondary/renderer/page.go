package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

var (
	// ErrPageConfigured is returned when page config is set more than once
	ErrPageConfigured = errors.New("page config can only be set once per page")

	// ErrPageConfigAfterContent is returned when page config follows the slides call
	ErrPageConfigAfterContent = errors.New("page config must be set before any content")

	// ErrSlidesRendered is returned when slides are handed over more than once
	ErrSlidesRendered = errors.New("slides can only be rendered once per page")

	// ErrNoContent is returned when a page without slides is serialised
	ErrNoContent = errors.New("page has no slides")

	// ErrInvalidLayout is returned for an unknown layout mode
	ErrInvalidLayout = errors.New("invalid page layout")
)

const defaultPageTitle = "patterndeck"

// PageOptions are host-level settings shared by every page
type PageOptions struct {
	// RevealURL is the base URL of the slide widget's dist directory
	RevealURL string

	// Theme is the widget theme stylesheet name
	Theme string

	// AllowUnsafeHTML caps what a deck may request; false forces sanitising
	AllowUnsafeHTML bool

	// SyncURL is the websocket path for navigation sync; empty disables it
	SyncURL string
}

// Renderer creates host pages that share parsed templates and a sanitiser
type Renderer struct {
	opts      PageOptions
	templates *template.Template
	sanitizer *bluemonday.Policy
}

// NewRenderer creates a new page renderer
func NewRenderer(opts PageOptions) (*Renderer, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &Renderer{
		opts:      opts,
		templates: tmpl,
		sanitizer: createSlideSanitizer(),
	}, nil
}

// NewPage returns a fresh page for a single page load
func (r *Renderer) NewPage() ports.RenderablePage {
	return &Page{renderer: r}
}

// Page collects what the entrypoint sets up and serialises it to HTML.
// A Page is used by one page load only and is not safe for concurrent use.
type Page struct {
	renderer   *Renderer
	pageConfig *entities.PageConfig
	slides     *slidesCall
}

type slidesCall struct {
	content         string
	display         entities.DisplayConfig
	allowUnsafeHTML bool
}

// SetPageConfig sets page-level metadata. It must come first and only once.
func (p *Page) SetPageConfig(cfg entities.PageConfig) error {
	if p.slides != nil {
		return ErrPageConfigAfterContent
	}
	if p.pageConfig != nil {
		return ErrPageConfigured
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	p.pageConfig = &cfg
	return nil
}

// Slides records the deck markup and widget options for rendering
func (p *Page) Slides(content string, cfg entities.DisplayConfig, allowUnsafeHTML bool) error {
	if p.slides != nil {
		return ErrSlidesRendered
	}

	p.slides = &slidesCall{
		content:         content,
		display:         cfg,
		allowUnsafeHTML: allowUnsafeHTML,
	}
	return nil
}

// PageConfig returns the page config that was set, if any
func (p *Page) PageConfig() (entities.PageConfig, bool) {
	if p.pageConfig == nil {
		return entities.PageConfig{}, false
	}
	return *p.pageConfig, true
}

// Render serialises the page into an HTML document that boots the slide widget
func (p *Page) Render(ctx context.Context) ([]byte, error) {
	if p.slides == nil {
		return nil, ErrNoContent
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := entities.PageConfig{Title: defaultPageTitle, Layout: entities.LayoutCentered}
	if p.pageConfig != nil {
		cfg = *p.pageConfig
	}

	options, err := json.Marshal(p.slides.display)
	if err != nil {
		return nil, fmt.Errorf("encoding display config: %w", err)
	}

	data := struct {
		Title     string
		Layout    string
		RevealURL string
		Theme     string
		SyncURL   string
		Slides    template.HTML
		Options   template.JS
	}{
		Title:     cfg.Title,
		Layout:    string(cfg.Layout),
		RevealURL: p.renderer.opts.RevealURL,
		Theme:     p.renderer.opts.Theme,
		SyncURL:   p.renderer.opts.SyncURL,
		Slides:    p.markup(),
		Options:   template.JS(options), // #nosec G203 - produced by json.Marshal
	}

	var buf bytes.Buffer
	if err := p.renderer.templates.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}

	return buf.Bytes(), nil
}

// markup returns the slide content, sanitised unless both the deck and the host allow raw HTML
func (p *Page) markup() template.HTML {
	if p.slides.allowUnsafeHTML && p.renderer.opts.AllowUnsafeHTML {
		return template.HTML(p.slides.content) // #nosec G203 - deck explicitly allows raw markup
	}
	return template.HTML(p.renderer.sanitizer.Sanitize(p.slides.content)) // #nosec G203 - sanitised above
}

// createSlideSanitizer builds the policy applied when raw markup is not allowed
func createSlideSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("section", "div", "span")
	p.AllowAttrs("data-background", "data-transition").OnElements("section")
	p.AllowAttrs("class").Globally()

	return p
}

// Ensure Renderer implements ports.PageRenderer and Page implements ports.RenderablePage
var (
	_ ports.PageRenderer   = (*Renderer)(nil)
	_ ports.RenderablePage = (*Page)(nil)
)
