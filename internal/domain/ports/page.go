package ports

import (
	"context"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
)

// Page is the host page a presentation entrypoint runs against.
// One Page serves exactly one page load.
type Page interface {
	// SetPageConfig sets page-level metadata. It must be the first call on the page.
	SetPageConfig(cfg entities.PageConfig) error

	// Slides hands deck markup and widget options to the slide renderer.
	// allowUnsafeHTML permits embedded markup to be interpreted rather than escaped.
	Slides(content string, cfg entities.DisplayConfig, allowUnsafeHTML bool) error
}

// Presenter runs a deck against a host page
type Presenter interface {
	Run(ctx context.Context, page Page) error
}
