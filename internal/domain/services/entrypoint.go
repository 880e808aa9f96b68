package services

import (
	"context"
	"errors"

	"github.com/fredcamaral/patterndeck/internal/content"
	"github.com/fredcamaral/patterndeck/internal/domain/ports"
	"github.com/fredcamaral/patterndeck/internal/logging"
)

// ErrNoPage is returned when the entrypoint is run without a host page
var ErrNoPage = errors.New("no host page")

// Entrypoint sets up the host page and hands the deck to the slide renderer.
// It holds no state of its own and may be run once per page load, concurrently.
type Entrypoint struct {
	logger *logging.Logger
}

// NewEntrypoint creates a new presentation entrypoint
func NewEntrypoint(logger *logging.Logger) *Entrypoint {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Entrypoint{logger: logger}
}

// Run configures the page, then forwards the deck content and display options
// unmodified. Errors from the page are returned as-is.
func (e *Entrypoint) Run(ctx context.Context, page ports.Page) error {
	if page == nil {
		return ErrNoPage
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := page.SetPageConfig(content.Page()); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := page.Slides(content.Slides(), content.Display(), true); err != nil {
		return err
	}

	e.logger.Debug("deck handed to renderer (%d bytes)", len(content.Slides()))
	return nil
}

// Ensure Entrypoint implements ports.Presenter
var _ ports.Presenter = (*Entrypoint)(nil)
