package ports

import (
	"context"
)

// RenderablePage is a host page that can be serialised once the entrypoint has run
type RenderablePage interface {
	Page
	Render(ctx context.Context) ([]byte, error)
}

// PageRenderer creates a fresh host page per page load
type PageRenderer interface {
	NewPage() RenderablePage
}
