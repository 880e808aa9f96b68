package entities

import "fmt"

// Layout is the host page layout mode
type Layout string

const (
	LayoutCentered Layout = "centered"
	LayoutWide     Layout = "wide"
)

// PageConfig is the page-level metadata set once per page load
type PageConfig struct {
	Title  string `json:"title"`
	Layout Layout `json:"layout"`
}

// Validate validates the page configuration
func (p PageConfig) Validate() error {
	switch p.Layout {
	case LayoutCentered, LayoutWide:
		return nil
	default:
		return fmt.Errorf("unknown layout: %q (must be centered or wide)", p.Layout)
	}
}
