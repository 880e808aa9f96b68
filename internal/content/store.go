// Package content holds the fixed slide deck and its display options.
package content

import (
	_ "embed"

	"github.com/fredcamaral/patterndeck/internal/domain/entities"
)

const (
	// PageTitle is the host page title
	PageTitle = "Abstract Factory Pattern"

	// PageLayout is the host page layout mode
	PageLayout = entities.LayoutWide

	// DeckTitle is the heading of the first slide
	DeckTitle = "Паттерн Abstract Factory"

	// SlideCount is the number of top-level sections in the deck
	SlideCount = 10
)

//go:embed slides.html
var slides string

// Slides returns the deck markup exactly as embedded
func Slides() string {
	return slides
}

// Display returns the widget options for the deck
func Display() entities.DisplayConfig {
	return entities.DisplayConfig{
		Height:      700,
		Margin:      0.1,
		Transition:  entities.TransitionSlide,
		Controls:    true,
		Progress:    true,
		SlideNumber: "c/t",
		Width:       "90%",
	}
}

// Page returns the host page setup for the deck
func Page() entities.PageConfig {
	return entities.PageConfig{
		Title:  PageTitle,
		Layout: PageLayout,
	}
}
