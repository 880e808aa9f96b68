package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Transition names understood by the slide widget
type Transition string

const (
	TransitionNone    Transition = "none"
	TransitionFade    Transition = "fade"
	TransitionSlide   Transition = "slide"
	TransitionConvex  Transition = "convex"
	TransitionConcave Transition = "concave"
	TransitionZoom    Transition = "zoom"
)

// DisplayConfig holds the options handed to the slide widget.
// JSON names match the widget's own option keys.
type DisplayConfig struct {
	Height      int        `json:"height"`
	Margin      float64    `json:"margin"`
	Transition  Transition `json:"transition"`
	Controls    bool       `json:"controls"`
	Progress    bool       `json:"progress"`
	SlideNumber string     `json:"slideNumber"`
	Width       string     `json:"width"`
}

// DisplayKeys lists the option names in declaration order
var DisplayKeys = []string{"height", "margin", "transition", "controls", "progress", "slideNumber", "width"}

// ToMap returns the configuration as an option name to value mapping
func (d DisplayConfig) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"height":      d.Height,
		"margin":      d.Margin,
		"transition":  string(d.Transition),
		"controls":    d.Controls,
		"progress":    d.Progress,
		"slideNumber": d.SlideNumber,
		"width":       d.Width,
	}
}

// Validate checks the values the widget would otherwise silently ignore.
// The deck itself never calls this; it is used by the host and by tests.
func (d DisplayConfig) Validate() error {
	if d.Height <= 0 {
		return errors.New("height must be positive")
	}
	if d.Margin < 0 || d.Margin >= 1 {
		return errors.New("margin must be in [0, 1)")
	}
	switch d.Transition {
	case TransitionNone, TransitionFade, TransitionSlide, TransitionConvex, TransitionConcave, TransitionZoom:
	default:
		return fmt.Errorf("unknown transition: %s", d.Transition)
	}
	if d.SlideNumber == "" {
		return errors.New("slide number format cannot be empty")
	}
	if !strings.HasSuffix(d.Width, "%") {
		return fmt.Errorf("width must be a percentage: %s", d.Width)
	}
	return nil
}
