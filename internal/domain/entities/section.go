package entities

import "strconv"

// Section is a read-only view of one top-level slide in the deck markup
type Section struct {
	// Index is the slide position in presentation order (0-based)
	Index int `json:"index"`

	// Heading is the text of the first heading element, if any
	Heading string `json:"heading"`

	// Background is the data-background attribute, if set
	Background string `json:"background,omitempty"`

	// HTML is the inner markup of the section
	HTML string `json:"-"`
}

// Title returns the heading or a generated fallback
func (s Section) Title() string {
	if s.Heading != "" {
		return s.Heading
	}
	return "Slide " + strconv.Itoa(s.Index+1)
}
