package ports

import (
	"github.com/fredcamaral/patterndeck/internal/domain/entities"
)

// SectionParser splits deck markup into its top-level sections
type SectionParser interface {
	Parse(markup string) ([]entities.Section, error)
}
