package ports

import "github.com/Meta-Virgo/Tarot/internal/domain"

// Catalog provides the read-only card and spread definitions.
type Catalog interface {
	// ListCardDefinitions returns the deck source in catalog order: the 22
	// major arcana, or the full 78-card deck when full is true.
	ListCardDefinitions(full bool) ([]domain.CardDefinition, error)

	// ListSpreads returns the closed spread catalog in display order.
	ListSpreads() []domain.Spread
}
