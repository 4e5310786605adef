package decks

import "github.com/Meta-Virgo/Tarot/internal/domain"

var spreads = []domain.Spread{
	{
		ID:          "single",
		Name:        "Daily Guidance",
		ShortName:   "Daily",
		Icon:        "circle",
		Description: "A single card for the heart of the day.",
		CardCount:   1,
		Positions: []domain.SpreadPosition{
			{ID: 0, Name: "Guidance", Desc: "The core energy of the moment"},
		},
		Layout: domain.LayoutSingle,
	},
	{
		ID:          "triangle",
		Name:        "Sacred Triangle",
		ShortName:   "Triangle",
		Icon:        "layout",
		Description: "The flow from past through present to future.",
		CardCount:   3,
		Positions: []domain.SpreadPosition{
			{ID: 0, Name: "Past", Desc: "Roots and experience"},
			{ID: 1, Name: "Present", Desc: "Current state and challenge"},
			{ID: 2, Name: "Future", Desc: "Trend and outcome"},
		},
		Layout: domain.LayoutRow,
	},
	{
		ID:          "diamond",
		Name:        "Diamond",
		ShortName:   "Diamond",
		Icon:        "grid",
		Description: "A deeper look at the question from every side.",
		CardCount:   5,
		Positions: []domain.SpreadPosition{
			{ID: 0, Name: "Situation", Desc: "The true state of things"},
			{ID: 1, Name: "Obstacle", Desc: "The challenge"},
			{ID: 2, Name: "Advice", Desc: "The wisdom to apply"},
			{ID: 3, Name: "Foundation", Desc: "The subconscious"},
			{ID: 4, Name: "Outcome", Desc: "Where this leads"},
		},
		Layout: domain.LayoutDiamond,
	},
}

// ListSpreads returns the closed spread catalog in display order.
func (c *EmbeddedCatalog) ListSpreads() []domain.Spread {
	return spreads
}
