package decks

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Meta-Virgo/Tarot/internal/domain"
)

//go:embed data/*.json
var deckFS embed.FS

const majorArcanaFile = "data/major_arcana.json"

// EmbeddedCatalog serves the static card and spread definitions: the 22 major
// arcana from an embedded JSON file, the 56 minor arcana generated from suit
// and rank tables, and the closed spread catalog.
type EmbeddedCatalog struct {
	once   sync.Once
	majors []domain.CardDefinition
	full   []domain.CardDefinition
	err    error
}

func NewEmbeddedCatalog() *EmbeddedCatalog {
	return &EmbeddedCatalog{}
}

func (c *EmbeddedCatalog) init() {
	raw, err := deckFS.ReadFile(majorArcanaFile)
	if err != nil {
		c.err = fmt.Errorf("read embedded majors: %w", err)
		return
	}
	if err := json.Unmarshal(raw, &c.majors); err != nil {
		c.err = fmt.Errorf("parse embedded majors: %w", err)
		return
	}
	for i := range c.majors {
		c.majors[i].Arcana = domain.ArcanaMajor
	}

	c.full = make([]domain.CardDefinition, 0, len(c.majors)+56)
	c.full = append(c.full, c.majors...)
	c.full = append(c.full, minorArcana(len(c.majors))...)
}

func (c *EmbeddedCatalog) ListCardDefinitions(full bool) ([]domain.CardDefinition, error) {
	c.once.Do(c.init)
	if c.err != nil {
		return nil, c.err
	}
	if full {
		return c.full, nil
	}
	return c.majors, nil
}

type suitSpec struct {
	name     string
	element  domain.Element
	icon     string
	keywords string
}

var suits = []suitSpec{
	{name: "Wands", element: domain.ElementFire, icon: "wand", keywords: "action and creativity"},
	{name: "Cups", element: domain.ElementWater, icon: "heart", keywords: "emotion and intuition"},
	{name: "Swords", element: domain.ElementAir, icon: "sword", keywords: "thought and reason"},
	{name: "Pentacles", element: domain.ElementEarth, icon: "coins", keywords: "material and practical life"},
}

var ranks = []string{"Ace", "2", "3", "4", "5", "6", "7", "8", "9", "10", "Page", "Knight", "Queen", "King"}

func isCourt(rank string) bool {
	switch rank {
	case "Page", "Knight", "Queen", "King":
		return true
	}
	return false
}

// minorArcana generates the 56 minor cards with formulaic meanings, numbered
// from firstID onward so IDs stay unique across the full deck.
func minorArcana(firstID int) []domain.CardDefinition {
	cards := make([]domain.CardDefinition, 0, len(suits)*len(ranks))
	id := firstID
	for _, suit := range suits {
		for _, rank := range ranks {
			upright := fmt.Sprintf("%s, unfolding favorably", suit.keywords)
			switch {
			case rank == "Ace":
				upright = fmt.Sprintf("A fresh start in %s, energy surging", suit.name)
			case isCourt(rank):
				upright = fmt.Sprintf("Court card: a figure or quality of %s", suit.name)
			}
			cards = append(cards, domain.CardDefinition{
				ID:       id,
				Name:     fmt.Sprintf("%s of %s", rank, suit.name),
				Icon:     suit.icon,
				Element:  suit.element,
				Upright:  upright,
				Reversed: fmt.Sprintf("%s, blocked or taken to excess", suit.keywords),
				Arcana:   domain.ArcanaMinor,
				Suit:     suit.name,
				Rank:     rank,
			})
			id++
		}
	}
	return cards
}
