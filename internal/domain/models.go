package domain

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation is the upright/reversed state of a drawn card, fixed at draw time.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// Element is the thematic tag carried by every card.
type Element string

const (
	ElementFire  Element = "Fire"
	ElementWater Element = "Water"
	ElementAir   Element = "Air"
	ElementEarth Element = "Earth"
)

// Arcana classifies a card as major or minor.
type Arcana string

const (
	ArcanaMajor Arcana = "major"
	ArcanaMinor Arcana = "minor"
)

// CardDefinition is an immutable catalog entry. Icon is a symbolic tag the
// renderer resolves to a concrete visual; the core never interprets it.
type CardDefinition struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Icon     string  `json:"icon"`
	Element  Element `json:"element"`
	Upright  string  `json:"upright"`
	Reversed string  `json:"reversed"`
	Arcana   Arcana  `json:"arcana,omitempty"`
	Suit     string  `json:"suit,omitempty"`
	Rank     string  `json:"rank,omitempty"`
}

// CardInstance is a CardDefinition plus the per-draw attributes assigned at
// shuffle time. Two instances of the same card in different rounds carry
// different instance IDs.
type CardInstance struct {
	CardDefinition
	InstanceID  string      `json:"instanceId"`
	Orientation Orientation `json:"orientation"`
}

// Meaning returns the orientation-appropriate meaning string.
func (c CardInstance) Meaning() string {
	if c.Orientation == Reversed {
		return c.CardDefinition.Reversed
	}
	return c.CardDefinition.Upright
}

// SpreadPosition is a named slot in a spread layout.
type SpreadPosition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// LayoutKind tells the renderer how to arrange drawn cards.
type LayoutKind string

const (
	LayoutSingle  LayoutKind = "single"
	LayoutRow     LayoutKind = "row"
	LayoutDiamond LayoutKind = "diamond"
)

// Spread is an immutable layout definition selected by a session.
type Spread struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	ShortName   string           `json:"shortName"`
	Icon        string           `json:"icon"`
	Description string           `json:"description"`
	CardCount   int              `json:"cardCount"`
	Positions   []SpreadPosition `json:"positions"`
	Layout      LayoutKind       `json:"layout"`
}

// Phase is the session state machine's current screen.
type Phase string

const (
	PhaseIntro        Phase = "intro"
	PhaseSpreadSelect Phase = "spread_select"
	PhaseShuffling    Phase = "shuffling"
	PhasePicking      Phase = "picking"
	PhaseReading      Phase = "reading"
)

// RequestStatus tracks the prophecy-generation request lifecycle.
type RequestStatus string

const (
	StatusIdle      RequestStatus = "idle"
	StatusInFlight  RequestStatus = "in_flight"
	StatusSucceeded RequestStatus = "succeeded"
	StatusFailed    RequestStatus = "failed"
)
