package http

import (
	"github.com/Meta-Virgo/Tarot/internal/app"
	"github.com/Meta-Virgo/Tarot/internal/domain"
)

// SessionResponse is the render-ready JSON view of a session.
type SessionResponse struct {
	ID             string             `json:"id"`
	Phase          domain.Phase       `json:"phase"`
	Spread         domain.Spread      `json:"spread"`
	SelectedSpread string             `json:"selectedSpreadId"`
	FullDeck       bool               `json:"fullDeck"`
	DeckCount      int                `json:"deckCount"`
	Hand           []HandCardResponse `json:"hand"`
	FocusedIndex   *int               `json:"focusedIndex,omitempty"`
	Question       string             `json:"question"`
	Reading        string             `json:"reading,omitempty"`
	ReadingStatus  string             `json:"readingStatus"`
	PanelVisible   bool               `json:"panelVisible"`
	AudioAvailable bool               `json:"audioAvailable"`
	Playing        bool               `json:"playing"`
	VoiceInput     bool               `json:"voiceInput"`
}

// HandCardResponse describes one drawn position. Card identity stays hidden
// until the position has been revealed.
type HandCardResponse struct {
	Position     string `json:"position"`
	PositionDesc string `json:"positionDesc"`
	Revealed     bool   `json:"revealed"`
	Name         string `json:"name,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Element      string `json:"element,omitempty"`
	Orientation  string `json:"orientation,omitempty"`
	Meaning      string `json:"meaning,omitempty"`
}

type SelectSpreadRequest struct {
	SpreadID string `json:"spreadId"`
}

type ConfirmRequest struct {
	FullDeck bool `json:"fullDeck"`
}

type PickRequest struct {
	Index int `json:"index"`
}

type RevealRequest struct {
	Index int `json:"index"`
}

type QuestionRequest struct {
	Text string `json:"text"`
}

type ListenRequest struct {
	Locale string `json:"locale"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toSessionResponse(id string, s *app.Session) SessionResponse {
	snap := s.Snapshot()

	hand := make([]HandCardResponse, len(snap.Hand))
	for i, card := range snap.Hand {
		pos := domain.SpreadPosition{}
		if i < len(snap.Spread.Positions) {
			pos = snap.Spread.Positions[i]
		}
		hc := HandCardResponse{
			Position:     pos.Name,
			PositionDesc: pos.Desc,
			Revealed:     snap.Revealed[i],
		}
		if snap.Revealed[i] {
			hc.Name = card.Name
			hc.Icon = card.Icon
			hc.Element = string(card.Element)
			hc.Orientation = string(card.Orientation)
			hc.Meaning = card.Meaning()
		}
		hand[i] = hc
	}

	resp := SessionResponse{
		ID:             id,
		Phase:          snap.Phase,
		Spread:         snap.Spread,
		SelectedSpread: snap.SelectedSpread.ID,
		FullDeck:       snap.FullDeck,
		DeckCount:      len(snap.Available),
		Hand:           hand,
		Question:       snap.Question,
		ReadingStatus:  string(snap.ReadingStatus),
		PanelVisible:   snap.PanelVisible,
		AudioAvailable: snap.AudioAvailable,
		Playing:        snap.Playing,
		VoiceInput:     s.SpeechInputAvailable(),
	}
	if snap.PanelVisible {
		resp.Reading = snap.Reading
	}
	if snap.FocusedIndex >= 0 {
		idx := snap.FocusedIndex
		resp.FocusedIndex = &idx
	}
	return resp
}
