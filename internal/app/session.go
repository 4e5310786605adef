// Package app owns the per-player session: the phase state machine and the
// reading workflow that drives the AI capabilities.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Meta-Virgo/Tarot/internal/domain"
	"github.com/Meta-Virgo/Tarot/internal/ports"
)

// Phase-transition delays, matching the shipped pacing.
const (
	shuffleDelay = 2500 * time.Millisecond
	revealDelay  = 800 * time.Millisecond
)

const noFocus = -1

// AudioAsset is the playable rendition of the current reading.
type AudioAsset struct {
	WAV []byte
}

// Session is the source of truth for one player's round: which phase is
// active, what has been drawn and revealed, and the generated prophecy.
// All mutation goes through its methods; stale UI dispatches (picking beyond
// capacity, out-of-range indexes, actions in the wrong phase) are ignored
// rather than surfaced as errors.
type Session struct {
	catalog   ports.Catalog
	generator ports.ReadingGenerator
	synth     ports.SpeechSynthesizer
	speech    ports.SpeechInput
	sched     ports.Scheduler
	rng       domain.RNG
	logger    *slog.Logger

	mu    sync.Mutex
	phase domain.Phase
	// spread is the layout of the current round; selected is the player's
	// choice, applied on the next shuffle so mid-round changes never touch
	// drawn state.
	spread       domain.Spread
	selected     domain.Spread
	fullDeck     bool
	available    []domain.CardInstance
	hand         []domain.CardInstance
	revealed     []bool
	focused      int
	question     string
	reading      string
	audio        *AudioAsset
	status       domain.RequestStatus
	panelVisible bool
	playing      bool

	// epoch identifies the current round. It is bumped on every shuffle and
	// reset so pending timers and in-flight generation results for a
	// superseded round are discarded on arrival.
	epoch       uint64
	cancelTimer func()
}

func NewSession(
	catalog ports.Catalog,
	generator ports.ReadingGenerator,
	synth ports.SpeechSynthesizer,
	speech ports.SpeechInput,
	sched ports.Scheduler,
	rng domain.RNG,
	logger *slog.Logger,
) *Session {
	spread := defaultSpread(catalog)
	return &Session{
		catalog:   catalog,
		generator: generator,
		synth:     synth,
		speech:    speech,
		sched:     sched,
		rng:       rng,
		logger:    logger,
		phase:     domain.PhaseIntro,
		spread:    spread,
		selected:  spread,
		focused:   noFocus,
		status:    domain.StatusIdle,
	}
}

// defaultSpread preselects the three-card layout so confirm works even
// before an explicit choice.
func defaultSpread(catalog ports.Catalog) domain.Spread {
	spreads := catalog.ListSpreads()
	for _, sp := range spreads {
		if sp.CardCount == 3 {
			return sp
		}
	}
	if len(spreads) > 0 {
		return spreads[0]
	}
	return domain.Spread{}
}

// Begin leaves the intro screen for spread selection.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseIntro {
		return
	}
	s.phase = domain.PhaseSpreadSelect
}

// SelectSpread stages a new layout choice. It never alters the current
// round; the choice takes effect on the next shuffle.
func (s *Session) SelectSpread(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.catalog.ListSpreads() {
		if sp.ID == id {
			s.selected = sp
			return nil
		}
	}
	return domain.ErrSpreadNotFound
}

// ConfirmSpread locks in the layout and deck size and starts a new shuffle.
// Valid from spread selection or, for a fresh round, from the reading phase.
func (s *Session) ConfirmSpread(fullDeck bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseSpreadSelect && s.phase != domain.PhaseReading {
		return nil
	}
	s.fullDeck = fullDeck
	return s.beginShuffleLocked()
}

// beginShuffleLocked clears all round state, populates a freshly shuffled
// deck from the selected source, and arms the shuffling->picking timer.
func (s *Session) beginShuffleLocked() error {
	s.stopTimerLocked()
	s.epoch++
	s.phase = domain.PhaseShuffling
	s.spread = s.selected
	s.hand = nil
	s.revealed = nil
	s.focused = noFocus
	s.reading = ""
	s.audio = nil
	s.playing = false
	s.panelVisible = false
	s.status = domain.StatusIdle

	defs, err := s.catalog.ListCardDefinitions(s.fullDeck)
	if err != nil {
		return fmt.Errorf("list card definitions: %w", err)
	}
	s.available = domain.BuildShuffledDeck(defs, s.rng, uuid.NewString)

	epoch := s.epoch
	s.cancelTimer = s.sched.Schedule(shuffleDelay, func() { s.advanceToPicking(epoch) })
	return nil
}

func (s *Session) advanceToPicking(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.phase != domain.PhaseShuffling {
		return
	}
	s.phase = domain.PhasePicking
	s.cancelTimer = nil
}

// PickCard moves the card at the given position of the available deck to the
// end of the hand. Once the hand is full the reading phase is armed after a
// short delay; extra picks in between are ignored.
func (s *Session) PickCard(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhasePicking {
		return
	}
	if len(s.hand) >= s.spread.CardCount {
		return
	}
	if index < 0 || index >= len(s.available) {
		return
	}

	card := s.available[index]
	s.available = append(s.available[:index], s.available[index+1:]...)
	s.hand = append(s.hand, card)
	s.revealed = append(s.revealed, false)

	if len(s.hand) == s.spread.CardCount {
		epoch := s.epoch
		s.cancelTimer = s.sched.Schedule(revealDelay, func() { s.advanceToReading(epoch) })
	}
}

func (s *Session) advanceToReading(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.phase != domain.PhasePicking {
		return
	}
	s.phase = domain.PhaseReading
	s.cancelTimer = nil
}

// InteractWithCard reveals the hand card at index and focuses it. Clicking an
// already-revealed card refocuses it; there is no toggle-off.
func (s *Session) InteractWithCard(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseReading {
		return
	}
	if index < 0 || index >= len(s.hand) {
		return
	}
	s.revealed[index] = true
	s.focused = index
}

// SetQuestion stores the free-text question used for the next generation.
func (s *Session) SetQuestion(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.question = q
}

// CaptureQuestion records a spoken question via the platform speech input.
func (s *Session) CaptureQuestion(ctx context.Context, locale string) (string, error) {
	if !s.speech.Available() {
		return "", domain.ErrSpeechUnavailable
	}
	transcript, err := s.speech.StartListening(ctx, locale)
	if err != nil {
		return "", fmt.Errorf("capture question: %w", err)
	}
	s.SetQuestion(transcript)
	return transcript, nil
}

// ResetToIntro abandons the round from any phase: timers are cancelled, all
// round state is cleared, and any in-flight generation result will be
// discarded on arrival. The deck-size toggle and spread choice survive.
func (s *Session) ResetToIntro() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.epoch++
	s.phase = domain.PhaseIntro
	s.available = nil
	s.hand = nil
	s.revealed = nil
	s.focused = noFocus
	s.question = ""
	s.reading = ""
	s.audio = nil
	s.playing = false
	s.panelVisible = false
	s.status = domain.StatusIdle
}

func (s *Session) stopTimerLocked() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
}

// AllRevealed reports whether every position of a full hand has been flipped.
// The caller gates the reveal-prophecy action on this.
func (s *Session) AllRevealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseReading || len(s.hand) != s.spread.CardCount {
		return false
	}
	for _, r := range s.revealed {
		if !r {
			return false
		}
	}
	return true
}

// SpeechInputAvailable reports whether the voice affordance should be shown.
func (s *Session) SpeechInputAvailable() bool {
	return s.speech.Available()
}

// Snapshot is the render-ready view of the session.
type Snapshot struct {
	Phase          domain.Phase
	Spread         domain.Spread
	SelectedSpread domain.Spread
	FullDeck       bool
	Available      []domain.CardInstance
	Hand           []domain.CardInstance
	Revealed       []bool
	FocusedIndex   int
	Question       string
	Reading        string
	ReadingStatus  domain.RequestStatus
	PanelVisible   bool
	AudioAvailable bool
	Playing        bool
}

// Snapshot copies the current state for the renderer.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:          s.phase,
		Spread:         s.spread,
		SelectedSpread: s.selected,
		FullDeck:       s.fullDeck,
		Available:      append([]domain.CardInstance(nil), s.available...),
		Hand:           append([]domain.CardInstance(nil), s.hand...),
		Revealed:       append([]bool(nil), s.revealed...),
		FocusedIndex:   s.focused,
		Question:       s.question,
		Reading:        s.reading,
		ReadingStatus:  s.status,
		PanelVisible:   s.panelVisible,
		AudioAvailable: s.audio != nil,
		Playing:        s.playing,
	}
	return snap
}
