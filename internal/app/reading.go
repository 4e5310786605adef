package app

import (
	"context"
	"errors"
	"strings"

	"github.com/Meta-Virgo/Tarot/internal/audio"
	"github.com/Meta-Virgo/Tarot/internal/domain"
	"github.com/Meta-Virgo/Tarot/internal/ports"
)

// Fixed user-facing substitutes for classified generation failures. They go
// straight into the reading slot so the failure is visible in place and the
// panel is never left blank.
const (
	MsgCredentialMissing = "The oracle's key is missing. Configure an API credential to open the channel."
	MsgCredentialInvalid = "The oracle's key was not accepted. Check the configured API credential for stray quotes, spaces, or expiry."
	MsgQuotaExceeded     = "The cosmic channel is congested (API quota exhausted). Please try again with a fresh key."
	MsgRegionUnsupported = "This star region is under interference (service not available in your location). Try again through another network."
	MsgTransient         = "Interference disturbed the connection to the cosmos. Please try again shortly."
)

// RequestOrShowReading either reveals the already-generated prophecy or
// generates one for the current hand.
//
// Fast path: once a reading exists for this hand, the call only makes the
// panel visible; no network work happens and existing audio is untouched.
// Otherwise a single generation runs: text first (classified failures
// degrade to a fixed fallback message, never a blank panel), then speech
// synthesis as a best-effort second stage. A result arriving after the hand
// was superseded by a new shuffle or reset is discarded.
//
// Callers gate this on AllRevealed; concurrent invocations collapse into
// no-ops while a request is in flight.
func (s *Session) RequestOrShowReading(ctx context.Context) {
	s.mu.Lock()
	if s.phase != domain.PhaseReading {
		s.mu.Unlock()
		return
	}
	if s.status == domain.StatusSucceeded {
		s.panelVisible = true
		s.mu.Unlock()
		return
	}
	if s.status == domain.StatusInFlight {
		s.mu.Unlock()
		return
	}

	s.status = domain.StatusInFlight
	s.panelVisible = true
	s.playing = false
	epoch := s.epoch
	input := s.readingInputLocked()
	s.mu.Unlock()

	text := s.generateText(ctx, input)
	wav := s.synthesize(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.Info("discarding reading for superseded hand")
		return
	}
	s.reading = text
	if wav != nil {
		s.audio = &AudioAsset{WAV: wav}
	}
	s.status = domain.StatusSucceeded
}

// generateText resolves to some displayable text no matter what: the model's
// trimmed output, or the fixed message for the classified failure kind.
func (s *Session) generateText(ctx context.Context, in ports.ReadingInput) string {
	text, err := s.generator.GenerateReading(ctx, in)
	if err != nil {
		s.logger.Warn("reading generation failed", "error", err)
		return fallbackText(err)
	}
	return strings.TrimSpace(text)
}

func fallbackText(err error) string {
	switch {
	case errors.Is(err, domain.ErrCredentialMissing):
		return MsgCredentialMissing
	case errors.Is(err, domain.ErrCredentialInvalid):
		return MsgCredentialInvalid
	case errors.Is(err, domain.ErrQuotaExceeded):
		return MsgQuotaExceeded
	case errors.Is(err, domain.ErrRegionUnsupported):
		return MsgRegionUnsupported
	default:
		return MsgTransient
	}
}

// synthesize is the best-effort audio stage: any synthesis or codec failure
// degrades to "no audio" and is only logged.
func (s *Session) synthesize(ctx context.Context, text string) []byte {
	pcm, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		s.logger.Warn("speech synthesis failed", "error", err)
		return nil
	}
	if len(pcm) == 0 {
		return nil
	}
	wav, err := audio.PCMToWAV(pcm)
	if err != nil {
		s.logger.Warn("discarding malformed audio payload", "error", err)
		return nil
	}
	return wav
}

// readingInputLocked flattens the hand for prompting: draw order matches
// position order, so card i carries the name of position i.
func (s *Session) readingInputLocked() ports.ReadingInput {
	cards := make([]ports.CardPrompt, len(s.hand))
	for i, c := range s.hand {
		cards[i] = ports.CardPrompt{
			Position:    s.spread.Positions[i].Name,
			Name:        c.Name,
			Orientation: string(c.Orientation),
			Meaning:     c.Meaning(),
		}
	}
	return ports.ReadingInput{
		Question:   s.question,
		SpreadName: s.spread.Name,
		Cards:      cards,
	}
}

// HideReadingPanel returns to the per-card detail view without touching the
// generated prophecy or audio.
func (s *Session) HideReadingPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelVisible = false
}

// TogglePlayback flips the playing flag. No-op without an audio asset.
func (s *Session) TogglePlayback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil {
		return
	}
	s.playing = !s.playing
}

// MarkPlaybackEnded clears the playing flag when the renderer reports the
// audio element finished.
func (s *Session) MarkPlaybackEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// AudioWAV returns the playable asset bytes, or nil when absent.
func (s *Session) AudioWAV() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil {
		return nil
	}
	return s.audio.WAV
}
