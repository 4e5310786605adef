// Package speech holds the voice-capture adapters.
package speech

import (
	"context"

	"github.com/Meta-Virgo/Tarot/internal/domain"
)

// Disabled is the speech-input adapter for platforms without a capture
// capability. The renderer hides the voice affordance when Available is false.
type Disabled struct{}

func (Disabled) Available() bool { return false }

func (Disabled) StartListening(context.Context, string) (string, error) {
	return "", domain.ErrSpeechUnavailable
}
