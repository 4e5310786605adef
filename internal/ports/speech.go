package ports

import "context"

// SpeechInput is the optional platform capability that captures a spoken
// question. When Available reports false the renderer hides the affordance
// and StartListening returns domain.ErrSpeechUnavailable.
type SpeechInput interface {
	Available() bool

	// StartListening blocks until at most one transcript is captured.
	StartListening(ctx context.Context, locale string) (string, error)
}
