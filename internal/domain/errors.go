package domain

import "errors"

var (
	ErrSpreadNotFound  = errors.New("spread not found")
	ErrSessionNotFound = errors.New("session not found")

	// AI generation error kinds. The first four are terminal and must not be
	// retried; ErrUpstreamAI wraps transient failures after retries are
	// exhausted.
	ErrCredentialMissing = errors.New("AI credential missing")
	ErrCredentialInvalid = errors.New("AI credential invalid")
	ErrQuotaExceeded     = errors.New("AI quota exhausted")
	ErrRegionUnsupported = errors.New("AI service unavailable in this region")
	ErrEmptyReading      = errors.New("model returned no content")
	ErrUpstreamAI        = errors.New("upstream AI failure")

	ErrMalformedAudio    = errors.New("malformed PCM payload")
	ErrSpeechUnavailable = errors.New("speech input unavailable")
)
