package ports

import "context"

// ReadingInput holds everything the model needs to narrate a drawn hand.
type ReadingInput struct {
	Question   string
	SpreadName string
	Cards      []CardPrompt
}

// CardPrompt is one drawn card flattened for prompting: the slot it landed
// in, its orientation label, and the orientation-appropriate meaning.
type CardPrompt struct {
	Position    string
	Name        string
	Orientation string
	Meaning     string
}

// ReadingGenerator produces the narrative prophecy text for a hand.
// Implementations classify failures into the domain AI error kinds.
type ReadingGenerator interface {
	GenerateReading(ctx context.Context, in ReadingInput) (string, error)
}

// SpeechSynthesizer renders text as raw PCM16 mono audio samples.
// Audio is a best-effort enhancement; callers treat any error as "no audio".
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
