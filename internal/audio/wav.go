// Package audio converts raw speech-synthesis output into a playable asset.
package audio

import (
	"encoding/binary"

	"github.com/Meta-Virgo/Tarot/internal/domain"
)

// Fixed format of the synthesizer's raw output: 16-bit linear PCM, mono, 24 kHz.
const (
	SampleRate    = 24000
	bitsPerSample = 16
	numChannels   = 1
	headerSize    = 44
)

// PCMToWAV wraps raw PCM16 mono samples in a minimal RIFF/WAVE header so a
// standard playback facility can consume them. Deterministic: identical input
// always yields identical output. Empty or odd-length input is rejected with
// domain.ErrMalformedAudio instead of producing a corrupt asset.
func PCMToWAV(samples []byte) ([]byte, error) {
	if len(samples) == 0 || len(samples)%(bitsPerSample/8) != 0 {
		return nil, domain.ErrMalformedAudio
	}

	const blockAlign = numChannels * bitsPerSample / 8
	out := make([]byte, headerSize, headerSize+len(samples))

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(samples)))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], numChannels)
	binary.LittleEndian.PutUint32(out[24:28], SampleRate)
	binary.LittleEndian.PutUint32(out[28:32], SampleRate*blockAlign)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(samples)))

	return append(out, samples...), nil
}
