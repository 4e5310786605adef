package audio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Meta-Virgo/Tarot/internal/audio"
	"github.com/Meta-Virgo/Tarot/internal/domain"
)

func TestPCMToWAV_Header(t *testing.T) {
	samples := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

	wav, err := audio.PCMToWAV(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wav) != 44+len(samples) {
		t.Fatalf("expected %d bytes, got %d", 44+len(samples), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("bad container magic: %q %q", wav[0:4], wav[8:12])
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(samples)) {
		t.Errorf("chunk size: %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels: %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Errorf("sample rate: %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Errorf("bits per sample: %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(samples)) {
		t.Errorf("data length: %d", got)
	}
	if !bytes.Equal(wav[44:], samples) {
		t.Error("payload does not match input samples")
	}
}

func TestPCMToWAV_Deterministic(t *testing.T) {
	samples := make([]byte, 480)
	for i := range samples {
		samples[i] = byte(i)
	}

	first, err := audio.PCMToWAV(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := audio.PCMToWAV(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("repeated calls produced different output")
	}
}

func TestPCMToWAV_Malformed(t *testing.T) {
	for name, input := range map[string][]byte{
		"empty":     {},
		"truncated": {0x01, 0x02, 0x03},
	} {
		if _, err := audio.PCMToWAV(input); !errors.Is(err, domain.ErrMalformedAudio) {
			t.Errorf("%s: expected ErrMalformedAudio, got %v", name, err)
		}
	}
}
