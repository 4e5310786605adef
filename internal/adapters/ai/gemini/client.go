// Package gemini talks to the Gemini generateContent REST API for both
// text readings and speech synthesis.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Meta-Virgo/Tarot/internal/domain"
	"github.com/Meta-Virgo/Tarot/internal/ports"
)

// maxRetries is the number of extra attempts after the first, for transient
// failures only. Terminal error kinds are surfaced immediately.
const maxRetries = 2

// NoResponseText stands in for a successful call that carried no content.
const NoResponseText = "The stars are silent for now..."

// DefaultQuestion is encoded into the prompt when the querent asked nothing.
const DefaultQuestion = "Guidance for the days ahead"

// Client implements ports.ReadingGenerator and ports.SpeechSynthesizer.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	ttsModel   string
	voice      string
	retryBase  time.Duration
	logger     *slog.Logger
}

func NewClient(httpClient *http.Client, apiKey, baseURL, model, ttsModel, voice string, logger *slog.Logger) *Client {
	if voice == "" {
		voice = "Kore"
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		ttsModel:   ttsModel,
		voice:      voice,
		retryBase:  time.Second,
		logger:     logger,
	}
}

// WithRetryBase overrides the first backoff delay. Tests use a tiny value so
// the retry path runs without wall-clock waits.
func (c *Client) WithRetryBase(d time.Duration) *Client {
	c.retryBase = d
	return c
}

// Request/response shapes mirror the generateContent API.
type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig *genConfig   `json:"generationConfig,omitempty"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

type genConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoice `json:"prebuiltVoiceConfig"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type genResponse struct {
	Candidates []struct {
		Content genContent `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateReading prompts the text model with the question, spread and hand,
// and returns the trimmed narrative. The response being empty is not an
// error; NoResponseText is substituted instead.
func (c *Client) GenerateReading(ctx context.Context, in ports.ReadingInput) (string, error) {
	req := genRequest{
		Contents: []genContent{{Parts: []genPart{{Text: buildPrompt(in)}}}},
	}

	resp, err := c.generate(ctx, c.model, req)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		return NoResponseText, nil
	}
	return text, nil
}

// Synthesize renders text as raw PCM16 samples with the configured voice.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := genRequest{
		Contents: []genContent{{Parts: []genPart{{Text: text}}}},
		GenerationConfig: &genConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoice{VoiceName: c.voice}},
			},
		},
	}

	resp, err := c.generate(ctx, c.ttsModel, req)
	if err != nil {
		return nil, err
	}

	encoded := firstInlineData(resp)
	if encoded == "" {
		return nil, fmt.Errorf("%w: no audio data", domain.ErrEmptyReading)
	}
	pcm, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}
	return pcm, nil
}

// generate runs one model call under the bounded-retry policy: up to
// maxRetries extra attempts, waiting 2x then 4x the base delay. Classified
// terminal errors abort the loop immediately.
func (c *Client) generate(ctx context.Context, model string, req genRequest) (genResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return genResponse{}, domain.ErrCredentialMissing
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBase << attempt
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return genResponse{}, ctx.Err()
			}
			c.logger.WarnContext(ctx, "retrying model call", "model", model, "attempt", attempt, "error", lastErr)
		}

		resp, err := c.call(ctx, model, req)
		if err == nil {
			return resp, nil
		}
		if isTerminal(err) {
			return genResponse{}, err
		}
		lastErr = err
	}

	return genResponse{}, fmt.Errorf("%w: %w", domain.ErrUpstreamAI, lastErr)
}

func (c *Client) call(ctx context.Context, model string, reqBody genRequest) (genResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return genResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return genResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return genResponse{}, fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return genResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return genResponse{}, classify(resp.StatusCode, respBody)
	}

	var out genResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return genResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// classify sorts an upstream failure into the terminal error kinds; anything
// unmatched stays a plain (retriable) error.
func classify(status int, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := ae.Error.Message

	switch {
	case status == http.StatusTooManyRequests || ae.Error.Status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, msg)
	case ae.Error.Status == "FAILED_PRECONDITION" || strings.Contains(msg, "location is not supported"):
		return fmt.Errorf("%w: %s", domain.ErrRegionUnsupported, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden,
		strings.Contains(msg, "API key") || strings.Contains(msg, "API_KEY"):
		return fmt.Errorf("%w: %s", domain.ErrCredentialInvalid, msg)
	default:
		return fmt.Errorf("upstream status %d: %s", status, string(body))
	}
}

func isTerminal(err error) bool {
	for _, terminal := range []error{
		domain.ErrCredentialMissing,
		domain.ErrCredentialInvalid,
		domain.ErrQuotaExceeded,
		domain.ErrRegionUnsupported,
	} {
		if errors.Is(err, terminal) {
			return true
		}
	}
	return false
}

func firstText(resp genResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

func firstInlineData(resp genResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData.Data
			}
		}
	}
	return ""
}
