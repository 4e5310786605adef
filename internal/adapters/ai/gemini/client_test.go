package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Meta-Virgo/Tarot/internal/domain"
	"github.com/Meta-Virgo/Tarot/internal/ports"
)

func testInput() ports.ReadingInput {
	return ports.ReadingInput{
		Question:   "Should I travel north?",
		SpreadName: "Sacred Triangle",
		Cards: []ports.CardPrompt{
			{Position: "Past", Name: "The Moon", Orientation: "reversed", Meaning: "Confusion lifting"},
			{Position: "Present", Name: "The Sun", Orientation: "upright", Meaning: "Joy and clarity"},
			{Position: "Future", Name: "The Star", Orientation: "upright", Meaning: "Hope renewed"},
		},
	}
}

func textResponse(text string) string {
	resp := genResponse{}
	resp.Candidates = []struct {
		Content genContent `json:"content"`
	}{{Content: genContent{Parts: []genPart{{Text: text}}}}}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestClient(serverURL, apiKey string) *Client {
	return NewClient(
		&http.Client{Timeout: 5 * time.Second},
		apiKey,
		serverURL,
		"test-model",
		"test-tts-model",
		"",
		slog.Default(),
	).WithRetryBase(time.Millisecond)
}

func TestGenerateReading_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, textResponse("  The road north is favored.  "))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "secret-key")
	got, err := c.GenerateReading(context.Background(), testInput())
	if err != nil {
		t.Fatalf("GenerateReading: %v", err)
	}
	if got != "The road north is favored." {
		t.Errorf("reading = %q", got)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret-key" {
		t.Errorf("api key header = %q", gotKey)
	}

	var req genRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	prompt := req.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "Should I travel north?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(prompt, "[Past] - reversed The Moon: Confusion lifting") {
		t.Errorf("prompt missing card line:\n%s", prompt)
	}
	if req.GenerationConfig != nil {
		t.Error("text request carried a speech generation config")
	}
}

func TestGenerateReading_DefaultQuestion(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req genRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		io.WriteString(w, textResponse("ok"))
	}))
	defer srv.Close()

	in := testInput()
	in.Question = "   "
	if _, err := newTestClient(srv.URL, "k").GenerateReading(context.Background(), in); err != nil {
		t.Fatalf("GenerateReading: %v", err)
	}
	if !strings.Contains(prompt, DefaultQuestion) {
		t.Errorf("blank question not substituted:\n%s", prompt)
	}
}

func TestGenerateReading_EmptyTextIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").GenerateReading(context.Background(), testInput())
	if err != nil {
		t.Fatalf("GenerateReading: %v", err)
	}
	if got != NoResponseText {
		t.Errorf("reading = %q, want placeholder", got)
	}
}

func TestGenerateReading_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, textResponse("recovered"))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").GenerateReading(context.Background(), testInput())
	if err != nil {
		t.Fatalf("GenerateReading: %v", err)
	}
	if got != "recovered" {
		t.Errorf("reading = %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestGenerateReading_BackoffSchedule(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	base := 10 * time.Millisecond
	c := newTestClient(srv.URL, "k").WithRetryBase(base)

	start := time.Now()
	_, err := c.GenerateReading(context.Background(), testInput())
	elapsed := time.Since(start)

	if !errors.Is(err, domain.ErrUpstreamAI) {
		t.Fatalf("expected ErrUpstreamAI, got %v", err)
	}
	// Two retries wait 2x then 4x the base delay.
	if want := 6 * base; elapsed < want {
		t.Errorf("retries completed in %v, want at least %v", elapsed, want)
	}
}

func TestGenerateReading_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "k").GenerateReading(context.Background(), testInput())
	if !errors.Is(err, domain.ErrUpstreamAI) {
		t.Fatalf("expected ErrUpstreamAI, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestGenerateReading_TerminalKindsAbortImmediately(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			"quota by status code",
			http.StatusTooManyRequests,
			`{"error":{"code":429,"status":"RESOURCE_EXHAUSTED","message":"quota exceeded"}}`,
			domain.ErrQuotaExceeded,
		},
		{
			"region by precondition",
			http.StatusBadRequest,
			`{"error":{"code":400,"status":"FAILED_PRECONDITION","message":"location is not supported"}}`,
			domain.ErrRegionUnsupported,
		},
		{
			"bad key by status code",
			http.StatusForbidden,
			`{"error":{"code":403,"status":"PERMISSION_DENIED","message":"denied"}}`,
			domain.ErrCredentialInvalid,
		},
		{
			"bad key by message",
			http.StatusBadRequest,
			`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"API key not valid"}}`,
			domain.ErrCredentialInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, "k").GenerateReading(context.Background(), testInput())
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			if n := atomic.LoadInt32(&calls); n != 1 {
				t.Errorf("terminal failure was retried: %d calls", n)
			}
		})
	}
}

func TestGenerateReading_MissingKeySkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "   ").GenerateReading(context.Background(), testInput())
	if !errors.Is(err, domain.ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("no key but %d calls went out", n)
	}
}

func TestSynthesize_Success(t *testing.T) {
	pcm := []byte{0x10, 0x20, 0x30, 0x40}
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		resp := genResponse{}
		resp.Candidates = []struct {
			Content genContent `json:"content"`
		}{{Content: genContent{Parts: []genPart{{
			InlineData: &inlineData{
				MimeType: "audio/L16;codec=pcm;rate=24000",
				Data:     base64.StdEncoding.EncodeToString(pcm),
			},
		}}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, "k").Synthesize(context.Background(), "The road north is favored.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(got) != string(pcm) {
		t.Errorf("pcm = %x, want %x", got, pcm)
	}
	if gotPath != "/v1beta/models/test-tts-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}

	var req genRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.GenerationConfig == nil || len(req.GenerationConfig.ResponseModalities) != 1 ||
		req.GenerationConfig.ResponseModalities[0] != "AUDIO" {
		t.Error("audio modality not requested")
	}
	if req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Kore" {
		t.Error("default voice not applied")
	}
}

func TestSynthesize_NoAudioPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, textResponse("just words, no audio"))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL, "k").Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for response without audio data")
	}
}

func TestBuildPrompt_FormatRules(t *testing.T) {
	p := buildPrompt(testInput())
	for _, want := range []string{
		"Sacred Triangle",
		"1. [Past] - reversed The Moon: Confusion lifting",
		"2. [Present] - upright The Sun: Joy and clarity",
		"3. [Future] - upright The Star: Hope renewed",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
