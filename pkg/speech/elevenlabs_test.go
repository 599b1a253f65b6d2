package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSynthesizeReturnsAudioBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.HasSuffix(r.URL.Path, "/voice-1") {
			t.Errorf("voice id not in path: %s", r.URL.Path)
		}
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "hello there" {
			t.Errorf("unexpected text: %q", req.Text)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client, err := NewElevenLabsClient("test-key", "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.WithBaseURL(srv.URL)

	audio, err := client.Synthesize(context.Background(), "hello there", "voice-1")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio: %q", audio)
	}
}

func TestSynthesizeServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := NewElevenLabsClient("test-key", "")
	client.WithBaseURL(srv.URL)

	if _, err := client.Synthesize(context.Background(), "hello", "voice-1"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestSynthesizeValidatesInput(t *testing.T) {
	client, _ := NewElevenLabsClient("test-key", "")
	if _, err := client.Synthesize(context.Background(), "", "voice-1"); err == nil {
		t.Fatal("expected error for empty text")
	}
	if _, err := client.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatal("expected error for empty voice")
	}
}

func TestVoiceForPersona(t *testing.T) {
	if VoiceForPersona("Wise") != personaVoices["wise"] {
		t.Fatal("persona lookup should be case-insensitive")
	}
	if VoiceForPersona("unknown-persona") != defaultVoiceID {
		t.Fatal("unknown persona should fall back to default voice")
	}
	if VoiceForPersona("") != defaultVoiceID {
		t.Fatal("empty persona should fall back to default voice")
	}
}
