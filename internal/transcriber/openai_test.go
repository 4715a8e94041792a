package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keymapd/keyhac/internal/config"
)

func TestOpenAITranscribe(t *testing.T) {
	wav := []byte("RIFFfakewavdata")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model field: got %q, want %q", got, "whisper-1")
		}
		if got := r.FormValue("response_format"); got != "text" {
			t.Errorf("response_format field: got %q, want %q", got, "text")
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part missing: %v", err)
		}
		defer f.Close()
		buf := make([]byte, len(wav))
		if _, err := f.Read(buf); err != nil {
			t.Fatalf("read file part: %v", err)
		}
		if string(buf) != string(wav) {
			t.Error("uploaded wav does not match input")
		}
		w.Write([]byte("  hello world\n"))
	}))
	defer srv.Close()

	o := NewOpenAI(&config.TranscriptionConfig{
		BaseURL:    srv.URL,
		Model:      "whisper-1",
		TimeoutSec: 5,
	}, nil)

	text, err := o.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("got %q, want %q", text, "hello world")
	}
}

func TestOpenAITranscribeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := NewOpenAI(&config.TranscriptionConfig{BaseURL: srv.URL, Model: "whisper-1", TimeoutSec: 5}, nil)
	if _, err := o.Transcribe(context.Background(), []byte("x")); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestOpenAITranscribeUnreachable(t *testing.T) {
	o := NewOpenAI(&config.TranscriptionConfig{BaseURL: "http://127.0.0.1:1", Model: "m", TimeoutSec: 1}, nil)
	if _, err := o.Transcribe(context.Background(), []byte("x")); err == nil {
		t.Error("expected error when nothing is listening")
	}
}
