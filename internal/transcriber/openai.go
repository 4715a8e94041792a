package transcriber

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/keymapd/keyhac/internal/config"
)

// OpenAI posts WAV audio to an OpenAI-compatible
// /v1/audio/transcriptions endpoint and returns the plain-text body.
type OpenAI struct {
	endpoint string
	model    string
	timeout  time.Duration
	client   *http.Client
	logger   *log.Logger
}

// NewOpenAI builds the HTTP backend from cfg. TLSSkipVerify is a
// user-configured opt-in for self-signed local servers.
func NewOpenAI(cfg *config.TranscriptionConfig, logger *log.Logger) *OpenAI {
	client := &http.Client{}
	if cfg.TLSSkipVerify {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/v1/audio/transcriptions",
		model:    cfg.Model,
		timeout:  timeout,
		client:   client,
		logger:   logger,
	}
}

// Transcribe uploads wavData as a multipart form and returns the
// trimmed response body. response_format=text keeps the body plain so
// no JSON envelope needs decoding.
func (o *OpenAI) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	body, contentType, err := encodeUpload(wavData, o.model)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	if o.logger != nil {
		o.logger.Printf("transcribe: POST %s wav=%dB", o.endpoint, len(wavData))
	}
	began := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if o.logger != nil {
		o.logger.Printf("transcribe: status=%d in %s", resp.StatusCode, time.Since(began).Round(time.Millisecond))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, raw)
	}
	return strings.TrimSpace(string(raw)), nil
}

// encodeUpload packs wavData and the model/response_format fields into
// a multipart body.
func encodeUpload(wavData []byte, model string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("write wav part: %w", err)
	}
	for field, value := range map[string]string{
		"model":           model,
		"response_format": "text",
	} {
		if err := w.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
