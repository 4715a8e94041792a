// Package chime plays short audio cues on dictation start/stop through
// beep's speaker. The default tones are synthesized in memory
// (ascending sine sweep for start, descending for stop); a config may
// point at WAV files to use instead.
package chime

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/keymapd/keyhac/internal/recorder"
)

const (
	chimeSampleRate = 44100
	chimeDuration   = 0.15 // 150ms
)

// Player manages audio chime playback.
type Player struct {
	startData []byte
	stopData  []byte
	enabled   bool
	logger    *log.Logger
	initOnce  sync.Once
	initErr   error
}

// New creates a Player. If startPath/stopPath are empty, in-memory
// default tones are synthesized (ascending sweep for start, descending
// for stop). If enabled is false, PlayStart/PlayStop are no-ops.
func New(startPath, stopPath string, enabled bool, logger *log.Logger) (*Player, error) {
	startDefault, err := synthesizeChime(440, 523)
	if err != nil {
		return nil, fmt.Errorf("synthesize start chime: %w", err)
	}
	stopDefault, err := synthesizeChime(523, 440)
	if err != nil {
		return nil, fmt.Errorf("synthesize stop chime: %w", err)
	}

	p := &Player{
		startData: startDefault,
		stopData:  stopDefault,
		enabled:   enabled,
		logger:    logger,
	}

	if startPath != "" {
		data, err := os.ReadFile(startPath)
		if err != nil {
			return nil, fmt.Errorf("read start chime %s: %w", startPath, err)
		}
		p.startData = data
	}

	if stopPath != "" {
		data, err := os.ReadFile(stopPath)
		if err != nil {
			return nil, fmt.Errorf("read stop chime %s: %w", stopPath, err)
		}
		p.stopData = data
	}

	return p, nil
}

// synthesizeChime generates a short sine sweep from startFreq to
// endFreq, windowed by a half-sine envelope so it fades in and out
// cleanly, and encodes it as WAV.
func synthesizeChime(startFreq, endFreq float64) ([]byte, error) {
	numSamples := int(float64(chimeSampleRate) * chimeDuration)
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		t := float64(i) / float64(chimeSampleRate)
		progress := float64(i) / float64(numSamples)
		freq := startFreq + (endFreq-startFreq)*progress
		envelope := math.Sin(math.Pi * progress)
		val := math.Sin(2*math.Pi*freq*t) * envelope * 16000
		samples[i] = int16(val)
	}
	return recorder.EncodeWAV(samples, chimeSampleRate)
}

func (p *Player) initSpeaker(format beep.Format) {
	p.initOnce.Do(func() {
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
}

func (p *Player) play(data []byte) {
	if !p.enabled || len(data) == 0 {
		return
	}

	go func() {
		reader := bytes.NewReader(data)
		streamer, format, err := wav.Decode(reader)
		if err != nil {
			if p.logger != nil {
				p.logger.Printf("chime: wav decode error: %v", err)
			}
			return
		}
		defer streamer.Close()

		p.initSpeaker(format)
		if p.initErr != nil {
			if p.logger != nil {
				p.logger.Printf("chime: speaker init error: %v", p.initErr)
			}
			return
		}

		done := make(chan struct{})
		speaker.Play(beep.Seq(streamer, beep.Callback(func() {
			close(done)
		})))
		<-done
	}()
}

// PlayStart plays the start recording chime (non-blocking).
func (p *Player) PlayStart() {
	p.play(p.startData)
}

// PlayStop plays the stop recording chime (non-blocking).
func (p *Player) PlayStop() {
	p.play(p.stopData)
}
