// Package recorder captures microphone audio for the Dictate structured
// action. Start opens a PortAudio input stream and accumulates mono PCM;
// Stop drains the stream and hands back a 16 kHz WAV ready for the
// transcription round trip. The arm/drain split mirrors Dictate's
// Threaded phases: Start is called from Starting() on the hook thread,
// Stop from Run() on the worker pool.
package recorder

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Recorder owns one input stream at a time. portaudio.Initialize() must
// have succeeded before New is called.
type Recorder struct {
	deviceRate     float64
	deviceChannels int
	targetRate     int
	limitSec       int

	mu      sync.Mutex
	stream  *portaudio.Stream
	pcm     []int16
	armed   bool
	clipped bool
	quit    chan struct{}
	drained chan struct{}
}

// New probes the default input device and returns a Recorder that
// resamples captured audio to targetSampleRate on Stop. Recordings
// longer than maxDurationSec are cut off and reported as truncated.
func New(targetSampleRate, maxDurationSec int) (*Recorder, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("default input device: %w", err)
	}
	return &Recorder{
		deviceRate:     dev.DefaultSampleRate,
		deviceChannels: dev.MaxInputChannels,
		targetRate:     targetSampleRate,
		limitSec:       maxDurationSec,
	}, nil
}

// MicAvailable reports whether PortAudio can see a usable input device.
func MicAvailable() bool {
	dev, err := portaudio.DefaultInputDevice()
	return err == nil && dev != nil && dev.MaxInputChannels > 0
}

// Start opens the input stream and begins accumulating samples. A
// second Start while armed is an error; Dictate's Starting() guard
// normally prevents it from ever being reached.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.armed {
		return fmt.Errorf("already recording")
	}

	channels := r.deviceChannels
	if channels > 2 {
		channels = 2
	}
	if channels < 1 {
		channels = 1
	}

	frames := int(r.deviceRate / 10)
	chunk := make([]int16, frames*channels)

	stream, err := portaudio.OpenDefaultStream(channels, 0, r.deviceRate, frames, &chunk)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	r.stream = stream
	r.pcm = nil
	r.armed = true
	r.clipped = false
	r.quit = make(chan struct{})
	r.drained = make(chan struct{})
	go r.capture(stream, chunk, channels, r.quit, r.drained)
	return nil
}

// capture reads ~100ms chunks off the stream until told to quit or the
// duration limit trips, folding interleaved stereo to mono as it goes.
func (r *Recorder) capture(stream *portaudio.Stream, chunk []int16, channels int, quit, drained chan struct{}) {
	defer close(drained)
	limit := int(r.deviceRate) * r.limitSec

	for {
		select {
		case <-quit:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			return
		}

		r.mu.Lock()
		if !r.armed {
			r.mu.Unlock()
			return
		}
		r.pcm = append(r.pcm, foldToMono(chunk, channels)...)
		if len(r.pcm) >= limit {
			r.clipped = true
			r.armed = false
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

// foldToMono averages interleaved stereo pairs; mono input passes
// through as a copy.
func foldToMono(chunk []int16, channels int) []int16 {
	if channels != 2 {
		out := make([]int16, len(chunk))
		copy(out, chunk)
		return out
	}
	out := make([]int16, 0, len(chunk)/2)
	for i := 0; i+1 < len(chunk); i += 2 {
		out = append(out, int16((int32(chunk[i])+int32(chunk[i+1]))/2))
	}
	return out
}

// Stop tears down the stream and returns the captured audio as a mono
// WAV at the target sample rate. The bool reports whether the recording
// hit the duration limit before Stop was called.
func (r *Recorder) Stop() ([]byte, bool, error) {
	r.mu.Lock()
	wasArmed := r.armed
	clipped := r.clipped
	r.armed = false
	quit := r.quit
	drained := r.drained
	r.mu.Unlock()

	if !wasArmed && !clipped {
		return nil, false, fmt.Errorf("not recording")
	}

	// The capture goroutine must be fully out of stream.Read before the
	// stream is closed underneath it.
	if quit != nil {
		close(quit)
	}
	if drained != nil {
		<-drained
	}

	if r.stream != nil {
		r.stream.Stop()
		r.stream.Close()
		r.stream = nil
	}

	r.mu.Lock()
	samples := make([]int16, len(r.pcm))
	copy(samples, r.pcm)
	r.mu.Unlock()

	if len(samples) == 0 {
		return nil, clipped, fmt.Errorf("no audio captured")
	}

	if int(r.deviceRate) != r.targetRate {
		resampled, err := Resample(samples, r.deviceRate, float64(r.targetRate))
		if err != nil {
			return nil, clipped, fmt.Errorf("resample: %w", err)
		}
		samples = resampled
	}

	wavData, err := EncodeWAV(samples, r.targetRate)
	if err != nil {
		return nil, clipped, fmt.Errorf("encode wav: %w", err)
	}
	return wavData, clipped, nil
}
