package recorder

import (
	"fmt"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts mono int16 PCM from inputRate to outputRate through
// go-audio-resampling's polyphase FIR (QualityLow is 16-bit precision,
// enough for speech). Same-rate or empty input is returned unchanged.
func Resample(samples []int16, inputRate, outputRate float64) ([]int16, error) {
	if inputRate == outputRate || len(samples) == 0 {
		return samples, nil
	}

	floats := make([]float64, len(samples))
	for i, s := range samples {
		floats[i] = float64(s) / 32768.0
	}

	resampled, err := resampling.ResampleMono(floats, inputRate, outputRate, resampling.QualityLow)
	if err != nil {
		return nil, fmt.Errorf("resample mono: %w", err)
	}

	out := make([]int16, len(resampled))
	for i, f := range resampled {
		v := math.Round(f * 32768.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out, nil
}

// EncodeWAV renders mono int16 PCM as an in-memory 16-bit WAV. Also
// used by internal/chime to synthesize its default tones.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	ws := &memWriteSeeker{}

	buf := &audio.IntBuffer{
		Data:           make([]int, len(samples)),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return ws.buf, nil
}

// memWriteSeeker satisfies the io.WriteSeeker the wav encoder needs to
// backpatch chunk sizes, without touching the filesystem.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (ws *memWriteSeeker) Write(p []byte) (int, error) {
	end := ws.pos + len(p)
	if end > len(ws.buf) {
		ws.buf = append(ws.buf, make([]byte, end-len(ws.buf))...)
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos = end
	return len(p), nil
}

func (ws *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case 0:
		next = int(offset)
	case 1:
		next = ws.pos + int(offset)
	case 2:
		next = len(ws.buf) + int(offset)
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if next < 0 || next > len(ws.buf) {
		return 0, fmt.Errorf("seek position %d out of bounds [0, %d]", next, len(ws.buf))
	}
	ws.pos = next
	return int64(ws.pos), nil
}
