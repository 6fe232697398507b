package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrNotWAV      = errors.New("not a RIFF/WAVE file")
	ErrUnsupported = errors.New("unsupported WAV encoding, need 16-bit PCM")
)

// Clip is decoded mono 16-bit PCM audio
type Clip struct {
	SampleRate int
	Samples    []int16
}

// Duration returns the clip length in milliseconds
func (c *Clip) Duration() int {
	if c.SampleRate == 0 {
		return 0
	}
	return len(c.Samples) * 1000 / c.SampleRate
}

// DecodeWAV parses a 16-bit PCM WAV file. Multi-channel audio is mixed down
// to mono by averaging channels.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		audioFormat   int
		pcm           []byte
	)

	// Walk the chunk list; only fmt and data matter here
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			audioFormat = int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if audioFormat != 1 || bitsPerSample != 16 {
		return nil, ErrUnsupported
	}
	if channels < 1 || sampleRate < 1 || pcm == nil {
		return nil, ErrNotWAV
	}

	frameSize := 2 * channels
	n := len(pcm) / frameSize
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			off := i*frameSize + ch*2
			sum += int(int16(binary.LittleEndian.Uint16(pcm[off : off+2])))
		}
		samples[i] = int16(sum / channels)
	}

	return &Clip{SampleRate: sampleRate, Samples: samples}, nil
}

// EncodeWAV renders the clip as a mono 16-bit PCM WAV file
func (c *Clip) EncodeWAV() []byte {
	dataLen := len(c.Samples) * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(c.SampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(s))
	}
	return buf
}

// DBFS returns the RMS loudness of the samples relative to full scale.
// Silence (all zero) returns -Inf.
func DBFS(samples []int16) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/32768.0)
}

// DBFS returns the overall loudness of the clip
func (c *Clip) DBFS() float64 {
	return DBFS(c.Samples)
}

// SplitOptions tune silence detection. Zero values fall back to the defaults
// used for transcription chunking.
type SplitOptions struct {
	MinSilenceMS    int     // minimum silence run to split on (default 500)
	SilenceThreshDB float64 // absolute dBFS below which a window is silent
	KeepSilenceMS   int     // padding retained around each chunk (default 250)
}

const windowMS = 10

// SplitOnSilence cuts the clip into spoken chunks separated by silence runs
// of at least MinSilenceMS. Each chunk keeps KeepSilenceMS of padding on both
// sides where available.
func SplitOnSilence(c *Clip, opts SplitOptions) []*Clip {
	if opts.MinSilenceMS <= 0 {
		opts.MinSilenceMS = 500
	}
	if opts.KeepSilenceMS < 0 {
		opts.KeepSilenceMS = 0
	}
	if opts.SilenceThreshDB == 0 {
		opts.SilenceThreshDB = c.DBFS() - 16
	}

	win := c.SampleRate * windowMS / 1000
	if win < 1 {
		win = 1
	}
	nWin := (len(c.Samples) + win - 1) / win
	if nWin == 0 {
		return nil
	}

	silent := make([]bool, nWin)
	for i := 0; i < nWin; i++ {
		start := i * win
		end := start + win
		if end > len(c.Samples) {
			end = len(c.Samples)
		}
		silent[i] = DBFS(c.Samples[start:end]) < opts.SilenceThreshDB
	}

	minRun := opts.MinSilenceMS / windowMS

	// Nonsilent window ranges [start, end)
	type span struct{ start, end int }
	var spans []span
	i := 0
	for i < nWin {
		if silent[i] {
			i++
			continue
		}
		start := i
		for i < nWin {
			if !silent[i] {
				i++
				continue
			}
			// Lookahead: only split if the silence run is long enough
			run := 0
			for j := i; j < nWin && silent[j]; j++ {
				run++
			}
			if run >= minRun {
				break
			}
			i += run
		}
		spans = append(spans, span{start, i})
		// Skip the silence run
		for i < nWin && silent[i] {
			i++
		}
	}

	keep := c.SampleRate * opts.KeepSilenceMS / 1000
	chunks := make([]*Clip, 0, len(spans))
	for _, sp := range spans {
		start := sp.start*win - keep
		if start < 0 {
			start = 0
		}
		end := sp.end*win + keep
		if end > len(c.Samples) {
			end = len(c.Samples)
		}
		seg := make([]int16, end-start)
		copy(seg, c.Samples[start:end])
		chunks = append(chunks, &Clip{SampleRate: c.SampleRate, Samples: seg})
	}
	return chunks
}
