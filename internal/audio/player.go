// Package audio provides toast sound playback.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Sink receives decoded audio. The speaker is the production sink.
type Sink interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Close()
}

type speakerSink struct{}

func (speakerSink) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerSink) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerSink) Close()               { speaker.Close() }

// Player decodes and plays sound files, caching decoded buffers by path.
type Player struct {
	mu          sync.Mutex
	logger      *slog.Logger
	sink        Sink
	volume      float64 // 0.0 to 1.0
	initialized bool
	sampleRate  beep.SampleRate
	cache       map[string]cachedSound
}

// cachedSound is a decoded file and the modification time it was read at.
type cachedSound struct {
	buffer  *beep.Buffer
	modTime time.Time
}

// NewPlayer creates a player that writes to the system speaker.
func NewPlayer(logger *slog.Logger) *Player {
	return NewPlayerWithSink(speakerSink{}, logger)
}

// NewPlayerWithSink creates a player that writes to sink.
func NewPlayerWithSink(sink Sink, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger:     logger,
		sink:       sink,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]cachedSound),
	}
}

// SetVolume sets the playback volume from a 0-100 percentage.
func (p *Player) SetVolume(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(float64(percent)/100, 0), 1)
}

// Volume returns the current volume as a 0.0-1.0 factor.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play plays a WAV, OGG or MP3 file. An empty path is a no-op.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	path = expandHome(path)

	p.mu.Lock()
	defer p.mu.Unlock()

	buffer, err := p.bufferLocked(path)
	if err != nil {
		return err
	}

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())
	if buffer.Format().SampleRate != p.sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, p.sampleRate, streamer)
	}
	if p.volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   volumeToExponent(p.volume),
			Silent:   p.volume == 0,
		}
	}

	p.sink.Play(streamer)
	return nil
}

// bufferLocked returns the decoded sound for path, decoding it again when
// the file changed since it was cached. Caller must hold the lock.
func (p *Player) bufferLocked(path string) (*beep.Buffer, error) {
	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	if cached, ok := p.cache[path]; ok {
		if !modTime.After(cached.modTime) {
			return cached.buffer, nil
		}
		p.logger.Debug("sound file changed, reloading", "path", path)
	}

	buffer, err := p.loadLocked(path)
	if err != nil {
		delete(p.cache, path)
		return nil, err
	}
	p.cache[path] = cachedSound{buffer: buffer, modTime: modTime}
	return buffer, nil
}

// loadLocked decodes a sound file. Caller must hold the lock.
func (p *Player) loadLocked(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	if !p.initialized {
		if err := p.sink.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond)); err != nil {
			return nil, fmt.Errorf("failed to initialize speaker: %w", err)
		}
		p.sampleRate = format.SampleRate
		p.initialized = true
		p.logger.Debug("speaker initialized", "sample_rate", format.SampleRate)
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// Close releases the speaker and drops cached sounds.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		p.sink.Close()
		p.initialized = false
	}
	p.cache = make(map[string]cachedSound)
}

// volumeToExponent converts a linear 0-1 volume to a base-2 exponent for
// effects.Volume.
func volumeToExponent(volume float64) float64 {
	if volume <= 0 {
		return -10
	}
	return math.Log2(volume)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
