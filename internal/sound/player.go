// Package sound manages the single loopable alarm voice on top of the
// oto audio engine. The player is constructed once at startup and handed to
// the controller; no other component touches it.
package sound

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/lucidlog/lucidlog/internal/logger"
)

// previewWindow is how long Preview plays before auto-stopping.
const previewWindow = 5 * time.Second

// Playback format of the shared oto context. Catalog assets must be
// shipped in this format; Play rejects anything else, since the context
// would otherwise interpret the samples at the wrong rate and play them
// pitched or garbled.
const (
	playbackSampleRate = 44100
	playbackChannels   = 2
	playbackBitDepth   = 16
)

// Player plays catalog sounds through a single audio voice. Play always
// replaces the current voice; Stop silences it. The oto context is created
// lazily on first use (or eagerly via Unlock) because opening the audio
// device can fail on headless hosts, and that failure must reach the
// caller as a status rather than a crash.
type Player struct {
	assetDir string

	ctxOnce sync.Once
	ctx     *oto.Context
	ctxErr  error

	mu           sync.Mutex
	voice        *voice
	previewTimer *time.Timer
}

// NewPlayer returns a player resolving catalog files against assetDir.
func NewPlayer(assetDir string) *Player {
	return &Player{assetDir: assetDir}
}

// Unlock opens the audio device ahead of time so the first ring does not
// pay the initialization cost. Call it from a startup path; failures are
// returned so the caller can surface a "sound unavailable" notice.
func (p *Player) Unlock() error {
	return p.ensureContext()
}

// Play loops the catalog sound with the given id at volume 0-100. Any
// currently playing voice is stopped first. An unknown id logs a warning
// and no-ops; an unavailable audio device or unreadable asset is returned
// as an error for the caller to degrade on.
func (p *Player) Play(soundID string, volume int) error {
	entry, ok := Lookup(soundID)
	if !ok {
		logger.Warn("alarm sound not in catalog", "sound_id", soundID)
		return nil
	}

	data, err := os.ReadFile(filepath.Join(p.assetDir, filepath.FromSlash(entry.File)))
	if err != nil {
		return fmt.Errorf("failed to load alarm sound %q: %w", soundID, err)
	}

	format, samples, err := parseWAV(data)
	if err != nil {
		return fmt.Errorf("failed to parse alarm sound %q: %w", soundID, err)
	}
	if format.sampleRate != playbackSampleRate || format.channels != playbackChannels || format.bitDepth != playbackBitDepth {
		return fmt.Errorf("alarm sound %q is %d Hz %d-channel %d-bit; playback needs %d Hz %d-channel %d-bit PCM",
			soundID, format.sampleRate, format.channels, format.bitDepth,
			playbackSampleRate, playbackChannels, playbackBitDepth)
	}

	if err := p.ensureContext(); err != nil {
		return fmt.Errorf("audio unavailable: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	v := &voice{
		ctx:      p.ctx,
		samples:  samples,
		volume:   clampVolume(volume),
		stopChan: make(chan struct{}),
	}
	p.voice = v
	go v.loop()

	return nil
}

// Stop silences the current voice. Safe to call when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Preview plays a sound for a fixed five-second audition window, then
// stops. Used by the settings surface, not the live alarm path.
func (p *Player) Preview(soundID string, volume int) error {
	if err := p.Unlock(); err != nil {
		return err
	}
	if err := p.Play(soundID, volume); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.previewTimer != nil {
		p.previewTimer.Stop()
	}
	p.previewTimer = time.AfterFunc(previewWindow, p.Stop)
	return nil
}

func (p *Player) stopLocked() {
	if p.previewTimer != nil {
		p.previewTimer.Stop()
		p.previewTimer = nil
	}
	if p.voice != nil {
		p.voice.stop()
		p.voice = nil
	}
}

// ensureContext opens the audio device once. All catalog assets share one
// PCM format, so a single context serves every sound.
func (p *Player) ensureContext() error {
	p.ctxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			p.ctxErr = err
			return
		}
		<-ready
		p.ctx = ctx
	})
	return p.ctxErr
}

func clampVolume(volume int) float64 {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	return float64(volume) / 100
}

// voice is one looping playback of a decoded sound.
type voice struct {
	ctx      *oto.Context
	samples  []byte
	volume   float64
	stopChan chan struct{}
	stopOnce sync.Once
}

func (v *voice) stop() {
	v.stopOnce.Do(func() {
		close(v.stopChan)
	})
}

// loop plays the sample buffer end to end until stopped, re-creating the
// oto player per iteration so each pass starts from the beginning.
func (v *voice) loop() {
	for {
		player := v.ctx.NewPlayer(bytes.NewReader(v.samples))
		player.SetVolume(v.volume)
		player.Play()

		for player.IsPlaying() {
			select {
			case <-v.stopChan:
				player.Pause()
				if err := player.Close(); err != nil {
					logger.Warn("failed to close audio player", "error", err)
				}
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		if err := player.Close(); err != nil {
			logger.Warn("failed to close audio player", "error", err)
		}

		select {
		case <-v.stopChan:
			return
		default:
		}
	}
}
