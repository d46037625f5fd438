package sound

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

// Effect identifies a playable chime.
type Effect string

const (
	EffectComplete Effect = "complete"
	EffectLoop     Effect = "loop"
)

// Player decodes chime clips once and plays them through the speaker.
// All methods are safe on a nil receiver, so callers may run without
// audio when the device fails to open.
type Player struct {
	mu      sync.Mutex
	buffers map[Effect]*beep.Buffer
	enabled bool
	volume  float64
	logger  *zap.Logger
}

// NewPlayer decodes the given WAV clips and initializes the speaker with
// the sample rate of the first clip. All clips must share one rate.
func NewPlayer(clips map[Effect][]byte, logger *zap.Logger) (*Player, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	player := &Player{
		buffers: make(map[Effect]*beep.Buffer),
		enabled: true,
		volume:  1.0,
		logger:  logger,
	}

	var initialized bool
	for effect, clip := range clips {
		streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(clip)))
		if err != nil {
			return nil, fmt.Errorf("decode %s clip: %w", effect, err)
		}

		if !initialized {
			if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
				streamer.Close()
				return nil, fmt.Errorf("init speaker: %w", err)
			}
			initialized = true
		}

		buffer := beep.NewBuffer(format)
		buffer.Append(streamer)
		player.buffers[effect] = buffer
		streamer.Close()
	}

	return player, nil
}

// Play starts the clip for the given effect without blocking.
func (player *Player) Play(effect Effect) {
	if player == nil {
		return
	}

	player.mu.Lock()
	buffer := player.buffers[effect]
	enabled := player.enabled
	volume := player.volume
	player.mu.Unlock()

	if buffer == nil || !enabled {
		return
	}

	speaker.Play(&effects.Volume{
		Streamer: buffer.Streamer(0, buffer.Len()),
		Base:     2,
		Volume:   volumeExponent(volume),
		Silent:   volume <= 0,
	})
}

// SetEnabled toggles playback.
func (player *Player) SetEnabled(enabled bool) {
	if player == nil {
		return
	}
	player.mu.Lock()
	player.enabled = enabled
	player.mu.Unlock()
}

// SetVolume sets the playback volume, clamped to [0, 1].
func (player *Player) SetVolume(volume float64) {
	if player == nil {
		return
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	player.mu.Lock()
	player.volume = volume
	player.mu.Unlock()
}

// volumeExponent maps a linear [0, 1] volume onto the exponential scale
// used by effects.Volume, with 1.0 mapping to unity gain.
func volumeExponent(volume float64) float64 {
	return (volume - 1) * 4
}
