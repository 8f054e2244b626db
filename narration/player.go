package narration

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

const sampleRate = beep.SampleRate(48000)

// Player plays a narration line and reports completion exactly once
// The done callback may be invoked from the audio goroutine; callers
// push it onto the event queue rather than acting on it directly
type Player interface {
	Play(line Line, done func())
	Stop()
}

// BeepPlayer synthesizes line cues through the speaker. When speaker
// initialization fails it degrades to silent mode: done fires after the
// line's nominal duration so phase pacing is preserved
type BeepPlayer struct {
	mu          sync.Mutex
	initialized bool
	current     *beep.Ctrl
	log         zerolog.Logger
}

// NewBeepPlayer initializes the speaker. Failure is not an error; the
// player runs silent
func NewBeepPlayer(log zerolog.Logger) *BeepPlayer {
	p := &BeepPlayer{log: log.With().Str("component", "narration").Logger()}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		p.log.Warn().Err(err).Msg("audio backend unavailable, narration runs silent")
		return p
	}
	p.initialized = true
	return p
}

// Play starts a line. A line already playing is cut off; its done
// callback was handed to the speaker and still fires when its streamer
// is dropped, so callers must disarm stale completions via their own
// sequencing (the flow controller keys completions by line ID)
func (p *BeepPlayer) Play(line Line, done func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		time.AfterFunc(line.Duration, done)
		return
	}

	if p.current != nil {
		speaker.Lock()
		p.current.Paused = true
		speaker.Unlock()
	}

	streamers := make([]beep.Streamer, 0, len(line.notes)+1)
	for _, n := range line.notes {
		streamers = append(streamers, newTone(n.freq, n.dur))
	}
	streamers = append(streamers, beep.Callback(done))

	ctrl := &beep.Ctrl{Streamer: beep.Seq(streamers...)}
	p.current = ctrl
	speaker.Play(ctrl)
}

// Stop silences the current line without firing its completion
func (p *BeepPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		speaker.Lock()
		p.current.Paused = true
		speaker.Unlock()
		p.current = nil
	}
}

// tone is a sine oscillator with a short attack/release envelope to
// avoid clicks between notes
type tone struct {
	freq     float64
	phase    float64
	duration int
	position int
	envelope int // Samples of attack and release ramp
}

func newTone(freq float64, dur time.Duration) beep.Streamer {
	samples := sampleRate.N(dur)
	return &tone{
		freq:     freq,
		duration: samples,
		envelope: sampleRate.N(5 * time.Millisecond),
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, false
		}

		val := math.Sin(2 * math.Pi * t.phase)

		// Envelope
		if t.position < t.envelope {
			val *= float64(t.position) / float64(t.envelope)
		} else if remaining := t.duration - t.position; remaining < t.envelope {
			val *= float64(remaining) / float64(t.envelope)
		}

		samples[i][0] = val * 0.6
		samples[i][1] = val * 0.6

		t.phase += t.freq / float64(sampleRate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
