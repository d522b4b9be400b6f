// Package audio plays short synthesized cues for game events.
// Sounds are generated oscillators, not samples, so the binary ships no
// assets. Audio is strictly best-effort: if the speaker cannot be opened the
// notifier stays silent and gameplay is unaffected.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue identifies a one-shot sound.
type Cue int

const (
	CueHit Cue = iota
	CueShieldPickup
	CueShieldAbsorb
	CueSlowMoPickup
	CueGameOver
)

// Notifier plays cues into a shared mixer. The zero value is disabled; call
// Init to attach the speaker.
type Notifier struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	enabled bool
}

// NewNotifier creates a silent notifier.
func NewNotifier() *Notifier {
	return &Notifier{mixer: &beep.Mixer{}}
}

// Init opens the speaker and starts the mixer. Returns the speaker error;
// callers may log it and continue, the notifier simply stays silent.
func (n *Notifier) Init() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*50)); err != nil {
		return err
	}
	speaker.Play(n.mixer)
	n.enabled = true
	return nil
}

// Close silences the mixer. The speaker itself stays open; beep provides no
// close call.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}
	speaker.Lock()
	n.mixer.Clear()
	speaker.Unlock()
	n.enabled = false
}

// Play queues a cue. Safe to call from the update loop; mixing happens on the
// speaker goroutine.
func (n *Notifier) Play(c Cue) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}

	var s beep.Streamer
	switch c {
	case CueHit:
		s = newTone(110, 180*time.Millisecond, waveSquare, 0.35)
	case CueShieldPickup:
		s = beep.Seq(
			newTone(523, 70*time.Millisecond, waveSine, 0.3),
			newTone(784, 110*time.Millisecond, waveSine, 0.3),
		)
	case CueShieldAbsorb:
		s = beep.Seq(
			newTone(784, 60*time.Millisecond, waveSquare, 0.25),
			newTone(392, 120*time.Millisecond, waveSquare, 0.25),
		)
	case CueSlowMoPickup:
		s = newTone(330, 220*time.Millisecond, waveSine, 0.3)
	case CueGameOver:
		s = beep.Seq(
			newTone(330, 150*time.Millisecond, waveSquare, 0.3),
			newTone(262, 150*time.Millisecond, waveSquare, 0.3),
			newTone(196, 300*time.Millisecond, waveSquare, 0.3),
		)
	default:
		return
	}

	speaker.Lock()
	n.mixer.Add(s)
	speaker.Unlock()
}

// CueForEvent maps a telemetry event kind to its cue. The second return is
// false for kinds with no sound.
func CueForEvent(kind string, detail string) (Cue, bool) {
	switch kind {
	case "hit":
		return CueHit, true
	case "shield_used":
		return CueShieldAbsorb, true
	case "game_over":
		return CueGameOver, true
	case "powerup_pickup":
		// Detail distinguishes the two pickup sounds.
		if detail == "shield" {
			return CueShieldPickup, true
		}
		return CueSlowMoPickup, true
	}
	return 0, false
}

type waveShape int

const (
	waveSine waveShape = iota
	waveSquare
)

// tone is a fixed-duration oscillator with a linear fade-out so cues never
// click at the end.
type tone struct {
	freq     float64
	phase    float64
	volume   float64
	wave     waveShape
	duration int
	position int
}

func newTone(freq float64, d time.Duration, wave waveShape, volume float64) beep.Streamer {
	return &tone{
		freq:     freq,
		volume:   volume,
		wave:     wave,
		duration: sampleRate.N(d),
	}
}

// Stream implements beep.Streamer.
func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, false
		}

		var val float64
		switch t.wave {
		case waveSquare:
			if t.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		default:
			val = math.Sin(2 * math.Pi * t.phase)
		}

		fade := 1.0 - float64(t.position)/float64(t.duration)
		val *= t.volume * fade

		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(sampleRate)
		if t.phase >= 1 {
			t.phase -= 1
		}
		t.position++
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (t *tone) Err() error { return nil }
