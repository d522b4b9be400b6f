package dodge

import "github.com/vovakirdan/space-dodge/internal/config"

// BlockSnapshot is one flushed aggregation window, reported through a
// BlockFlushEvent. Averages are time-weighted over the block duration.
type BlockSnapshot struct {
	Index         int      `json:"index"`
	DurationSec   float64  `json:"duration_sec"`
	DifficultyAvg float64  `json:"difficulty_avg"`
	SpeedScaleAvg float64  `json:"speed_scale_avg"`
	Spawned       int      `json:"spawned"`
	Avoided       int      `json:"avoided"`
	Hits          int      `json:"hits"`
	NearMisses    int      `json:"near_misses"`
	MovementUnits int      `json:"movement_units"`
	SuccessRate   *float64 `json:"success_rate"`
}

// SessionSummary is the whole-session aggregate reported when a session ends.
type SessionSummary struct {
	DurationSec      float64
	FinalDifficulty  float64
	LivesRemaining   int
	ShieldsCollected int
	NearMisses       int
	MeteorsSpawned   int
	MeteorsAvoided   int
}

type moveSample struct {
	atMs float64
	dx   float64
}

// movementWindow tracks recent horizontal travel so the difficulty ramp can
// reward active dodging. Samples older than the window are evicted as time
// advances.
type movementWindow struct {
	windowMs  float64
	threshold float64
	samples   []moveSample
	sum       float64
}

func newMovementWindow(windowSec, threshold float64) *movementWindow {
	return &movementWindow{windowMs: windowSec * 1000, threshold: threshold}
}

// Add records |dx| field units of travel at the given simulation time and
// drops samples that have aged out.
func (w *movementWindow) Add(nowMs, dx float64) {
	if dx < 0 {
		dx = -dx
	}
	if dx > 0 {
		w.samples = append(w.samples, moveSample{atMs: nowMs, dx: dx})
		w.sum += dx
	}
	cutoff := nowMs - w.windowMs
	i := 0
	for i < len(w.samples) && w.samples[i].atMs < cutoff {
		w.sum -= w.samples[i].dx
		i++
	}
	if i > 0 {
		w.samples = append(w.samples[:0], w.samples[i:]...)
	}
}

// Active reports whether windowed travel meets the configured threshold.
func (w *movementWindow) Active() bool {
	return w.sum >= w.threshold
}

// Total returns the windowed travel in field units.
func (w *movementWindow) Total() float64 { return w.sum }

// metricsAggregator accumulates session-wide counters and the current metrics
// block. Blocks flush at the configured duration; a final partial block
// flushes at game over unless it is below the noise floor.
type metricsAggregator struct {
	cfg config.MetricsConfig

	// session totals
	spawned    int
	avoided    int
	hits       int
	nearMisses int
	shields    int

	// current block
	blockIndex    int
	blockDurSec   float64
	blockDiffAcc  float64
	blockSpeedAcc float64
	blockSpawned  int
	blockAvoided  int
	blockHits     int
	blockNear     int
	blockMovement float64

	flushedFinal bool
}

func newMetricsAggregator(cfg config.MetricsConfig) *metricsAggregator {
	return &metricsAggregator{cfg: cfg}
}

// Accumulate folds one frame into the current block. Difficulty and speed
// scale are weighted by dt so averages survive variable frame pacing.
func (m *metricsAggregator) Accumulate(dtSec, difficulty, speedScale, dx float64) {
	m.blockDurSec += dtSec
	m.blockDiffAcc += difficulty * dtSec
	m.blockSpeedAcc += speedScale * dtSec
	if dx < 0 {
		dx = -dx
	}
	m.blockMovement += dx
}

func (m *metricsAggregator) CountSpawned(n int) {
	m.spawned += n
	m.blockSpawned += n
}

func (m *metricsAggregator) CountAvoided() {
	m.avoided++
	m.blockAvoided++
}

func (m *metricsAggregator) CountHit() {
	m.hits++
	m.blockHits++
}

func (m *metricsAggregator) CountNearMiss() {
	m.nearMisses++
	m.blockNear++
}

func (m *metricsAggregator) CountShield() {
	m.shields++
}

// BlockDue reports whether the current block has reached its full duration.
func (m *metricsAggregator) BlockDue() bool {
	return m.blockDurSec >= m.cfg.BlockSeconds
}

// FlushBlock snapshots and resets the current block.
func (m *metricsAggregator) FlushBlock() BlockSnapshot {
	snap := BlockSnapshot{
		Index:         m.blockIndex,
		DurationSec:   m.blockDurSec,
		Spawned:       m.blockSpawned,
		Avoided:       m.blockAvoided,
		Hits:          m.blockHits,
		NearMisses:    m.blockNear,
		MovementUnits: int(m.blockMovement),
	}
	if m.blockDurSec > 0 {
		snap.DifficultyAvg = m.blockDiffAcc / m.blockDurSec
		snap.SpeedScaleAvg = m.blockSpeedAcc / m.blockDurSec
	}
	if m.blockSpawned > 0 {
		rate := float64(m.blockAvoided) / float64(m.blockSpawned)
		snap.SuccessRate = &rate
	}

	m.blockIndex++
	m.blockDurSec = 0
	m.blockDiffAcc = 0
	m.blockSpeedAcc = 0
	m.blockSpawned = 0
	m.blockAvoided = 0
	m.blockHits = 0
	m.blockNear = 0
	m.blockMovement = 0
	return snap
}

// FlushFinal flushes the in-progress block at session end. Blocks shorter
// than the noise floor are discarded so a record never represents a sliver of
// play. Safe to call more than once; only the first call can produce a block.
func (m *metricsAggregator) FlushFinal() (BlockSnapshot, bool) {
	if m.flushedFinal {
		return BlockSnapshot{}, false
	}
	m.flushedFinal = true
	if m.blockDurSec < m.cfg.MinBlockSeconds {
		return BlockSnapshot{}, false
	}
	return m.FlushBlock(), true
}
