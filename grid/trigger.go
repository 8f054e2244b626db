package grid

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/marrowfield/memstride/constants"
)

// ColliderID identifies the object that produced an overlap sample
type ColliderID string

// triggerVolume is the per-tile detection region: a narrow, tall, thin
// box centered on the tile rather than the full footprint, so entering it
// requires true lateral translation and a head lean over a tile boundary
// does not fire. The single-fire latch converts continuous overlap into
// one discrete event until it is explicitly reset
type triggerVolume struct {
	hasTriggered bool
}

// ResetTriggers clears every tile's latch. Must run at the start of every
// tracking session, otherwise residual overlap from the previous round
// (e.g. standing on a tile while walking back to the start zone) fires a
// stale entry
func (g *Grid) ResetTriggers() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for z := range g.tiles {
		for x := range g.tiles[z] {
			g.tiles[z][x].trigger.hasTriggered = false
		}
	}
}

// Triggered reports the latch state for a tile, false when out of bounds
func (g *Grid) Triggered(x, z int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if t := g.tileAtLocked(x, z); t != nil {
		return t.trigger.hasTriggered
	}
	return false
}

// Detector converts physical overlap samples into de-duplicated grid
// entry callbacks. Only samples from the designated head collider are
// accepted; hand UI and tracked accessory colliders would otherwise
// falsely trigger tiles
type Detector struct {
	grid      *Grid
	headID    ColliderID
	onEntered func(x, z int)
	log       zerolog.Logger
}

// NewDetector creates a detector bound to a grid. The entry callback is
// invoked at most once per tile until the grid's triggers are reset
func NewDetector(g *Grid, headID ColliderID, onEntered func(x, z int), log zerolog.Logger) *Detector {
	return &Detector{
		grid:      g,
		headID:    headID,
		onEntered: onEntered,
		log:       log.With().Str("component", "detector").Logger(),
	}
}

// SetHeadCollider replaces the accepted overlap source
func (d *Detector) SetHeadCollider(id ColliderID) {
	d.headID = id
}

// Sample feeds one overlap observation into the detector. Samples from
// any collider other than the head are discarded. A sample inside a
// tile's detection volume fires the entry callback once and latches
func (d *Detector) Sample(source ColliderID, pos Vec3) {
	if d.headID == "" || source != d.headID {
		return
	}

	g := d.grid
	g.mu.Lock()

	x, z, ok := g.worldToGridLocked(pos)
	if !ok {
		g.mu.Unlock()
		return
	}

	tile := g.tileAtLocked(x, z)
	if tile == nil || !d.insideVolume(tile, pos) {
		g.mu.Unlock()
		return
	}

	if tile.trigger.hasTriggered {
		g.mu.Unlock()
		return
	}
	tile.trigger.hasTriggered = true
	g.mu.Unlock()

	d.log.Debug().Int("x", x).Int("z", z).Msg("tile entered")
	if d.onEntered != nil {
		d.onEntered(x, z)
	}
}

// insideVolume tests the sample against the tile's narrow detection box
// Caller holds the grid lock
func (d *Detector) insideVolume(tile *Tile, pos Vec3) bool {
	local := pos.Sub(tile.Center).rotateY(-d.grid.yaw)

	if math.Abs(local.X) > constants.TriggerHalfWidth {
		return false
	}
	if math.Abs(local.Z) > constants.TriggerHalfWidth {
		return false
	}
	return local.Y >= 0 && local.Y <= constants.TriggerHeight
}
