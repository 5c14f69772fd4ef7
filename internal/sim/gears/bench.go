package gears

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"sort"
)

// Mutation rejections. These are ordinary outcomes, not failures: state is
// left untouched and the caller declines to commit the drag.
var (
	ErrOverlap     = errors.New("gear overlaps an existing gear")
	ErrOutOfBounds = errors.New("gear outside canvas bounds")
	ErrBadKind     = errors.New("unknown gear kind")
	ErrBadTeeth    = errors.New("tooth count must be positive")
	ErrBadLevel    = errors.New("unknown level")
	ErrNoSuchGear  = errors.New("no gear with that id")
)

// Bench is one independent simulation instance: the full gear collection
// plus its id counter and tuning. All state lives here rather than in
// package globals so multiple benches can run side by side and tests stay
// deterministic.
//
// Bench is not safe for concurrent use; the owning loop serializes access.
type Bench struct {
	params Params
	gears  []*Gear
	nextID int
}

func NewBench(p Params) *Bench {
	return &Bench{params: p, nextID: 1}
}

func (b *Bench) Params() Params { return b.params }

// Gears returns the live, ordered gear collection. Callers must not
// mutate it; order only matters for topmost hit-testing in the UI.
func (b *Bench) Gears() []*Gear { return b.gears }

func (b *Bench) Gear(id int) *Gear {
	for _, g := range b.gears {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// AddGear places a new gear and re-propagates. Ids are assigned
// monotonically and never reused within a session. The position is taken
// as-is: snapping is the caller's move (BestSnap) before committing.
func (b *Bench) AddGear(kind Kind, teeth int, pos Vec2, level Level, color, label string) (*Gear, error) {
	if !kind.Valid() {
		return nil, ErrBadKind
	}
	if teeth <= 0 {
		return nil, ErrBadTeeth
	}
	if !level.Valid() {
		return nil, ErrBadLevel
	}
	if !b.InBounds(teeth, pos) {
		return nil, ErrOutOfBounds
	}
	if b.Overlaps(teeth, pos, level, 0) {
		return nil, ErrOverlap
	}
	g := &Gear{
		ID:    b.nextID,
		Kind:  kind,
		Teeth: teeth,
		Pos:   pos,
		Level: level,
		Color: color,
		Label: label,
	}
	b.nextID++
	b.gears = append(b.gears, g)
	b.Propagate()
	return g, nil
}

// MoveGear updates a gear's position and re-propagates. On rejection the
// gear keeps its old position; there is no partial move.
func (b *Bench) MoveGear(id int, pos Vec2) error {
	g := b.Gear(id)
	if g == nil {
		return ErrNoSuchGear
	}
	if !b.InBounds(g.Teeth, pos) {
		return ErrOutOfBounds
	}
	if b.Overlaps(g.Teeth, pos, g.Level, id) {
		return ErrOverlap
	}
	g.Pos = pos
	b.Propagate()
	return nil
}

// DeleteGear removes a gear and re-propagates. Remaining order is kept.
func (b *Bench) DeleteGear(id int) error {
	for i, g := range b.gears {
		if g.ID == id {
			b.gears = append(b.gears[:i], b.gears[i+1:]...)
			b.Propagate()
			return nil
		}
	}
	return ErrNoSuchGear
}

// ClearAll empties the bench and resets the id counter.
func (b *Bench) ClearAll() {
	b.gears = nil
	b.nextID = 1
}

// Advance spins every gear by dir * (rpm/60) * 2pi * dt. Jammed and
// unreached gears have rpm 0 and stay put. Topology never changes here,
// so no re-propagation happens.
func (b *Bench) Advance(dt float64) {
	for _, g := range b.gears {
		g.Angle += float64(g.Dir) * (g.RPM / 60) * 2 * math.Pi * dt
	}
}

// digestGear is the canonical per-gear record hashed into StateDigest.
// Angle is animation state and deliberately excluded: the digest tracks
// topology and kinematics so a replayed op stream can be verified without
// reproducing frame timing.
type digestGear struct {
	ID     int     `json:"id"`
	Kind   Kind    `json:"kind"`
	Teeth  int     `json:"teeth"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Level  Level   `json:"level"`
	RPM    float64 `json:"rpm"`
	Dir    int     `json:"dir"`
	Jammed bool    `json:"jammed"`
}

// StateDigest hashes the bench's canonical state (gears sorted by id).
func (b *Bench) StateDigest() string {
	rows := make([]digestGear, 0, len(b.gears))
	for _, g := range b.gears {
		rows = append(rows, digestGear{
			ID: g.ID, Kind: g.Kind, Teeth: g.Teeth,
			X: g.Pos.X, Y: g.Pos.Y, Level: g.Level,
			RPM: g.RPM, Dir: g.Dir, Jammed: g.Jammed,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	raw, _ := json.Marshal(rows)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
