package gears

// Kind classifies a gear. Motors are the only rotation sources; every
// other kind is driven (or purely cosmetic) and differs only in rendering.
type Kind string

const (
	KindMotor     Kind = "MOTOR"      // standard motor, fast rated speed
	KindSlowMotor Kind = "SLOW_MOTOR" // slow/giant motor variant
	KindPlain     Kind = "PLAIN"      // ordinary driven gear
	KindFlywheel  Kind = "FLYWHEEL"   // driven gear drawn with an inertia rim
	KindDeco      Kind = "DECO"       // decorative; participates in geometry only
)

func (k Kind) Valid() bool {
	switch k {
	case KindMotor, KindSlowMotor, KindPlain, KindFlywheel, KindDeco:
		return true
	}
	return false
}

// Motor reports whether the kind seeds rotation.
func (k Kind) Motor() bool { return k == KindMotor || k == KindSlowMotor }

// Rotation direction. Mesh contacts flip it, axle links copy it.
const (
	DirCW   = 1  // clockwise
	DirCCW  = -1 // counter-clockwise
	DirNone = 0
)

// Gear is one gear on the bench.
//
// RPM, Dir and Jammed are derived state: the propagator recomputes all
// three from scratch after every structural change. They are never
// patched incrementally. Jammed gears always have RPM 0 and Dir 0; gears
// with no path to a motor have RPM 0 and Dir 0 but are never jammed.
type Gear struct {
	ID    int     `json:"id"`
	Kind  Kind    `json:"kind"`
	Teeth int     `json:"teeth"`
	Pos   Vec2    `json:"pos"`
	Level Level   `json:"level"`
	Angle float64 `json:"angle"` // radians, unbounded

	RPM    float64 `json:"rpm"`
	Dir    int     `json:"dir"` // DirCW, DirCCW or DirNone
	Jammed bool    `json:"jammed"`

	Color string `json:"color,omitempty"`
	Label string `json:"label,omitempty"`
}

// resetDerived clears the propagator-owned fields.
func (g *Gear) resetDerived() {
	g.RPM = 0
	g.Dir = DirNone
	g.Jammed = false
}
