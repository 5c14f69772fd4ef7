// Package gears implements the gear-train connectivity and motion
// propagation engine: which gears couple (tooth mesh on the same level,
// shared axle across levels), what speed and direction each gear turns at,
// and where a dragged gear should snap to form a valid layout.
//
// The package is pure simulation state. It knows nothing about transport,
// rendering or persistence; callers own a Bench and read gear state back
// out of it after each mutation.
package gears

import "math"

// Vec2 is a point on the bench canvas.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Distance between two gear centers.
func Distance(a, b Vec2) float64 { return a.Sub(b).Len() }

// Level is one of exactly two independent layers. Gears on different
// levels never mesh; they can only couple through a shared axle.
type Level int

const (
	LevelLower Level = 0
	LevelUpper Level = 1
)

func (l Level) Valid() bool { return l == LevelLower || l == LevelUpper }

// Other returns the opposite level.
func (l Level) Other() Level {
	if l == LevelLower {
		return LevelUpper
	}
	return LevelLower
}

// Params holds the geometric and kinematic tuning constants of a bench.
// All distances are in canvas units.
type Params struct {
	// Module is the gear module: pitch radius = teeth * Module / 2.
	Module float64

	// MeshEpsilon is the tolerance on |distance - ideal| for two
	// same-level gears to count as meshed.
	MeshEpsilon float64

	// AxleEpsilon is the max center distance for two gears on different
	// levels to count as sharing an axle.
	AxleEpsilon float64

	// SnapTolerance is the base capture band for mesh snapping; the
	// effective band grows with the ideal mesh distance.
	SnapTolerance float64

	// AxleCapture is the capture radius for axle snapping.
	AxleCapture float64

	// OverlapFactor scales the pitch-radius sum below which two
	// same-level gears interpenetrate (unless exactly at mesh distance).
	OverlapFactor float64

	// MotorRPM and SlowMotorRPM are the rated speeds of the two motor
	// kinds.
	MotorRPM     float64
	SlowMotorRPM float64

	// Width and Height bound gear placement.
	Width  float64
	Height float64
}

// DefaultParams matches the reference bench layout.
func DefaultParams() Params {
	return Params{
		Module:        5,
		MeshEpsilon:   3,
		AxleEpsilon:   3,
		SnapTolerance: 10,
		AxleCapture:   25,
		OverlapFactor: 0.8,
		MotorRPM:      60,
		SlowMotorRPM:  15,
		Width:         1200,
		Height:        800,
	}
}

// PitchRadius is the effective meshing radius for a tooth count.
func (p Params) PitchRadius(teeth int) float64 {
	return float64(teeth) * p.Module / 2
}

// OuterRadius is the tip radius (pitch radius plus one module of tooth).
// Used for interpenetration checks and bounds clamping, not for meshing.
func (p Params) OuterRadius(teeth int) float64 {
	return p.PitchRadius(teeth) + p.Module
}

// RatedRPM returns the seed speed for a motor kind, 0 for passive kinds.
func (p Params) RatedRPM(k Kind) float64 {
	switch k {
	case KindMotor:
		return p.MotorRPM
	case KindSlowMotor:
		return p.SlowMotorRPM
	default:
		return 0
	}
}
