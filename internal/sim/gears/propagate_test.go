package gears

import (
	"math"
	"testing"
)

func mustAdd(t *testing.T, b *Bench, kind Kind, teeth int, pos Vec2, level Level) *Gear {
	t.Helper()
	g, err := b.AddGear(kind, teeth, pos, level, "", "")
	if err != nil {
		t.Fatalf("add %s %dT at %+v: %v", kind, teeth, pos, err)
	}
	return g
}

func TestPropagate_MeshRatioAndDirection(t *testing.T) {
	b := NewBench(DefaultParams())
	motor := mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	driven := mustAdd(t, b, KindPlain, 24, Vec2{X: 190, Y: 100}, LevelLower)

	if motor.Dir != DirCW || motor.RPM != 60 {
		t.Fatalf("motor: dir=%d rpm=%v, want CW 60", motor.Dir, motor.RPM)
	}
	// 12T at 60rpm meshed to 24T: 30rpm, counter-clockwise.
	if driven.Dir != DirCCW {
		t.Fatalf("driven dir=%d, want CCW", driven.Dir)
	}
	if math.Abs(driven.RPM-30) > 1e-9 {
		t.Fatalf("driven rpm=%v, want 30", driven.RPM)
	}
	if motor.Jammed || driven.Jammed {
		t.Fatalf("free-running pair reported jammed")
	}
}

func TestPropagate_AxleCopiesSpeedAndDirection(t *testing.T) {
	b := NewBench(DefaultParams())
	mustAdd(t, b, KindMotor, 12, Vec2{X: 300, Y: 300}, LevelLower)
	up := mustAdd(t, b, KindPlain, 40, Vec2{X: 300, Y: 300}, LevelUpper)

	// Rigid shaft: identical speed and direction regardless of teeth.
	if up.Dir != DirCW || math.Abs(up.RPM-60) > 1e-9 {
		t.Fatalf("axle neighbor: dir=%d rpm=%v, want CW 60", up.Dir, up.RPM)
	}
}

func TestPropagate_SlowMotorRated(t *testing.T) {
	b := NewBench(DefaultParams())
	m := mustAdd(t, b, KindSlowMotor, 20, Vec2{X: 200, Y: 200}, LevelLower)
	if m.RPM != b.Params().SlowMotorRPM || m.Dir != DirCW {
		t.Fatalf("slow motor: dir=%d rpm=%v", m.Dir, m.RPM)
	}
}

func TestPropagate_OddCycleJamsWholeComponent(t *testing.T) {
	b := NewBench(DefaultParams())
	// Three equal 12T gears in an equilateral triangle, side 60 (= exact
	// mesh distance). The odd cycle forces contradictory directions.
	h := 60 * math.Sqrt(3) / 2
	m := mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	a := mustAdd(t, b, KindPlain, 12, Vec2{X: 160, Y: 100}, LevelLower)
	c := mustAdd(t, b, KindPlain, 12, Vec2{X: 130, Y: 100 + h}, LevelLower)

	for _, g := range []*Gear{m, a, c} {
		if !g.Jammed {
			t.Fatalf("gear %d not jammed", g.ID)
		}
		if g.RPM != 0 || g.Dir != DirNone {
			t.Fatalf("jammed gear %d still moving: rpm=%v dir=%d", g.ID, g.RPM, g.Dir)
		}
	}
}

func TestPropagate_EvenRingStaysConsistent(t *testing.T) {
	b := NewBench(DefaultParams())
	// Square of equal gears: redundant paths agree, no jam.
	m := mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	e := mustAdd(t, b, KindPlain, 12, Vec2{X: 160, Y: 100}, LevelLower)
	s := mustAdd(t, b, KindPlain, 12, Vec2{X: 100, Y: 160}, LevelLower)
	d := mustAdd(t, b, KindPlain, 12, Vec2{X: 160, Y: 160}, LevelLower)

	for _, g := range []*Gear{m, e, s, d} {
		if g.Jammed {
			t.Fatalf("gear %d jammed in consistent ring", g.ID)
		}
	}
	if e.Dir != DirCCW || s.Dir != DirCCW || d.Dir != DirCW {
		t.Fatalf("ring directions wrong: e=%d s=%d d=%d", e.Dir, s.Dir, d.Dir)
	}
}

func TestPropagate_UnreachedGearIsStoppedNotJammed(t *testing.T) {
	b := NewBench(DefaultParams())
	mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	bridge := mustAdd(t, b, KindPlain, 12, Vec2{X: 160, Y: 100}, LevelLower)
	far := mustAdd(t, b, KindPlain, 12, Vec2{X: 220, Y: 100}, LevelLower)

	if far.Dir != DirCW || far.RPM != 60 {
		t.Fatalf("chain end before delete: dir=%d rpm=%v", far.Dir, far.RPM)
	}

	// Deleting the sole bridge strands the end of the chain.
	if err := b.DeleteGear(bridge.ID); err != nil {
		t.Fatalf("delete bridge: %v", err)
	}
	if far.RPM != 0 || far.Dir != DirNone {
		t.Fatalf("stranded gear still moving: rpm=%v dir=%d", far.RPM, far.Dir)
	}
	if far.Jammed {
		t.Fatalf("stranded gear marked jammed; jam is reserved for conflicts")
	}
}

func TestPropagate_SecondMotorSeedSkippedWhenReached(t *testing.T) {
	b := NewBench(DefaultParams())
	first := mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	second := mustAdd(t, b, KindMotor, 12, Vec2{X: 160, Y: 100}, LevelLower)

	// The earlier motor claims the region; the later one is driven like a
	// plain gear (counter-rotating at the meshed ratio), not re-seeded.
	if first.Dir != DirCW || first.RPM != 60 {
		t.Fatalf("first motor: dir=%d rpm=%v", first.Dir, first.RPM)
	}
	if second.Dir != DirCCW || second.RPM != 60 {
		t.Fatalf("second motor: dir=%d rpm=%v, want driven CCW 60", second.Dir, second.RPM)
	}
	if first.Jammed || second.Jammed {
		t.Fatalf("motor pair jammed")
	}
}

func TestPropagate_IndependentComponents(t *testing.T) {
	b := NewBench(DefaultParams())
	mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	lone := mustAdd(t, b, KindSlowMotor, 12, Vec2{X: 600, Y: 600}, LevelLower)
	if lone.Dir != DirCW || lone.RPM != b.Params().SlowMotorRPM {
		t.Fatalf("isolated motor: dir=%d rpm=%v", lone.Dir, lone.RPM)
	}
}

func TestPropagate_Idempotent(t *testing.T) {
	b := NewBench(DefaultParams())
	mustAdd(t, b, KindMotor, 12, Vec2{X: 100, Y: 100}, LevelLower)
	mustAdd(t, b, KindPlain, 24, Vec2{X: 190, Y: 100}, LevelLower)
	mustAdd(t, b, KindPlain, 16, Vec2{X: 190, Y: 100}, LevelUpper)

	before := b.StateDigest()
	b.Propagate()
	if got := b.StateDigest(); got != before {
		t.Fatalf("re-propagation changed state: %s -> %s", before, got)
	}
}
