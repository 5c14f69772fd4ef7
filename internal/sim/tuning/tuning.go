package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gearbench/internal/sim/gears"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz   int     `yaml:"tick_rate_hz"`
	CanvasWidth  float64 `yaml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height"`

	GearModule    float64 `yaml:"gear_module"`
	MeshEpsilon   float64 `yaml:"mesh_epsilon"`
	AxleEpsilon   float64 `yaml:"axle_epsilon"`
	SnapTolerance float64 `yaml:"snap_tolerance"`
	AxleCapture   float64 `yaml:"axle_capture"`
	OverlapFactor float64 `yaml:"overlap_factor"`

	MotorRPM     float64 `yaml:"motor_rpm"`
	SlowMotorRPM float64 `yaml:"slow_motor_rpm"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.fillZeroes()
	return t, nil
}

// Defaults matches the reference bench layout; used when no tuning.yaml
// is present.
func Defaults() Tuning {
	var t Tuning
	t.fillZeroes()
	return t
}

// fillZeroes backfills unset fields so a sparse tuning.yaml still yields a
// runnable bench.
func (t *Tuning) fillZeroes() {
	p := gears.DefaultParams()
	if t.TickRateHz <= 0 {
		t.TickRateHz = 30
	}
	if t.CanvasWidth <= 0 {
		t.CanvasWidth = p.Width
	}
	if t.CanvasHeight <= 0 {
		t.CanvasHeight = p.Height
	}
	if t.GearModule <= 0 {
		t.GearModule = p.Module
	}
	if t.MeshEpsilon <= 0 {
		t.MeshEpsilon = p.MeshEpsilon
	}
	if t.AxleEpsilon <= 0 {
		t.AxleEpsilon = p.AxleEpsilon
	}
	if t.SnapTolerance <= 0 {
		t.SnapTolerance = p.SnapTolerance
	}
	if t.AxleCapture <= 0 {
		t.AxleCapture = p.AxleCapture
	}
	if t.OverlapFactor <= 0 {
		t.OverlapFactor = p.OverlapFactor
	}
	if t.MotorRPM <= 0 {
		t.MotorRPM = p.MotorRPM
	}
	if t.SlowMotorRPM <= 0 {
		t.SlowMotorRPM = p.SlowMotorRPM
	}
}

// Params projects the tuning onto the engine's constant set.
func (t Tuning) Params() gears.Params {
	return gears.Params{
		Module:        t.GearModule,
		MeshEpsilon:   t.MeshEpsilon,
		AxleEpsilon:   t.AxleEpsilon,
		SnapTolerance: t.SnapTolerance,
		AxleCapture:   t.AxleCapture,
		OverlapFactor: t.OverlapFactor,
		MotorRPM:      t.MotorRPM,
		SlowMotorRPM:  t.SlowMotorRPM,
		Width:         t.CanvasWidth,
		Height:        t.CanvasHeight,
	}
}

// Digest hashes the effective tuning so clients and the index can tell
// apart sessions run under different constants.
func (t Tuning) Digest() string {
	raw, _ := json.Marshal(t)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
