package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_SparseFileBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("tick_rate_hz: 10\ngear_module: 4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.TickRateHz != 10 || tune.GearModule != 4 {
		t.Fatalf("explicit fields lost: %+v", tune)
	}
	def := Defaults()
	if tune.MeshEpsilon != def.MeshEpsilon || tune.MotorRPM != def.MotorRPM {
		t.Fatalf("backfill missing: %+v", tune)
	}
}

func TestDigest_SensitiveToConstants(t *testing.T) {
	a := Defaults()
	b := Defaults()
	if a.Digest() != b.Digest() {
		t.Fatalf("identical tunings digest differently")
	}
	b.MotorRPM = 90
	if a.Digest() == b.Digest() {
		t.Fatalf("changed tuning kept the same digest")
	}
}

func TestParams_ProjectsEngineConstants(t *testing.T) {
	p := Defaults().Params()
	if p.Module != 5 || p.Width != 1200 || p.Height != 800 {
		t.Fatalf("params: %+v", p)
	}
	if got := p.PitchRadius(24); got != 60 {
		t.Fatalf("pitch radius for 24 teeth: %v", got)
	}
}
